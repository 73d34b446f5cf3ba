package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/content"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/memory"
	"github.com/dmitrijs2005/filesmanager/internal/server/session"
	"github.com/stretchr/testify/require"
)

type env struct {
	repos    *memory.RepositoryManager
	content  *content.MemoryStore
	queue    *queue.MemoryQueue
	sessions *session.MemoryStore
	users    *UserService
	files    *FileService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		repos:    memory.NewRepositoryManager(),
		content:  content.NewMemoryStore(),
		queue:    queue.NewMemoryQueue(64, queue.DefaultMaxDeliver, logging.Nop{}),
		sessions: session.NewMemoryStore(100, session.DefaultTTL),
	}
	t.Cleanup(func() { _ = e.queue.Close() })

	e.users = NewUserService(e.repos, e.sessions, e.queue, session.DefaultTTL, logging.Nop{})
	e.files = NewFileService(e.repos, e.content, e.queue, 0, logging.Nop{})
	return e
}

func (e *env) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{Email: email, Password: "secret"})
	require.NoError(t, err)
	return u
}

var errBoom = errors.New("boom")

// failingStore rejects every write.
type failingStore struct {
	content.Store
}

func (failingStore) Write(context.Context, string, []byte) error { return errBoom }

// failingFilesManager fails file inserts.
type failingFilesManager struct {
	*memory.RepositoryManager
}

func (m failingFilesManager) Files() files.Repository {
	return failingCreate{Repository: m.RepositoryManager.Files()}
}

type failingCreate struct {
	files.Repository
}

func (failingCreate) Create(context.Context, *models.File) (*models.File, error) {
	return nil, errBoom
}
