// Package memory keeps users and files in process memory. It backs the
// "memory" metadata backend used for local runs and package tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
)

// RepositoryManager satisfies repomanager.RepositoryManager.
type RepositoryManager struct {
	mu    sync.RWMutex
	users map[string]*models.User
	files map[string]*models.File

	pingErr error
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{
		users: make(map[string]*models.User),
		files: make(map[string]*models.File),
	}
}

func (m *RepositoryManager) Users() users.Repository { return &userRepo{m: m} }
func (m *RepositoryManager) Files() files.Repository { return &fileRepo{m: m} }

func (m *RepositoryManager) Counts(context.Context) (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), int64(len(m.files)), nil
}

func (m *RepositoryManager) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

// SetPingErr makes Ping fail with err until reset with nil.
func (m *RepositoryManager) SetPingErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *RepositoryManager) Close(context.Context) error { return nil }

type userRepo struct {
	m *RepositoryManager
}

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == user.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) Count(context.Context) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.users)), nil
}

type fileRepo struct {
	m *RepositoryManager
}

func (r *fileRepo) Create(_ context.Context, file *models.File) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.files[file.ID]; ok {
		return nil, common.ErrAlreadyExists
	}
	if file.IsFolder() != (file.ContentKey == "") {
		return nil, common.ErrInvalidOperation
	}
	cp := *file
	r.m.files[file.ID] = &cp
	return file, nil
}

func (r *fileRepo) GetByID(_ context.Context, id string) (*models.File, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	f, ok := r.m.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fileRepo) GetByIDForUser(ctx context.Context, id, userID string) (*models.File, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

func (r *fileRepo) List(_ context.Context, q files.ListQuery) ([]*models.File, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var matched []*models.File
	for _, f := range r.m.files {
		if f.UserID != q.UserID {
			continue
		}
		if q.ParentID != "" && f.ParentID != q.ParentID {
			continue
		}
		cp := *f
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	if q.Offset < 0 || q.Offset >= len(matched) {
		return []*models.File{}, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Limit < end-q.Offset {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], nil
}

func (r *fileRepo) SetPublic(_ context.Context, id, userID string, isPublic bool) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	f, ok := r.m.files[id]
	if !ok || f.UserID != userID {
		return nil, common.ErrorNotFound
	}
	f.IsPublic = isPublic
	cp := *f
	return &cp, nil
}

func (r *fileRepo) Count(context.Context) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.files)), nil
}
