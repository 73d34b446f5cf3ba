package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"mime"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/content"
	"github.com/dmitrijs2005/filesmanager/internal/server/metrics"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// DefaultPageSize is used when the service is built with a non-positive size.
const DefaultPageSize = 20

const defaultMimeType = "application/octet-stream"

// derivativeSizes are the only accepted values of the size parameter.
var derivativeSizes = map[string]struct{}{"100": {}, "250": {}, "500": {}}

// CreateFileInput is the body of a create request. Data holds base64 bytes
// and is ignored for folders.
type CreateFileInput struct {
	Name     string          `json:"name" validate:"required"`
	Type     models.FileType `json:"type" validate:"required,oneof=folder file image"`
	ParentID string          `json:"parentId"`
	IsPublic bool            `json:"isPublic"`
	Data     string          `json:"data" validate:"required_unless=Type folder"`
}

// ListFilesInput selects one page. An empty ParentID lists nodes under any
// parent.
type ListFilesInput struct {
	ParentID string
	Page     int `validate:"min=0"`
}

// FileContent is what Serve hands back to the transport.
type FileContent struct {
	Name     string
	MimeType string
	Data     []byte
}

// FileService manages the file tree, its visibility and content access.
type FileService struct {
	repomanager repomanager.RepositoryManager
	content     content.Store
	publisher   queue.Publisher
	pageSize    int
	logger      logging.Logger
}

func NewFileService(m repomanager.RepositoryManager, store content.Store, publisher queue.Publisher,
	pageSize int, logger logging.Logger) *FileService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &FileService{
		repomanager: m,
		content:     store,
		publisher:   publisher,
		pageSize:    pageSize,
		logger:      logger.With("component", "file_service"),
	}
}

// Create adds a node under the given parent. Bytes of files and images are
// written before the record; if the write fails nothing is persisted. Images
// get a derivative job once the record exists.
func (s *FileService) Create(ctx context.Context, user *models.User, in CreateFileInput) (*models.File, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	parentID, err := s.resolveParent(ctx, user.ID, in.ParentID)
	if err != nil {
		return nil, err
	}

	var data []byte
	if in.Type != models.FileTypeFolder {
		data, err = base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid data: %w", common.ErrInvalidArgument)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate id: %v: %w", err, common.ErrorInternal)
	}

	file := &models.File{
		ID:        id.String(),
		UserID:    user.ID,
		Name:      in.Name,
		Type:      in.Type,
		ParentID:  parentID,
		IsPublic:  in.IsPublic,
		CreatedAt: time.Now().UTC(),
	}

	if !file.IsFolder() {
		key := uuid.NewString()
		if err := s.content.Write(ctx, key, data); err != nil {
			return nil, fmt.Errorf("error writing content: %v: %w", err, common.ErrStorage)
		}
		file.ContentKey = key
	}

	created, err := s.repomanager.Files().Create(ctx, file)
	if err != nil {
		if file.ContentKey != "" {
			s.logger.Warn(ctx, "orphan content left behind", "content_key", file.ContentKey, "error", err)
		}
		return nil, fmt.Errorf("error creating file: %v: %w", err, common.ErrorInternal)
	}

	metrics.FilesCreatedTotal.WithLabelValues(string(created.Type)).Inc()

	if created.Type == models.FileTypeImage {
		job := models.DerivativeJob{UserID: created.UserID, FileID: created.ID}
		if err := s.publisher.Publish(ctx, queue.FilesQueue, job); err != nil {
			s.logger.Error(ctx, "failed to enqueue derivative job", "file_id", created.ID, "error", err)
		}
	}

	return created, nil
}

func (s *FileService) resolveParent(ctx context.Context, userID, parentID string) (string, error) {
	if parentID == "" || parentID == common.RootParentID {
		return common.RootParentID, nil
	}

	parent, err := s.repomanager.Files().GetByIDForUser(ctx, parentID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrParentNotFound
		}
		return "", fmt.Errorf("error loading parent: %v: %w", err, common.ErrorInternal)
	}
	if !parent.IsFolder() {
		return "", common.ErrParentNotFolder
	}
	return parent.ID, nil
}

// GetByID returns a node owned by user. Nodes of other users are reported
// as missing.
func (s *FileService) GetByID(ctx context.Context, user *models.User, id string) (*models.File, error) {
	f, err := s.repomanager.Files().GetByIDForUser(ctx, id, user.ID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return f, nil
}

// List returns one page of the user's nodes, newest first.
func (s *FileService) List(ctx context.Context, user *models.User, in ListFilesInput) ([]*models.File, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// pages whose offset does not fit an int are past any real data
	if in.Page > math.MaxInt/s.pageSize {
		return []*models.File{}, nil
	}

	list, err := s.repomanager.Files().List(ctx, files.ListQuery{
		UserID:   user.ID,
		ParentID: in.ParentID,
		Offset:   in.Page * s.pageSize,
		Limit:    s.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing files: %v: %w", err, common.ErrorInternal)
	}
	return list, nil
}

// SetPublic sets the visibility flag of a node owned by user and returns the
// updated record. Repeating the call with the same value changes nothing.
func (s *FileService) SetPublic(ctx context.Context, user *models.User, id string, isPublic bool) (*models.File, error) {
	f, err := s.repomanager.Files().SetPublic(ctx, id, user.ID, isPublic)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return f, nil
}

// Serve returns the bytes of a file, or of one of its thumbnails when size
// is given. requester may be nil for anonymous access, which only public
// files allow.
func (s *FileService) Serve(ctx context.Context, requester *models.User, id, size string) (*FileContent, error) {
	f, err := s.repomanager.Files().GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}

	if !f.IsPublic && (requester == nil || requester.ID != f.UserID) {
		return nil, common.ErrForbidden
	}

	if f.IsFolder() {
		return nil, fmt.Errorf("folders cannot be served: %w", common.ErrInvalidOperation)
	}

	key := f.ContentKey
	if size != "" {
		if _, ok := derivativeSizes[size]; !ok {
			return nil, common.ErrorNotFound
		}
		key = content.DerivativeKey(key, size)
	}

	data, err := s.content.Read(ctx, key)
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error reading content: %v: %w", err, common.ErrStorage)
	}

	metrics.ContentServedBytes.Add(float64(len(data)))

	return &FileContent{Name: f.Name, MimeType: mimeType(f.Name), Data: data}, nil
}

func mimeType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return defaultMimeType
}

func mapLookupError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%v: %w", err, common.ErrorInternal)
}
