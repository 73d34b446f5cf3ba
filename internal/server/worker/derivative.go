// Package worker runs the background job handlers: thumbnail generation
// for uploaded images and the welcome step after registration.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/content"
	"github.com/dmitrijs2005/filesmanager/internal/server/metrics"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/thumbnail"
)

var decodeImage = thumbnail.Decode

// DerivativeProcessor writes the thumbnails of an image next to its
// original. Rerunning a job overwrites the same keys with the same bytes.
type DerivativeProcessor struct {
	files   files.Repository
	content content.Store
	logger  logging.Logger
}

func NewDerivativeProcessor(files files.Repository, store content.Store, logger logging.Logger) *DerivativeProcessor {
	return &DerivativeProcessor{
		files:   files,
		content: store,
		logger:  logger.With("component", "derivative_worker"),
	}
}

// Handle is a queue.Handler for models.DerivativeJob payloads.
func (p *DerivativeProcessor) Handle(ctx context.Context, data []byte) error {
	var job models.DerivativeJob
	if err := json.Unmarshal(data, &job); err != nil {
		return queue.Terminal(fmt.Errorf("undecodable job: %v: %w", err, common.ErrMissingField))
	}
	if job.FileID == "" {
		return queue.Terminal(fmt.Errorf("fileId: %w", common.ErrMissingField))
	}
	if job.UserID == "" {
		return queue.Terminal(fmt.Errorf("userId: %w", common.ErrMissingField))
	}

	f, err := p.files.GetByID(ctx, job.FileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return queue.Terminal(fmt.Errorf("file %s: %w", job.FileID, common.ErrFileNotFound))
		}
		return fmt.Errorf("error loading file: %w", err)
	}

	if f.IsFolder() || f.ContentKey == "" {
		return queue.Terminal(fmt.Errorf("file %s has no content: %w", f.ID, common.ErrInvalidOperation))
	}

	src, err := p.content.Read(ctx, f.ContentKey)
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			return queue.Terminal(fmt.Errorf("content of %s: %w", f.ID, common.ErrFileNotFound))
		}
		return fmt.Errorf("error reading original: %v: %w", err, common.ErrStorage)
	}

	if f.UserID != job.UserID {
		p.logger.Warn(ctx, "job owner differs from file owner", "file_id", f.ID, "job_user_id", job.UserID)
	}
	p.logger.Debug(ctx, "generating thumbnails", "file_id", f.ID, "user_id", f.UserID)

	img, err := decodeImage(src)
	if err != nil {
		if errors.Is(err, thumbnail.ErrUnsupportedImage) {
			return queue.Terminal(fmt.Errorf("file %s: %v: %w", f.ID, err, common.ErrInvalidOperation))
		}
		return fmt.Errorf("error decoding original: %w", err)
	}

	for _, w := range thumbnail.Widths {
		thumb, err := img.Scale(w)
		if err != nil {
			return fmt.Errorf("error generating %dpx thumbnail: %w", w, err)
		}

		width := strconv.Itoa(w)
		if err := p.content.Write(ctx, content.DerivativeKey(f.ContentKey, width), thumb); err != nil {
			return fmt.Errorf("error writing %dpx thumbnail: %v: %w", w, err, common.ErrStorage)
		}
		metrics.DerivativesWrittenTotal.WithLabelValues(width).Inc()
	}

	p.logger.Info(ctx, "thumbnails written", "file_id", f.ID)
	return nil
}
