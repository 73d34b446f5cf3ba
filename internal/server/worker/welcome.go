package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
)

// WelcomeProcessor greets newly registered users.
type WelcomeProcessor struct {
	users  users.Repository
	logger logging.Logger
}

func NewWelcomeProcessor(users users.Repository, logger logging.Logger) *WelcomeProcessor {
	return &WelcomeProcessor{users: users, logger: logger.With("component", "welcome_worker")}
}

// Handle is a queue.Handler for models.WelcomeJob payloads.
func (p *WelcomeProcessor) Handle(ctx context.Context, data []byte) error {
	var job models.WelcomeJob
	if err := json.Unmarshal(data, &job); err != nil {
		return queue.Terminal(fmt.Errorf("undecodable job: %v: %w", err, common.ErrMissingField))
	}
	if job.UserID == "" {
		return queue.Terminal(fmt.Errorf("userId: %w", common.ErrMissingField))
	}

	user, err := p.users.GetByID(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return queue.Terminal(fmt.Errorf("user %s: %w", job.UserID, common.ErrUserNotFound))
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	p.logger.Info(ctx, "Welcome "+user.Email+"!", "user_id", user.ID)
	return nil
}
