// Package services contains server-side business logic: accounts and
// sessions, the file tree with its visibility and content serving, and
// system health.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/metrics"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/session"
	"github.com/google/uuid"
)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// UserService handles registration and the session lifecycle.
type UserService struct {
	repomanager repomanager.RepositoryManager
	sessions    session.Store
	publisher   queue.Publisher
	sessionTTL  time.Duration
	logger      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, sessions session.Store, publisher queue.Publisher,
	sessionTTL time.Duration, logger logging.Logger) *UserService {
	if sessionTTL <= 0 {
		sessionTTL = session.DefaultTTL
	}
	return &UserService{
		repomanager: m,
		sessions:    sessions,
		publisher:   publisher,
		sessionTTL:  sessionTTL,
		logger:      logger.With("component", "user_service"),
	}
}

// Register creates an account and enqueues its welcome job. The job is
// best effort: a publish failure is logged and the account is kept.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate id: %v: %w", err, common.ErrorInternal)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %v: %w", err, common.ErrorInternal)
	}

	user := &models.User{
		ID:           id.String(),
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	u, err := s.repomanager.Users().Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("user %w", common.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %v: %w", err, common.ErrorInternal)
	}

	if err := s.publisher.Publish(ctx, queue.UsersQueue, models.WelcomeJob{UserID: u.ID}); err != nil {
		s.logger.Error(ctx, "failed to enqueue welcome job", "user_id", u.ID, "error", err)
	}

	return u, nil
}

// Login checks the credentials and opens a new session. Every call yields a
// distinct token; earlier tokens stay valid.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error loading user: %v: %w", err, common.ErrorInternal)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", common.ErrorUnauthorized
	}

	token := auth.NewToken()
	if err := s.sessions.Set(ctx, session.Key(token), user.ID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("error storing session: %v: %w", err, common.ErrorInternal)
	}

	metrics.SessionsTotal.WithLabelValues("login").Inc()
	s.logger.Info(ctx, "user logged in", "user_id", user.ID)

	return token, nil
}

// Logout invalidates the session behind token. Other sessions of the same
// user are not affected.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, session.Key(token)); err != nil {
		return fmt.Errorf("error deleting session: %v: %w", err, common.ErrorInternal)
	}
	metrics.SessionsTotal.WithLabelValues("logout").Inc()
	return nil
}
