package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/repository"
	"github.com/medchain/medchain-api/internal/repository/leveldb"
	"github.com/medchain/medchain-api/pkg/logger"
)

// Service is the identity registry: registration, admin review, and
// the single demo login session. Login matches on the (email, role)
// pair with no secret behind it; this is demo auth, not production
// auth.
type Service struct {
	repo   repository.UserRepository
	logger *logger.Logger

	mu      sync.RWMutex
	current *model.User
}

func NewService(repo repository.UserRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Bootstrap ensures the hardcoded admin account exists and is ACTIVE.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.repo.EnsureSeedAdmin(ctx); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	return nil
}

// Login finds an ACTIVE user matching both email and role and makes it
// the current session identity. A miss or a non-ACTIVE status returns
// ok=false and leaves the session untouched.
func (s *Service) Login(ctx context.Context, email string, role model.Role) (*model.User, bool, error) {
	user, err := s.repo.GetByEmailAndRole(ctx, email, role)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if user.Status != model.UserStatusActive {
		return nil, false, nil
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()

	s.logger.Info("user logged in", "user_id", user.ID.String(), "role", string(user.Role))
	return user, true, nil
}

// Logout clears the current session identity.
func (s *Service) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// CurrentUser returns the session identity, or nil when nobody is
// logged in.
func (s *Service) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Register creates a PENDING user awaiting admin review. Duplicate
// emails are deliberately not rejected.
func (s *Service) Register(ctx context.Context, name, email string, role model.Role) (*model.User, error) {
	user := &model.User{
		ID:     uuid.New(),
		Name:   name,
		Email:  email,
		Role:   role,
		Status: model.UserStatusPending,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "role", string(role))
	return user, nil
}

// ApproveUser sets a user ACTIVE. Re-applying the same status is
// harmless; an unknown id is a silent no-op returning nil.
func (s *Service) ApproveUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setStatus(ctx, id, model.UserStatusActive)
}

// RejectUser sets a user REJECTED.
func (s *Service) RejectUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setStatus(ctx, id, model.UserStatusRejected)
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status string) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Status = status
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	s.logger.Info("user status changed", "user_id", id.String(), "status", status)
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) UsersByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := []*model.User{}
	for _, u := range users {
		if u.Role == role {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (s *Service) PendingUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := []*model.User{}
	for _, u := range users {
		if u.Status == model.UserStatusPending {
			pending = append(pending, u)
		}
	}
	return pending, nil
}
