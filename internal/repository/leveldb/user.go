package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/medchain/medchain-api/internal/model"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.store.putJSON(prefixUser+user.ID.String(), user)
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.store.getJSON(prefixUser+id.String(), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmailAndRole looks a user up by the (email, role) login pair.
// Returns ErrNotFound when no user matches.
func (r *UserRepository) GetByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	var found *model.User
	err := r.store.scanPrefix(prefixUser, func(value []byte) error {
		var user model.User
		if err := json.Unmarshal(value, &user); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}
		if user.Email == email && user.Role == role {
			found = &user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.store.putJSON(prefixUser+user.ID.String(), user)
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	users := []*model.User{}
	err := r.store.scanPrefix(prefixUser, func(value []byte) error {
		var user model.User
		if err := json.Unmarshal(value, &user); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}
		users = append(users, &user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// EnsureSeedAdmin writes the hardcoded admin account unless it already
// exists, so a restart never resets an approved store.
func (r *UserRepository) EnsureSeedAdmin(ctx context.Context) error {
	ok, err := r.store.has(prefixUser + model.SeedAdminID.String())
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return r.Create(ctx, model.SeedAdmin())
}
