package identity

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medchain/medchain-api/internal/model"
	"github.com/medchain/medchain-api/internal/repository/leveldb"
	"github.com/medchain/medchain-api/pkg/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	store, err := leveldb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := NewService(
		leveldb.NewUserRepository(store),
		logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard, TimeFormat: time.RFC3339}),
	)
	require.NoError(t, svc.Bootstrap(context.Background()))
	return svc
}

func TestSeedAdminCanLogIn(t *testing.T) {
	svc := newTestService(t)

	user, ok, err := svc.Login(context.Background(), "admin@medchain.local", model.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.SeedAdminID, user.ID)
	assert.Equal(t, model.UserStatusActive, user.Status)
	assert.Equal(t, user, svc.CurrentUser())
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx))

	admins, err := svc.UsersByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestApprovalWorkflow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Grace Hopper", "grace@example.com", model.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusPending, user.Status)

	// A pending account cannot log in.
	_, ok, err := svc.Login(ctx, "grace@example.com", model.RoleDoctor)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, svc.CurrentUser())

	approved, err := svc.ApproveUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, approved)
	assert.Equal(t, model.UserStatusActive, approved.Status)

	logged, ok, err := svc.Login(ctx, "grace@example.com", model.RoleDoctor)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRejectedUserCannotLogIn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Mallory", "mallory@example.com", model.RolePatient)
	require.NoError(t, err)

	rejected, err := svc.RejectUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, model.UserStatusRejected, rejected.Status)

	_, ok, err := svc.Login(ctx, "mallory@example.com", model.RolePatient)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginRequiresMatchingRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Rosalind", "ros@example.com", model.RoleResearcher)
	require.NoError(t, err)
	_, err = svc.ApproveUser(ctx, user.ID)
	require.NoError(t, err)

	_, ok, err := svc.Login(ctx, "ros@example.com", model.RoleDoctor)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.Login(ctx, "ros@example.com", model.RoleResearcher)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFailedLoginLeavesSessionUntouched(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, ok, err := svc.Login(ctx, "admin@medchain.local", model.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = svc.Login(ctx, "nobody@example.com", model.RolePatient)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, admin, svc.CurrentUser())
}

func TestLogout(t *testing.T) {
	svc := newTestService(t)

	_, ok, err := svc.Login(context.Background(), "admin@medchain.local", model.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)

	svc.Logout()
	assert.Nil(t, svc.CurrentUser())
}

func TestReviewUnknownUserIsNoOp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.ApproveUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.RejectUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestPendingUsersListing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, "Alice", "alice@example.com", model.RoleDoctor)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Bob", "bob@example.com", model.RoleLab)
	require.NoError(t, err)

	pending, err := svc.PendingUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.ApproveUser(ctx, a.ID)
	require.NoError(t, err)

	pending, err = svc.PendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Bob", pending[0].Name)
}

func TestUsersByRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Dr. A", "a@example.com", model.RoleDoctor)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Dr. B", "b@example.com", model.RoleDoctor)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Lab C", "c@example.com", model.RoleLab)
	require.NoError(t, err)

	doctors, err := svc.UsersByRole(ctx, model.RoleDoctor)
	require.NoError(t, err)
	assert.Len(t, doctors, 2)

	labs, err := svc.UsersByRole(ctx, model.RoleLab)
	require.NoError(t, err)
	assert.Len(t, labs, 1)
}
