package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store"
	"github.com/agrovex/campoflow/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewService(st, session.NewManager(), nil), st
}

func seedUser(t *testing.T, st *memory.Store, username, password string, role models.Role) string {
	t.Helper()
	id, err := st.Insert(context.Background(), store.CollectionUsers, models.User{
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         role,
	})
	require.NoError(t, err)
	return id
}

func TestLogin(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	userID := seedUser(t, st, "maria", "secret", models.RoleManager)

	sess, token, err := svc.Login(ctx, "maria", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, "maria", sess.Username)
	assert.Equal(t, models.RoleManager, sess.Role)

	resolved, ok := svc.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, sess, resolved)

	// Login stamps last_login on the account.
	var user models.User
	require.NoError(t, st.Get(ctx, store.CollectionUsers, userID, &user))
	require.NotNil(t, user.LastLogin)
}

func TestLoginRejections(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, "maria", "secret", models.RoleManager)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown username", username: "ghost", password: "secret"},
		{name: "wrong password", username: "maria", password: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestRegister(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "pedro", "secret")
	require.NoError(t, err)
	assert.Len(t, user.ID, 36)
	assert.Equal(t, "pedro", user.Username)
	assert.Equal(t, models.RoleBasic, user.Role)
	assert.Equal(t, "system", user.CreatedBy)

	// The account keeps its UUID id in the store and can log in.
	var stored models.User
	require.NoError(t, st.Get(ctx, store.CollectionUsers, user.ID, &stored))
	assert.Equal(t, "pedro", stored.Username)

	sess, _, err := svc.Login(ctx, "pedro", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
}

func TestRegisterRejections(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, "maria", "secret", models.RoleManager)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "missing username", username: "", password: "secret", wantErr: ErrMissingCredentials},
		{name: "missing password", username: "pedro", password: "", wantErr: ErrMissingCredentials},
		{name: "username taken", username: "maria", password: "secret", wantErr: ErrUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogout(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, "maria", "secret", models.RoleManager)

	_, token, err := svc.Login(context.Background(), "maria", "secret")
	require.NoError(t, err)

	svc.Logout(token)

	_, ok := svc.Resolve(token)
	assert.False(t, ok)
}

func TestChangePassword(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	selfID := seedUser(t, st, "maria", "secret", models.RoleManager)
	otherID := seedUser(t, st, "jordi", "hunter2", models.RoleBasic)

	self := session.Session{UserID: selfID, Username: "maria", Role: models.RoleManager}
	admin := session.Session{UserID: "admin-id", Username: "root", Role: models.RoleAdmin}

	t.Run("own password with correct current", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, self, selfID, "secret", "updated"))

		_, _, err := svc.Login(ctx, "maria", "updated")
		assert.NoError(t, err)
	})

	t.Run("own password with wrong current", func(t *testing.T) {
		err := svc.ChangePassword(ctx, self, selfID, "nope", "updated")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("manager cannot reset others", func(t *testing.T) {
		err := svc.ChangePassword(ctx, self, otherID, "", "updated")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("admin resets without current password", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, admin, otherID, "", "reset"))

		_, _, err := svc.Login(ctx, "jordi", "reset")
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := svc.ChangePassword(ctx, admin, "ghost", "", "reset")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestEnsureAdmin(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root", "bootstrap"))

	var admins []models.User
	filters := []store.Filter{store.Eq("role", string(models.RoleAdmin))}
	require.NoError(t, st.Query(ctx, store.CollectionUsers, filters, &admins))
	require.Len(t, admins, 1)
	assert.Equal(t, "root", admins[0].Username)
	assert.Equal(t, "system", admins[0].CreatedBy)

	// A second run is a no-op.
	require.NoError(t, svc.EnsureAdmin(ctx, "root", "bootstrap"))
	require.NoError(t, st.Query(ctx, store.CollectionUsers, filters, &admins))
	assert.Len(t, admins, 1)
}

func TestHashPasswordIsDeterministic(t *testing.T) {
	assert.Equal(t, HashPassword("secret"), HashPassword("secret"))
	assert.NotEqual(t, HashPassword("secret"), HashPassword("Secret"))
	assert.Len(t, HashPassword("secret"), 64)
}
