// Package auth handles credential verification and session issuance. Password
// hashes are SHA-256 hex digests for compatibility with the account data the
// system was migrated with.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store"
)

var (
	// ErrInvalidCredentials indicates an unknown username or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound indicates the user id does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrPermissionDenied indicates the session lacks the needed capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrWrongPassword indicates the supplied current password does not match.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrMissingCredentials indicates an empty username or password.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
)

// HashPassword returns the SHA-256 hex digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Service verifies credentials and manages login sessions.
type Service struct {
	store    store.Store
	sessions *session.Manager
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the auth service.
func NewService(st store.Store, sessions *session.Manager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, sessions: sessions, logger: logger, now: time.Now}
}

// Login verifies the credentials, stamps last_login and issues a session
// token. Unknown usernames and wrong passwords are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, username, password string) (session.Session, string, error) {
	var users []models.User
	filters := []store.Filter{store.Eq("username", username)}
	if err := s.store.Query(ctx, store.CollectionUsers, filters, &users); err != nil {
		return session.Session{}, "", fmt.Errorf("look up user %q: %w", username, err)
	}
	if len(users) == 0 {
		return session.Session{}, "", ErrInvalidCredentials
	}

	user := users[0]
	if HashPassword(password) != user.PasswordHash {
		return session.Session{}, "", ErrInvalidCredentials
	}

	fields := map[string]any{"last_login": s.now().UTC()}
	if err := s.store.Update(ctx, store.CollectionUsers, user.ID, fields); err != nil {
		// The login itself succeeded; a failed stamp is not fatal.
		s.logger.Warn("failed to stamp last_login", zap.String("user_id", user.ID), zap.Error(err))
	}

	sess := session.Session{UserID: user.ID, Username: user.Username, Role: user.Role}
	token := s.sessions.Create(sess)

	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return sess, token, nil
}

// Register creates a self-service account with the basic role. Accounts made
// this way carry a UUID id, unlike documents the store assigns ids to.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var existing []models.User
	filters := []store.Filter{store.Eq("username", username)}
	if err := s.store.Query(ctx, store.CollectionUsers, filters, &existing); err != nil {
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}
	if len(existing) > 0 {
		return nil, ErrUsernameTaken
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         models.RoleBasic,
		CreatedBy:    "system",
		CreatedAt:    s.now().UTC(),
	}

	if _, err := s.store.Insert(ctx, store.CollectionUsers, user); err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", username))
	return &user, nil
}

// Logout revokes the session token.
func (s *Service) Logout(token string) {
	s.sessions.Revoke(token)
}

// Resolve maps a bearer token back to its session.
func (s *Service) Resolve(token string) (session.Session, bool) {
	return s.sessions.Get(token)
}

// ChangePassword updates a user's password hash. Users change their own
// password by proving the current one; holders of the manage-users capability
// may reset anyone's.
func (s *Service) ChangePassword(ctx context.Context, sess session.Session, userID, currentPassword, newPassword string) error {
	if sess.UserID != userID && !sess.Can(models.CapManageUsers) {
		return ErrPermissionDenied
	}

	var user models.User
	err := s.store.Get(ctx, store.CollectionUsers, userID, &user)
	if errors.Is(err, store.ErrNoDocument) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}

	if sess.UserID == userID && HashPassword(currentPassword) != user.PasswordHash {
		return ErrWrongPassword
	}

	fields := map[string]any{"password_hash": HashPassword(newPassword)}
	if err := s.store.Update(ctx, store.CollectionUsers, userID, fields); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update user %s password: %w", userID, err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists.
// It is idempotent and safe to run on every startup.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	var admins []models.User
	filters := []store.Filter{store.Eq("role", string(models.RoleAdmin))}
	if err := s.store.Query(ctx, store.CollectionUsers, filters, &admins); err != nil {
		return fmt.Errorf("look up admin accounts: %w", err)
	}
	if len(admins) > 0 {
		return nil
	}

	now := s.now().UTC()
	admin := models.User{
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         models.RoleAdmin,
		CreatedBy:    "system",
		CreatedAt:    now,
	}

	id, err := s.store.Insert(ctx, store.CollectionUsers, admin)
	if err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	s.logger.Info("bootstrap admin account created", zap.String("user_id", id), zap.String("username", username))
	return nil
}
