// Package user manages accounts. Visibility and mutation rules follow the
// capability model: creating users needs create_user, everything else needs
// manage_users, and only admins may see or create other admins.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/audit"
	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/service/auth"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store"
)

var (
	// ErrNotFound indicates the user id does not resolve.
	ErrNotFound = errors.New("user not found")
	// ErrPermissionDenied indicates the session lacks the needed capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUsernameTaken indicates the username already exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrMissingCredentials indicates username or password is empty.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidRole indicates an unknown role literal.
	ErrInvalidRole = errors.New("invalid role")
	// ErrAdminOnly indicates only admins may create or promote admins.
	ErrAdminOnly = errors.New("only administrators can manage administrator accounts")
	// ErrSelfDelete indicates a user tried to delete their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
	// ErrLastAdmin indicates the operation would remove the last admin.
	ErrLastAdmin = errors.New("cannot remove the last administrator")
)

// Service manages the users collection.
type Service struct {
	store  store.Store
	audit  audit.Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the user service.
func NewService(st store.Store, sink audit.Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Service{store: st, audit: sink, logger: logger, now: time.Now}
}

// CreateInput carries the attributes of a new account.
type CreateInput struct {
	Username string
	Password string
	Role     models.Role
}

// Create inserts a new account.
func (s *Service) Create(ctx context.Context, sess session.Session, in CreateInput) (*models.User, error) {
	if !sess.Can(models.CapCreateUser) {
		return nil, ErrPermissionDenied
	}
	if in.Username == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}

	role := in.Role
	if role == "" {
		role = models.RoleBasic
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == models.RoleAdmin && sess.Role != models.RoleAdmin {
		return nil, ErrAdminOnly
	}

	var existing []models.User
	filters := []store.Filter{store.Eq("username", in.Username)}
	if err := s.store.Query(ctx, store.CollectionUsers, filters, &existing); err != nil {
		return nil, fmt.Errorf("check username %q: %w", in.Username, err)
	}
	if len(existing) > 0 {
		return nil, ErrUsernameTaken
	}

	now := s.now().UTC()
	record := models.User{
		Username:     in.Username,
		PasswordHash: auth.HashPassword(in.Password),
		Role:         role,
		CreatedBy:    sess.UserID,
		CreatedAt:    now,
	}

	id, err := s.store.Insert(ctx, store.CollectionUsers, record)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	record.ID = id
	record.Version = 1

	s.audit.Record(audit.Entry{
		Collection: store.CollectionUsers,
		DocumentID: id,
		Action:     "create",
		Payload:    map[string]any{"username": record.Username, "role": string(record.Role)},
		ActorID:    sess.UserID,
	})

	return &record, nil
}

// GetByID loads a single account. Non-admin sessions cannot see admins.
func (s *Service) GetByID(ctx context.Context, sess session.Session, id string) (*models.User, error) {
	var record models.User
	err := s.store.Get(ctx, store.CollectionUsers, id, &record)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}

	if record.Role == models.RoleAdmin && sess.Role != models.RoleAdmin {
		return nil, ErrNotFound
	}
	return &record, nil
}

// List returns accounts visible to the session. Admin accounts are only
// listed for admin sessions, and only when includeAdmins is set.
func (s *Service) List(ctx context.Context, sess session.Session, includeAdmins bool) ([]models.User, error) {
	var records []models.User
	if err := s.store.Query(ctx, store.CollectionUsers, nil, &records); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	visible := records[:0]
	for _, record := range records {
		if record.Role == models.RoleAdmin && (sess.Role != models.RoleAdmin || !includeAdmins) {
			continue
		}
		visible = append(visible, record)
	}
	return visible, nil
}

// UpdateInput carries a partial update; nil members are left untouched.
type UpdateInput struct {
	Username *string
	Role     *models.Role
}

// Update applies a partial update to an account.
func (s *Service) Update(ctx context.Context, sess session.Session, id string, in UpdateInput) error {
	if !sess.Can(models.CapManageUsers) {
		return ErrPermissionDenied
	}

	current, err := s.GetByID(ctx, sess, id)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if in.Username != nil && *in.Username != "" && *in.Username != current.Username {
		var existing []models.User
		filters := []store.Filter{store.Eq("username", *in.Username)}
		if err := s.store.Query(ctx, store.CollectionUsers, filters, &existing); err != nil {
			return fmt.Errorf("check username %q: %w", *in.Username, err)
		}
		if len(existing) > 0 {
			return ErrUsernameTaken
		}
		fields["username"] = *in.Username
	}

	if in.Role != nil {
		role := *in.Role
		if !role.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidRole, role)
		}
		if (role == models.RoleAdmin || current.Role == models.RoleAdmin) && sess.Role != models.RoleAdmin {
			return ErrAdminOnly
		}
		if current.Role == models.RoleAdmin && role != models.RoleAdmin {
			last, err := s.isLastAdmin(ctx, id)
			if err != nil {
				return err
			}
			if last {
				return ErrLastAdmin
			}
		}
		fields["role"] = string(role)
	}

	if len(fields) == 0 {
		return nil
	}

	if err := s.store.UpdateVersioned(ctx, store.CollectionUsers, id, current.Version, fields); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("update user %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionUsers,
		DocumentID: id,
		Action:     "update",
		Payload:    fields,
		ActorID:    sess.UserID,
	})

	return nil
}

// Delete removes an account permanently. Self-deletion and deleting the last
// admin are rejected.
func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.Can(models.CapManageUsers) {
		return ErrPermissionDenied
	}
	if sess.UserID == id {
		return ErrSelfDelete
	}

	current, err := s.GetByID(ctx, sess, id)
	if err != nil {
		return err
	}

	if current.Role == models.RoleAdmin {
		last, err := s.isLastAdmin(ctx, id)
		if err != nil {
			return err
		}
		if last {
			return ErrLastAdmin
		}
	}

	if err := s.store.Delete(ctx, store.CollectionUsers, id); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionUsers,
		DocumentID: id,
		Action:     "delete",
		Payload:    map[string]any{"username": current.Username, "role": string(current.Role)},
		ActorID:    sess.UserID,
	})

	return nil
}

// isLastAdmin reports whether id is the only admin account left.
func (s *Service) isLastAdmin(ctx context.Context, id string) (bool, error) {
	var admins []models.User
	filters := []store.Filter{store.Eq("role", string(models.RoleAdmin))}
	if err := s.store.Query(ctx, store.CollectionUsers, filters, &admins); err != nil {
		return false, fmt.Errorf("count admin accounts: %w", err)
	}
	for _, admin := range admins {
		if admin.ID != id {
			return false, nil
		}
	}
	return true, nil
}
