// Package field manages the cultivated plots fumigations are applied to.
package field

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/audit"
	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store"
)

var (
	// ErrNotFound indicates the field id does not resolve.
	ErrNotFound = errors.New("field not found")
	// ErrMissingName indicates the field name is empty.
	ErrMissingName = errors.New("field name is required")
)

// Service manages the fields collection.
type Service struct {
	store  store.Store
	audit  audit.Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the field service.
func NewService(st store.Store, sink audit.Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Service{store: st, audit: sink, logger: logger, now: time.Now}
}

// CreateInput carries the attributes of a new field.
type CreateInput struct {
	Name      string
	Location  string
	Size      float64
	CropType  string
	Status    string
	RiskLevel string
	Pests     []string
	Workers   []string
}

// Create inserts a new field record.
func (s *Service) Create(ctx context.Context, sess session.Session, in CreateInput) (*models.Field, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}

	now := s.now().UTC()
	record := models.Field{
		Name:      in.Name,
		Location:  in.Location,
		Size:      in.Size,
		CropType:  in.CropType,
		Status:    in.Status,
		RiskLevel: in.RiskLevel,
		Pests:     in.Pests,
		Workers:   in.Workers,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.store.Insert(ctx, store.CollectionFields, record)
	if err != nil {
		return nil, fmt.Errorf("insert field: %w", err)
	}
	record.ID = id
	record.Version = 1

	s.audit.Record(audit.Entry{
		Collection: store.CollectionFields,
		DocumentID: id,
		Action:     "create",
		Payload:    map[string]any{"name": record.Name, "location": record.Location},
		ActorID:    sess.UserID,
	})

	return &record, nil
}

// GetByID loads a single field.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Field, error) {
	var record models.Field
	err := s.store.Get(ctx, store.CollectionFields, id, &record)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load field %s: %w", id, err)
	}
	return &record, nil
}

// List returns every field in store insertion order.
func (s *Service) List(ctx context.Context) ([]models.Field, error) {
	var records []models.Field
	if err := s.store.Query(ctx, store.CollectionFields, nil, &records); err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	return records, nil
}

// UpdateInput carries a partial update; nil members are left untouched.
type UpdateInput struct {
	Name      *string
	Location  *string
	Size      *float64
	CropType  *string
	Status    *string
	RiskLevel *string
	Pests     *[]string
	Workers   *[]string
}

// Update applies a partial update to a field record.
func (s *Service) Update(ctx context.Context, sess session.Session, id string, in UpdateInput) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if in.Name != nil && *in.Name == "" {
		return ErrMissingName
	}

	fields := map[string]any{"updated_at": s.now().UTC()}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.Size != nil {
		fields["size"] = *in.Size
	}
	if in.CropType != nil {
		fields["crop_type"] = *in.CropType
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.RiskLevel != nil {
		fields["risk_level"] = *in.RiskLevel
	}
	if in.Pests != nil {
		fields["pests"] = *in.Pests
	}
	if in.Workers != nil {
		fields["workers"] = *in.Workers
	}

	if err := s.store.UpdateVersioned(ctx, store.CollectionFields, id, current.Version, fields); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("update field %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionFields,
		DocumentID: id,
		Action:     "update",
		Payload:    fields,
		ActorID:    sess.UserID,
	})

	return nil
}

// Delete removes a field record permanently.
func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, store.CollectionFields, id); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("delete field %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionFields,
		DocumentID: id,
		Action:     "delete",
		Payload:    map[string]any{"name": current.Name, "location": current.Location},
		ActorID:    sess.UserID,
	})

	return nil
}
