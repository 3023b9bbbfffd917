// Package warehouse manages storage locations for stock lots.
package warehouse

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
	// ErrNotFound indicates the warehouse id does not resolve.
	ErrNotFound = errors.New("warehouse not found")
	// ErrMissingName indicates the warehouse name is empty.
	ErrMissingName = errors.New("warehouse name is required")
	// ErrHasStock indicates the warehouse still holds received stock.
	ErrHasStock = errors.New("warehouse still holds stock")
)

// Service manages the warehouses collection.
type Service struct {
	store  store.Store
	audit  audit.Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the warehouse service.
func NewService(st store.Store, sink audit.Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Service{store: st, audit: sink, logger: logger, now: time.Now}
}

// CreateInput carries the attributes of a new warehouse.
type CreateInput struct {
	Name        string
	Location    string
	Capacity    float64
	Description string
}

// Create inserts a new warehouse record.
func (s *Service) Create(ctx context.Context, sess session.Session, in CreateInput) (*models.Warehouse, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}

	now := s.now().UTC()
	record := models.Warehouse{
		Name:        in.Name,
		Location:    in.Location,
		Capacity:    in.Capacity,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.store.Insert(ctx, store.CollectionWarehouses, record)
	if err != nil {
		return nil, fmt.Errorf("insert warehouse: %w", err)
	}
	record.ID = id
	record.Version = 1

	s.audit.Record(audit.Entry{
		Collection: store.CollectionWarehouses,
		DocumentID: id,
		Action:     "create",
		Payload:    map[string]any{"name": record.Name, "location": record.Location},
		ActorID:    sess.UserID,
	})

	return &record, nil
}

// GetByID loads a single warehouse.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Warehouse, error) {
	var record models.Warehouse
	err := s.store.Get(ctx, store.CollectionWarehouses, id, &record)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load warehouse %s: %w", id, err)
	}
	return &record, nil
}

// List returns every warehouse in store insertion order.
func (s *Service) List(ctx context.Context) ([]models.Warehouse, error) {
	var records []models.Warehouse
	if err := s.store.Query(ctx, store.CollectionWarehouses, nil, &records); err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	return records, nil
}

// UpdateInput carries a partial update; nil members are left untouched.
type UpdateInput struct {
	Name        *string
	Location    *string
	Capacity    *float64
	Description *string
}

// Update applies a partial update to a warehouse record.
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
	if in.Capacity != nil {
		fields["capacity"] = *in.Capacity
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}

	if err := s.store.UpdateVersioned(ctx, store.CollectionWarehouses, id, current.Version, fields); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("update warehouse %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionWarehouses,
		DocumentID: id,
		Action:     "update",
		Payload:    fields,
		ActorID:    sess.UserID,
	})

	return nil
}

// Delete removes a warehouse permanently. A warehouse still holding received
// stock cannot be deleted.
func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var lots []models.Stock
	filters := []store.Filter{store.Eq("warehouse_id", id), store.Eq("status", string(models.StockReceived))}
	if err := s.store.Query(ctx, store.CollectionStock, filters, &lots); err != nil {
		return fmt.Errorf("check warehouse %s stock: %w", id, err)
	}
	if len(lots) > 0 {
		return ErrHasStock
	}

	if err := s.store.Delete(ctx, store.CollectionWarehouses, id); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("delete warehouse %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionWarehouses,
		DocumentID: id,
		Action:     "delete",
		Payload:    map[string]any{"name": current.Name, "location": current.Location},
		ActorID:    sess.UserID,
	})

	return nil
}
