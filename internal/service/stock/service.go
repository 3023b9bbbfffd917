// Package stock manages inventory lots: the products fumigations consume.
package stock

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
	// ErrNotFound indicates the stock id does not resolve.
	ErrNotFound = errors.New("stock item not found")
	// ErrMissingProductName indicates the product name is empty.
	ErrMissingProductName = errors.New("product name is required")
	// ErrInvalidQuantity indicates the quantity is not a positive number.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrMissingUnit indicates the measurement unit is empty.
	ErrMissingUnit = errors.New("measurement unit is required")
	// ErrWarehouseRequired indicates a received item has no warehouse.
	ErrWarehouseRequired = errors.New("a warehouse is required for received products")
	// ErrWarehouseNotFound indicates the warehouse id does not resolve.
	ErrWarehouseNotFound = errors.New("warehouse does not exist")
	// ErrInvalidStatus indicates an unknown stock status literal.
	ErrInvalidStatus = errors.New("invalid stock status")
	// ErrNotTransferable indicates the item is not in a transferable state.
	ErrNotTransferable = errors.New("only received products can be transferred")
	// ErrNoSourceWarehouse indicates the item is not assigned to a warehouse.
	ErrNoSourceWarehouse = errors.New("product is not assigned to a warehouse")
	// ErrTransferTooLarge indicates the transfer exceeds the lot quantity.
	ErrTransferTooLarge = errors.New("not enough stock to transfer")
)

// Service manages the stock collection.
type Service struct {
	store  store.Store
	audit  audit.Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the stock service.
func NewService(st store.Store, sink audit.Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Service{store: st, audit: sink, logger: logger, now: time.Now}
}

// CreateInput carries the attributes of a new stock lot.
type CreateInput struct {
	ProductName  string
	Quantity     float64
	Unit         string
	WarehouseID  string
	Status       models.StockStatus
	Category     string
	PurchaseDate time.Time
	ExpiryDate   *time.Time
}

// Create validates and inserts a new stock lot.
func (s *Service) Create(ctx context.Context, sess session.Session, in CreateInput) (*models.Stock, error) {
	if in.ProductName == "" {
		return nil, ErrMissingProductName
	}
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if in.Unit == "" {
		return nil, ErrMissingUnit
	}

	status := in.Status
	if status == "" {
		status = models.StockReceived
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if status == models.StockReceived && in.WarehouseID == "" {
		return nil, ErrWarehouseRequired
	}

	if in.WarehouseID != "" {
		if err := s.checkWarehouse(ctx, in.WarehouseID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	purchaseDate := in.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = now
	}

	item := models.Stock{
		ProductName:  in.ProductName,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		WarehouseID:  in.WarehouseID,
		Status:       status,
		Category:     in.Category,
		PurchaseDate: purchaseDate,
		ExpiryDate:   in.ExpiryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := s.store.Insert(ctx, store.CollectionStock, item)
	if err != nil {
		return nil, fmt.Errorf("insert stock item: %w", err)
	}
	item.ID = id
	item.Version = 1

	s.audit.Record(audit.Entry{
		Collection: store.CollectionStock,
		DocumentID: id,
		Action:     "create",
		Payload: map[string]any{
			"product_name": item.ProductName,
			"quantity":     item.Quantity,
			"unit":         item.Unit,
			"warehouse_id": item.WarehouseID,
			"status":       string(item.Status),
		},
		ActorID: sess.UserID,
	})

	return &item, nil
}

// GetByID loads a single stock lot.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Stock, error) {
	var item models.Stock
	err := s.store.Get(ctx, store.CollectionStock, id, &item)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load stock item %s: %w", id, err)
	}
	return &item, nil
}

// ListFilter restricts List to records matching all non-empty members.
type ListFilter struct {
	WarehouseID string
	Status      models.StockStatus
}

// List returns stock lots matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Stock, error) {
	var filters []store.Filter
	if filter.WarehouseID != "" {
		filters = append(filters, store.Eq("warehouse_id", filter.WarehouseID))
	}
	if filter.Status != "" {
		filters = append(filters, store.Eq("status", string(filter.Status)))
	}

	var items []models.Stock
	if err := s.store.Query(ctx, store.CollectionStock, filters, &items); err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	return items, nil
}

// UpdateInput carries a partial update; nil members are left untouched.
type UpdateInput struct {
	ProductName  *string
	Quantity     *float64
	Unit         *string
	WarehouseID  *string
	Status       *models.StockStatus
	Category     *string
	PurchaseDate *time.Time
	ExpiryDate   *time.Time
}

// Update applies a partial update. Moving a lot to received requires a
// warehouse, either already assigned or supplied in the same update.
func (s *Service) Update(ctx context.Context, sess session.Session, id string, in UpdateInput) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if in.Quantity != nil && *in.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	if in.Status != nil {
		if !in.Status.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, *in.Status)
		}
		if *in.Status == models.StockReceived {
			warehouseID := current.WarehouseID
			if in.WarehouseID != nil {
				warehouseID = *in.WarehouseID
			}
			if warehouseID == "" {
				return ErrWarehouseRequired
			}
			if err := s.checkWarehouse(ctx, warehouseID); err != nil {
				return err
			}
		}
	} else if in.WarehouseID != nil && *in.WarehouseID != "" {
		if err := s.checkWarehouse(ctx, *in.WarehouseID); err != nil {
			return err
		}
	}

	fields := map[string]any{"updated_at": s.now().UTC()}
	if in.ProductName != nil {
		fields["product_name"] = *in.ProductName
	}
	if in.Quantity != nil {
		fields["quantity"] = *in.Quantity
	}
	if in.Unit != nil {
		fields["unit"] = *in.Unit
	}
	if in.WarehouseID != nil {
		fields["warehouse_id"] = *in.WarehouseID
	}
	if in.Status != nil {
		fields["status"] = string(*in.Status)
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.PurchaseDate != nil {
		fields["purchase_date"] = *in.PurchaseDate
	}
	if in.ExpiryDate != nil {
		fields["expiry_date"] = *in.ExpiryDate
	}

	if err := s.store.UpdateVersioned(ctx, store.CollectionStock, id, current.Version, fields); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("update stock item %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionStock,
		DocumentID: id,
		Action:     "update",
		Payload:    fields,
		ActorID:    sess.UserID,
	})

	return nil
}

// Delete removes the stock lot permanently.
func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, store.CollectionStock, id); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("delete stock item %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionStock,
		DocumentID: id,
		Action:     "delete",
		Payload: map[string]any{
			"product_name": current.ProductName,
			"quantity":     current.Quantity,
			"warehouse_id": current.WarehouseID,
			"status":       string(current.Status),
		},
		ActorID: sess.UserID,
	})

	return nil
}

// Transfer moves quantity of a lot to another warehouse. A full move
// reassigns the lot; a partial move splits off a new lot in the target
// warehouse. quantity <= 0 means the whole lot.
func (s *Service) Transfer(ctx context.Context, sess session.Session, id, targetWarehouseID string, quantity float64) (*models.Stock, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Status != models.StockReceived {
		return nil, ErrNotTransferable
	}
	if item.WarehouseID == "" {
		return nil, ErrNoSourceWarehouse
	}
	if err := s.checkWarehouse(ctx, targetWarehouseID); err != nil {
		return nil, err
	}

	if quantity <= 0 {
		quantity = item.Quantity
	}
	if quantity > item.Quantity {
		return nil, ErrTransferTooLarge
	}

	if quantity == item.Quantity {
		if err := s.Update(ctx, sess, id, UpdateInput{WarehouseID: &targetWarehouseID}); err != nil {
			return nil, err
		}
		moved, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.recordTransfer(sess, item, targetWarehouseID, quantity, moved.ID)
		return moved, nil
	}

	// Create the split lot before touching the source so a failure midway
	// never loses quantity. A failed decrement rolls the split back.
	split, err := s.Create(ctx, sess, CreateInput{
		ProductName:  item.ProductName,
		Quantity:     quantity,
		Unit:         item.Unit,
		WarehouseID:  targetWarehouseID,
		Status:       models.StockReceived,
		Category:     item.Category,
		PurchaseDate: item.PurchaseDate,
		ExpiryDate:   item.ExpiryDate,
	})
	if err != nil {
		return nil, err
	}

	remaining := item.Quantity - quantity
	if err := s.Update(ctx, sess, id, UpdateInput{Quantity: &remaining}); err != nil {
		if delErr := s.store.Delete(ctx, store.CollectionStock, split.ID); delErr != nil {
			s.logger.Warn("failed to roll back split lot after transfer error",
				zap.String("stock_id", split.ID), zap.Error(delErr))
		}
		return nil, err
	}

	s.recordTransfer(sess, item, targetWarehouseID, quantity, split.ID)
	return split, nil
}

func (s *Service) recordTransfer(sess session.Session, source *models.Stock, target string, quantity float64, resultID string) {
	s.audit.Record(audit.Entry{
		Collection: store.CollectionStock,
		DocumentID: source.ID,
		Action:     "transfer",
		Payload: map[string]any{
			"from_warehouse": source.WarehouseID,
			"to_warehouse":   target,
			"quantity":       quantity,
			"result_id":      resultID,
		},
		ActorID: sess.UserID,
	})
}

func (s *Service) checkWarehouse(ctx context.Context, warehouseID string) error {
	var warehouse models.Warehouse
	err := s.store.Get(ctx, store.CollectionWarehouses, warehouseID, &warehouse)
	if errors.Is(err, store.ErrNoDocument) {
		return fmt.Errorf("%w: %s", ErrWarehouseNotFound, warehouseID)
	}
	if err != nil {
		return fmt.Errorf("load warehouse %s: %w", warehouseID, err)
	}
	return nil
}
