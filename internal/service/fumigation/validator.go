package fumigation

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/store"
)

// Validator gates fumigation writes on the existence and usability of every
// record they reference. It only reads; it performs no side effects and holds
// no reservation on the stock it checks.
type Validator struct {
	store store.Store
}

// NewValidator builds a reference validator over the given store.
func NewValidator(st store.Store) *Validator {
	return &Validator{store: st}
}

// ValidateReferences checks field, applicator and products in that order,
// stopping at the first failure. Products are checked in caller order.
func (v *Validator) ValidateReferences(ctx context.Context, fieldID, applicatorID string, productIDs []string) error {
	if err := v.ValidateField(ctx, fieldID); err != nil {
		return err
	}
	if err := v.ValidateApplicator(ctx, applicatorID); err != nil {
		return err
	}
	return v.ValidateProducts(ctx, productIDs)
}

// ValidateField checks that the field id resolves.
func (v *Validator) ValidateField(ctx context.Context, fieldID string) error {
	var field models.Field
	err := v.store.Get(ctx, store.CollectionFields, fieldID, &field)
	if errors.Is(err, store.ErrNoDocument) {
		return &ReferenceError{Kind: "field", ID: fieldID, Reason: ErrReferenceNotFound}
	}
	if err != nil {
		return fmt.Errorf("load field %s: %w", fieldID, err)
	}
	return nil
}

// ValidateApplicator checks that the applicator id resolves to a user record
// holding an applicator-capable role.
func (v *Validator) ValidateApplicator(ctx context.Context, applicatorID string) error {
	var user models.User
	err := v.store.Get(ctx, store.CollectionUsers, applicatorID, &user)
	if errors.Is(err, store.ErrNoDocument) {
		return &ReferenceError{Kind: "applicator", ID: applicatorID, Reason: ErrReferenceNotFound}
	}
	if err != nil {
		return fmt.Errorf("load applicator %s: %w", applicatorID, err)
	}
	if !user.Role.Can(models.CapApplyFumigations) {
		return &ReferenceError{Kind: "applicator", ID: applicatorID, Reason: ErrNotApplicator}
	}
	return nil
}

// ValidateProducts checks that every stock id resolves to a received item
// with remaining quantity. The check is a point-in-time gate.
func (v *Validator) ValidateProducts(ctx context.Context, productIDs []string) error {
	for _, productID := range productIDs {
		var item models.Stock
		err := v.store.Get(ctx, store.CollectionStock, productID, &item)
		if errors.Is(err, store.ErrNoDocument) {
			return &ReferenceError{Kind: "product", ID: productID, Reason: ErrReferenceNotFound}
		}
		if err != nil {
			return fmt.Errorf("load stock item %s: %w", productID, err)
		}

		if item.Status != models.StockReceived {
			return &ReferenceError{Kind: "product", ID: productID, Reason: ErrProductNotAvailable}
		}
		if item.Quantity <= 0 {
			return &ReferenceError{Kind: "product", ID: productID, Reason: ErrInsufficientQuantity}
		}
	}
	return nil
}
