package fumigation

import (
	"errors"
	"fmt"

	"github.com/agrovex/campoflow/internal/domain/models"
)

var (
	// ErrMissingField indicates the fumigation has no field assigned.
	ErrMissingField = errors.New("a field is required for the fumigation")
	// ErrMissingApplicator indicates the fumigation has no applicator assigned.
	ErrMissingApplicator = errors.New("an applicator is required for the fumigation")
	// ErrMissingProducts indicates the product list is empty.
	ErrMissingProducts = errors.New("at least one product is required for the fumigation")

	// ErrNotFound indicates the fumigation id does not resolve.
	ErrNotFound = errors.New("fumigation not found")
	// ErrInvalidStatus indicates an unknown status literal.
	ErrInvalidStatus = errors.New("invalid fumigation status")
	// ErrInvalidTransition indicates the requested status edge is not permitted.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrDeleteInProgress indicates a delete was attempted on an active task.
	ErrDeleteInProgress = errors.New("cannot delete a fumigation in progress")

	// ErrReferenceNotFound indicates a referenced record does not exist.
	ErrReferenceNotFound = errors.New("referenced record does not exist")
	// ErrNotApplicator indicates the referenced user cannot apply fumigations.
	ErrNotApplicator = errors.New("user cannot be assigned as applicator")
	// ErrProductNotAvailable indicates the stock item has not been received.
	ErrProductNotAvailable = errors.New("product is not available for use")
	// ErrInsufficientQuantity indicates the stock item has no remaining quantity.
	ErrInsufficientQuantity = errors.New("product has no quantity left")
)

// ReferenceError reports which referenced entity failed validation and why.
// It unwraps to one of ErrReferenceNotFound, ErrNotApplicator,
// ErrProductNotAvailable or ErrInsufficientQuantity.
type ReferenceError struct {
	Kind   string // "field", "applicator" or "product"
	ID     string
	Reason error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Kind, e.ID, e.Reason)
}

func (e *ReferenceError) Unwrap() error {
	return e.Reason
}

// TransitionError reports a rejected status edge. It unwraps to
// ErrInvalidTransition.
type TransitionError struct {
	From models.FumigationStatus
	To   models.FumigationStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
