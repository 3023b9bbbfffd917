package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrovex/campoflow/internal/service/auth"
	"github.com/agrovex/campoflow/internal/service/field"
	"github.com/agrovex/campoflow/internal/service/fumigation"
	"github.com/agrovex/campoflow/internal/service/stock"
	"github.com/agrovex/campoflow/internal/service/user"
	"github.com/agrovex/campoflow/internal/service/warehouse"
	"github.com/agrovex/campoflow/internal/store"
)

// respondError maps domain errors onto HTTP status codes and renders the
// error message for display.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fumigation.ErrNotFound),
		errors.Is(err, stock.ErrNotFound),
		errors.Is(err, field.ErrNotFound),
		errors.Is(err, warehouse.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrWrongPassword):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrPermissionDenied),
		errors.Is(err, user.ErrPermissionDenied),
		errors.Is(err, user.ErrAdminOnly):
		return http.StatusForbidden

	case errors.Is(err, store.ErrConflict),
		errors.Is(err, fumigation.ErrInvalidTransition),
		errors.Is(err, fumigation.ErrDeleteInProgress),
		errors.Is(err, warehouse.ErrHasStock),
		errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, auth.ErrUsernameTaken),
		errors.Is(err, user.ErrSelfDelete),
		errors.Is(err, user.ErrLastAdmin):
		return http.StatusConflict

	case errors.Is(err, fumigation.ErrMissingField),
		errors.Is(err, fumigation.ErrMissingApplicator),
		errors.Is(err, fumigation.ErrMissingProducts),
		errors.Is(err, fumigation.ErrInvalidStatus),
		errors.Is(err, fumigation.ErrReferenceNotFound),
		errors.Is(err, fumigation.ErrNotApplicator),
		errors.Is(err, fumigation.ErrProductNotAvailable),
		errors.Is(err, fumigation.ErrInsufficientQuantity),
		errors.Is(err, stock.ErrMissingProductName),
		errors.Is(err, stock.ErrInvalidQuantity),
		errors.Is(err, stock.ErrMissingUnit),
		errors.Is(err, stock.ErrWarehouseRequired),
		errors.Is(err, stock.ErrWarehouseNotFound),
		errors.Is(err, stock.ErrInvalidStatus),
		errors.Is(err, stock.ErrNotTransferable),
		errors.Is(err, stock.ErrNoSourceWarehouse),
		errors.Is(err, stock.ErrTransferTooLarge),
		errors.Is(err, field.ErrMissingName),
		errors.Is(err, warehouse.ErrMissingName),
		errors.Is(err, user.ErrMissingCredentials),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, user.ErrInvalidRole):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
