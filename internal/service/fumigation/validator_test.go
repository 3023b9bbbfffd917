package fumigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/store"
	"github.com/agrovex/campoflow/internal/store/memory"
)

func TestValidateApplicatorRoles(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	v := NewValidator(st)

	tests := []struct {
		role models.Role
		ok   bool
	}{
		{role: models.RoleAdmin, ok: true},
		{role: models.RoleApplicator, ok: true},
		{role: models.RoleManager, ok: false},
		{role: models.RoleBasic, ok: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			id, err := st.Insert(ctx, store.CollectionUsers, models.User{Username: string(tt.role), Role: tt.role})
			require.NoError(t, err)

			err = v.ValidateApplicator(ctx, id)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrNotApplicator)
		})
	}
}

func TestValidateProductsStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	v := NewValidator(st)

	goodID, err := st.Insert(ctx, store.CollectionStock, models.Stock{
		ProductName: "Glyphosate", Quantity: 10, Unit: "L", WarehouseID: "w1", Status: models.StockReceived,
	})
	require.NoError(t, err)
	emptyID, err := st.Insert(ctx, store.CollectionStock, models.Stock{
		ProductName: "Sulfur", Quantity: 0, Unit: "kg", WarehouseID: "w1", Status: models.StockReceived,
	})
	require.NoError(t, err)

	// The empty lot comes first in caller order, so it is the one reported
	// even though the unknown id after it would also fail.
	err = v.ValidateProducts(ctx, []string{goodID, emptyID, "ghost"})
	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, emptyID, refErr.ID)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	assert.NoError(t, v.ValidateProducts(ctx, []string{goodID}))
	assert.NoError(t, v.ValidateProducts(ctx, nil))
}
