package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store"
	"github.com/agrovex/campoflow/internal/store/memory"
)

var testSession = session.Session{UserID: "tester", Username: "tester", Role: models.RoleManager}

func newTestService(t *testing.T) (*Service, *memory.Store, string, string) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	warehouseA, err := st.Insert(ctx, store.CollectionWarehouses, models.Warehouse{Name: "Shed A"})
	require.NoError(t, err)
	warehouseB, err := st.Insert(ctx, store.CollectionWarehouses, models.Warehouse{Name: "Shed B"})
	require.NoError(t, err)

	return NewService(st, nil, nil), st, warehouseA, warehouseB
}

func TestCreate(t *testing.T) {
	svc, _, warehouseA, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreateInput
		wantErr error
	}{
		{
			name: "received lot with warehouse",
			in:   CreateInput{ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseA},
		},
		{
			name: "purchased lot without warehouse",
			in:   CreateInput{ProductName: "Copper sulfate", Quantity: 5, Unit: "kg", Status: models.StockPurchased},
		},
		{
			name:    "missing product name",
			in:      CreateInput{Quantity: 5, Unit: "kg", WarehouseID: warehouseA},
			wantErr: ErrMissingProductName,
		},
		{
			name:    "zero quantity",
			in:      CreateInput{ProductName: "Sulfur", Unit: "kg", WarehouseID: warehouseA},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			in:      CreateInput{ProductName: "Sulfur", Quantity: -1, Unit: "kg", WarehouseID: warehouseA},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "missing unit",
			in:      CreateInput{ProductName: "Sulfur", Quantity: 5, WarehouseID: warehouseA},
			wantErr: ErrMissingUnit,
		},
		{
			name:    "received without warehouse",
			in:      CreateInput{ProductName: "Sulfur", Quantity: 5, Unit: "kg"},
			wantErr: ErrWarehouseRequired,
		},
		{
			name:    "unknown warehouse",
			in:      CreateInput{ProductName: "Sulfur", Quantity: 5, Unit: "kg", WarehouseID: "ghost"},
			wantErr: ErrWarehouseNotFound,
		},
		{
			name:    "unknown status",
			in:      CreateInput{ProductName: "Sulfur", Quantity: 5, Unit: "kg", WarehouseID: warehouseA, Status: "lost"},
			wantErr: ErrInvalidStatus,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := svc.Create(ctx, testSession, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, item.ID)
			assert.Equal(t, int64(1), item.Version)
			if tt.in.Status == "" {
				assert.Equal(t, models.StockReceived, item.Status)
			}
			assert.False(t, item.PurchaseDate.IsZero())
		})
	}
}

func TestUpdateReceivedNeedsWarehouse(t *testing.T) {
	svc, _, warehouseA, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, testSession, CreateInput{
		ProductName: "Copper sulfate", Quantity: 5, Unit: "kg", Status: models.StockPurchased,
	})
	require.NoError(t, err)

	received := models.StockReceived
	err = svc.Update(ctx, testSession, item.ID, UpdateInput{Status: &received})
	assert.ErrorIs(t, err, ErrWarehouseRequired)

	// Supplying the warehouse in the same update satisfies the rule.
	require.NoError(t, svc.Update(ctx, testSession, item.ID, UpdateInput{Status: &received, WarehouseID: &warehouseA}))

	current, err := svc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StockReceived, current.Status)
	assert.Equal(t, warehouseA, current.WarehouseID)
}

func TestUpdateRejectsBadQuantity(t *testing.T) {
	svc, _, warehouseA, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, testSession, CreateInput{
		ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseA,
	})
	require.NoError(t, err)

	zero := 0.0
	err = svc.Update(ctx, testSession, item.ID, UpdateInput{Quantity: &zero})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestDelete(t *testing.T) {
	svc, _, warehouseA, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, testSession, CreateInput{
		ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseA,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, testSession, item.ID))

	_, err = svc.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, testSession, "ghost"), ErrNotFound)
}

func TestTransferFullMove(t *testing.T) {
	svc, _, warehouseA, warehouseB := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, testSession, CreateInput{
		ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseA,
	})
	require.NoError(t, err)

	moved, err := svc.Transfer(ctx, testSession, item.ID, warehouseB, 0)
	require.NoError(t, err)

	assert.Equal(t, item.ID, moved.ID)
	assert.Equal(t, warehouseB, moved.WarehouseID)
	assert.InDelta(t, 20, moved.Quantity, 0.0001)

	// No split lot was created.
	items, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestTransferPartialSplitsLot(t *testing.T) {
	svc, _, warehouseA, warehouseB := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, testSession, CreateInput{
		ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseA, Category: "herbicide",
	})
	require.NoError(t, err)

	split, err := svc.Transfer(ctx, testSession, item.ID, warehouseB, 8)
	require.NoError(t, err)

	assert.NotEqual(t, item.ID, split.ID)
	assert.Equal(t, warehouseB, split.WarehouseID)
	assert.InDelta(t, 8, split.Quantity, 0.0001)
	assert.Equal(t, "Glyphosate", split.ProductName)
	assert.Equal(t, "herbicide", split.Category)
	assert.Equal(t, models.StockReceived, split.Status)

	source, err := svc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, warehouseA, source.WarehouseID)
	assert.InDelta(t, 12, source.Quantity, 0.0001)
}

// failingUpdateStore refuses versioned updates for one document id so tests
// can drive Transfer into its rollback path.
type failingUpdateStore struct {
	*memory.Store
	failID string
}

func (s *failingUpdateStore) UpdateVersioned(ctx context.Context, collection, id string, version int64, fields map[string]any) error {
	if collection == store.CollectionStock && id == s.failID {
		return errors.New("store unavailable")
	}
	return s.Store.UpdateVersioned(ctx, collection, id, version, fields)
}

func TestTransferPartialRollsBackSplitOnFailure(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	warehouseA, err := st.Insert(ctx, store.CollectionWarehouses, models.Warehouse{Name: "Shed A"})
	require.NoError(t, err)
	warehouseB, err := st.Insert(ctx, store.CollectionWarehouses, models.Warehouse{Name: "Shed B"})
	require.NoError(t, err)

	seed := NewService(st, nil, nil)
	item, err := seed.Create(ctx, testSession, CreateInput{
		ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseA,
	})
	require.NoError(t, err)

	svc := NewService(&failingUpdateStore{Store: st, failID: item.ID}, nil, nil)
	_, err = svc.Transfer(ctx, testSession, item.ID, warehouseB, 8)
	require.Error(t, err)

	// The source lot keeps its full quantity and the split lot is gone.
	source, err := seed.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 20, source.Quantity, 0.0001)

	var lots []models.Stock
	require.NoError(t, st.Query(ctx, store.CollectionStock, nil, &lots))
	require.Len(t, lots, 1)
	assert.Equal(t, item.ID, lots[0].ID)
}

func TestTransferRejections(t *testing.T) {
	svc, _, warehouseA, warehouseB := newTestService(t)
	ctx := context.Background()

	received, err := svc.Create(ctx, testSession, CreateInput{
		ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseA,
	})
	require.NoError(t, err)
	purchased, err := svc.Create(ctx, testSession, CreateInput{
		ProductName: "Copper sulfate", Quantity: 5, Unit: "kg", Status: models.StockPurchased,
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		id       string
		target   string
		quantity float64
		wantErr  error
	}{
		{name: "unknown lot", id: "ghost", target: warehouseB, wantErr: ErrNotFound},
		{name: "purchased lot", id: purchased.ID, target: warehouseB, wantErr: ErrNotTransferable},
		{name: "unknown target", id: received.ID, target: "ghost", wantErr: ErrWarehouseNotFound},
		{name: "more than the lot holds", id: received.ID, target: warehouseB, quantity: 21, wantErr: ErrTransferTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Transfer(ctx, testSession, tt.id, tt.target, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSummaries(t *testing.T) {
	svc, _, warehouseA, warehouseB := newTestService(t)
	ctx := context.Background()

	seed := func(in CreateInput) {
		_, err := svc.Create(ctx, testSession, in)
		require.NoError(t, err)
	}

	seed(CreateInput{ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseA, Category: "herbicide"})
	seed(CreateInput{ProductName: "Glyphosate", Quantity: 10, Unit: "L", WarehouseID: warehouseB, Category: "herbicide"})
	seed(CreateInput{ProductName: "Sulfur", Quantity: 50, Unit: "kg", WarehouseID: warehouseA, Category: "fungicide"})
	// Purchased lots never show up in summaries.
	seed(CreateInput{ProductName: "Copper sulfate", Quantity: 5, Unit: "kg", Status: models.StockPurchased})

	t.Run("by warehouse", func(t *testing.T) {
		summary, err := svc.SummaryByWarehouse(ctx)
		require.NoError(t, err)
		require.Len(t, summary, 2)

		shedA := summary[warehouseA]
		assert.Equal(t, 2, shedA.TotalItems)
		assert.InDelta(t, 20, shedA.Products["Glyphosate"].Quantity, 0.0001)
		assert.InDelta(t, 50, shedA.Products["Sulfur"].Quantity, 0.0001)
		assert.Equal(t, "kg", shedA.Products["Sulfur"].Unit)
	})

	t.Run("by product", func(t *testing.T) {
		summary, err := svc.SummaryByProduct(ctx)
		require.NoError(t, err)
		require.Len(t, summary, 2)

		glyphosate := summary["Glyphosate"]
		assert.InDelta(t, 30, glyphosate.TotalQuantity, 0.0001)
		assert.Equal(t, "L", glyphosate.Unit)
		assert.InDelta(t, 20, glyphosate.Warehouses[warehouseA], 0.0001)
		assert.InDelta(t, 10, glyphosate.Warehouses[warehouseB], 0.0001)
	})

	t.Run("by category", func(t *testing.T) {
		summary, err := svc.SummaryByCategory(ctx)
		require.NoError(t, err)
		require.Len(t, summary, 2)

		assert.Equal(t, 2, summary["herbicide"].TotalItems)
		assert.Equal(t, 1, summary["fungicide"].TotalItems)
	})
}
