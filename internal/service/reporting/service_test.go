package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovex/campoflow/internal/domain/models"
	fumigationsvc "github.com/agrovex/campoflow/internal/service/fumigation"
	stocksvc "github.com/agrovex/campoflow/internal/service/stock"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store"
	"github.com/agrovex/campoflow/internal/store/memory"
)

type fakeRepository struct {
	ranges []string
	rows   [][][]any
}

func (f *fakeRepository) AppendRows(ctx context.Context, writeRange string, rows [][]any) error {
	f.ranges = append(f.ranges, writeRange)
	f.rows = append(f.rows, rows)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *memory.Store) {
	t.Helper()
	st := memory.New()
	repo := &fakeRepository{}

	fumigations := fumigationsvc.NewService(st, fumigationsvc.NewValidator(st), nil, nil)
	stock := stocksvc.NewService(st, nil, nil)

	svc := NewService(repo, fumigations, stock, nil)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC) }
	return svc, repo, st
}

func TestExportFumigationStatistics(t *testing.T) {
	svc, repo, st := newTestService(t)
	ctx := context.Background()

	fieldID, err := st.Insert(ctx, store.CollectionFields, models.Field{Name: "North plot"})
	require.NoError(t, err)
	applicatorID, err := st.Insert(ctx, store.CollectionUsers, models.User{Username: "worker", Role: models.RoleApplicator})
	require.NoError(t, err)
	productID, err := st.Insert(ctx, store.CollectionStock, models.Stock{
		ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: "w1", Status: models.StockReceived,
	})
	require.NoError(t, err)

	sess := session.Session{UserID: "tester", Role: models.RoleManager}
	fumigations := fumigationsvc.NewService(st, fumigationsvc.NewValidator(st), nil, nil)
	_, err = fumigations.Create(ctx, sess, fumigationsvc.CreateInput{
		FieldID:      fieldID,
		ApplicatorID: applicatorID,
		Products:     []string{productID},
		Date:         time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, svc.ExportFumigationStatistics(ctx))

	require.Len(t, repo.ranges, 1)
	assert.Equal(t, "Fumigations!A:D", repo.ranges[0])

	rows := repo.rows[0]
	// One total row, one row per status, one row per month.
	require.Len(t, rows, 1+len(models.FumigationStatuses)+1)
	assert.Equal(t, []any{"2026-06-01 07:00", "total", "", 1}, rows[0])
	assert.Equal(t, []any{"2026-06-01 07:00", "month", "2026-06", 1}, rows[len(rows)-1])
}

func TestExportStockSummary(t *testing.T) {
	svc, repo, st := newTestService(t)
	ctx := context.Background()

	warehouseID, err := st.Insert(ctx, store.CollectionWarehouses, models.Warehouse{Name: "Shed A"})
	require.NoError(t, err)
	_, err = st.Insert(ctx, store.CollectionStock, models.Stock{
		ProductName: "Glyphosate", Quantity: 20, Unit: "L", WarehouseID: warehouseID, Status: models.StockReceived,
	})
	require.NoError(t, err)
	_, err = st.Insert(ctx, store.CollectionStock, models.Stock{
		ProductName: "Sulfur", Quantity: 50, Unit: "kg", WarehouseID: warehouseID, Status: models.StockReceived,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ExportStockSummary(ctx))

	require.Len(t, repo.ranges, 1)
	assert.Equal(t, "Stock!A:E", repo.ranges[0])

	rows := repo.rows[0]
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"2026-06-01 07:00", warehouseID, "Glyphosate", 20.0, "L"}, rows[0])
	assert.Equal(t, []any{"2026-06-01 07:00", warehouseID, "Sulfur", 50.0, "kg"}, rows[1])
}
