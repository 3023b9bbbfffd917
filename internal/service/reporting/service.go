// Package reporting turns fumigation statistics and stock summaries into
// spreadsheet rows for external review.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/repository/sheets"
	"github.com/agrovex/campoflow/internal/service/fumigation"
	"github.com/agrovex/campoflow/internal/service/stock"
)

const (
	fumigationExportRange = "Fumigations!A:D"
	stockExportRange      = "Stock!A:E"
	exportDateLayout      = "2006-01-02 15:04"
)

// Service exports aggregated reports to the configured spreadsheet.
type Service struct {
	repo        sheets.Repository
	fumigations *fumigation.Service
	stock       *stock.Service
	logger      *zap.Logger
	now         func() time.Time
}

// NewService wires the reporting service.
func NewService(repo sheets.Repository, fumigations *fumigation.Service, stockSvc *stock.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		fumigations: fumigations,
		stock:       stockSvc,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportFumigationStatistics appends the current per-status and per-month
// counts to the fumigations sheet.
func (s *Service) ExportFumigationStatistics(ctx context.Context) error {
	stats, err := s.fumigations.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("collect fumigation statistics: %w", err)
	}

	stamp := s.now().UTC().Format(exportDateLayout)
	rows := [][]any{
		{stamp, "total", "", stats.Total},
	}
	for _, status := range models.FumigationStatuses {
		rows = append(rows, []any{stamp, "status", status.Label(), stats.ByStatus[status]})
	}
	for _, month := range sortedKeys(stats.ByMonth) {
		rows = append(rows, []any{stamp, "month", month, stats.ByMonth[month]})
	}

	if err := s.repo.AppendRows(ctx, fumigationExportRange, rows); err != nil {
		return fmt.Errorf("export fumigation statistics: %w", err)
	}

	s.logger.Info("fumigation statistics exported", zap.Int("rows", len(rows)))
	return nil
}

// ExportStockSummary appends the current received-stock totals per warehouse
// to the stock sheet.
func (s *Service) ExportStockSummary(ctx context.Context) error {
	summary, err := s.stock.SummaryByWarehouse(ctx)
	if err != nil {
		return fmt.Errorf("collect stock summary: %w", err)
	}

	stamp := s.now().UTC().Format(exportDateLayout)
	var rows [][]any
	for _, warehouseID := range sortedSummaryKeys(summary) {
		group := summary[warehouseID]
		for _, product := range sortedProductKeys(group.Products) {
			total := group.Products[product]
			rows = append(rows, []any{stamp, warehouseID, product, total.Quantity, total.Unit})
		}
	}

	if err := s.repo.AppendRows(ctx, stockExportRange, rows); err != nil {
		return fmt.Errorf("export stock summary: %w", err)
	}

	s.logger.Info("stock summary exported", zap.Int("rows", len(rows)))
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSummaryKeys(m map[string]stock.WarehouseSummary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedProductKeys(m map[string]stock.ProductTotal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
