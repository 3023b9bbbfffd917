package stock

import (
	"context"

	"github.com/agrovex/campoflow/internal/domain/models"
)

// unassignedKey groups lots that are not bound to a warehouse.
const unassignedKey = "unassigned"

// ProductTotal is the aggregated quantity of one product.
type ProductTotal struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// WarehouseSummary aggregates received lots within one warehouse.
type WarehouseSummary struct {
	TotalItems int                     `json:"total_items"`
	Products   map[string]ProductTotal `json:"products"`
}

// ProductSummary aggregates one product across warehouses.
type ProductSummary struct {
	TotalQuantity float64            `json:"total_quantity"`
	Unit          string             `json:"unit"`
	Warehouses    map[string]float64 `json:"warehouses"`
}

// CategorySummary aggregates received lots within one category.
type CategorySummary struct {
	TotalItems int                     `json:"total_items"`
	Products   map[string]ProductTotal `json:"products"`
}

// SummaryByWarehouse groups received stock by warehouse.
func (s *Service) SummaryByWarehouse(ctx context.Context) (map[string]WarehouseSummary, error) {
	items, err := s.List(ctx, ListFilter{Status: models.StockReceived})
	if err != nil {
		return nil, err
	}

	summary := make(map[string]WarehouseSummary)
	for _, item := range items {
		key := item.WarehouseID
		if key == "" {
			key = unassignedKey
		}

		group, ok := summary[key]
		if !ok {
			group = WarehouseSummary{Products: make(map[string]ProductTotal)}
		}
		group.TotalItems++

		total := group.Products[item.ProductName]
		total.Quantity += item.Quantity
		total.Unit = item.Unit
		group.Products[item.ProductName] = total

		summary[key] = group
	}
	return summary, nil
}

// SummaryByProduct groups received stock by product name.
func (s *Service) SummaryByProduct(ctx context.Context) (map[string]ProductSummary, error) {
	items, err := s.List(ctx, ListFilter{Status: models.StockReceived})
	if err != nil {
		return nil, err
	}

	summary := make(map[string]ProductSummary)
	for _, item := range items {
		group, ok := summary[item.ProductName]
		if !ok {
			group = ProductSummary{Unit: item.Unit, Warehouses: make(map[string]float64)}
		}
		group.TotalQuantity += item.Quantity

		key := item.WarehouseID
		if key == "" {
			key = unassignedKey
		}
		group.Warehouses[key] += item.Quantity

		summary[item.ProductName] = group
	}
	return summary, nil
}

// SummaryByCategory groups received stock by product category.
func (s *Service) SummaryByCategory(ctx context.Context) (map[string]CategorySummary, error) {
	items, err := s.List(ctx, ListFilter{Status: models.StockReceived})
	if err != nil {
		return nil, err
	}

	summary := make(map[string]CategorySummary)
	for _, item := range items {
		key := item.Category
		if key == "" {
			key = "uncategorized"
		}

		group, ok := summary[key]
		if !ok {
			group = CategorySummary{Products: make(map[string]ProductTotal)}
		}
		group.TotalItems++

		total := group.Products[item.ProductName]
		total.Quantity += item.Quantity
		total.Unit = item.Unit
		group.Products[item.ProductName] = total

		summary[key] = group
	}
	return summary, nil
}
