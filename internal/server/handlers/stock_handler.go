package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/service/stock"
)

// StockHandler exposes inventory management over HTTP.
type StockHandler struct {
	svc    *stock.Service
	logger *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(svc *stock.Service, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, logger: logger}
}

type createStockRequest struct {
	ProductName  string     `json:"product_name" binding:"required"`
	Quantity     float64    `json:"quantity" binding:"required"`
	Unit         string     `json:"unit" binding:"required"`
	WarehouseID  string     `json:"warehouse_id"`
	Status       string     `json:"status"`
	Category     string     `json:"category"`
	PurchaseDate time.Time  `json:"purchase_date"`
	ExpiryDate   *time.Time `json:"expiry_date"`
}

// Create inserts a new stock lot.
func (h *StockHandler) Create(c *gin.Context) {
	var req createStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.svc.Create(c.Request.Context(), currentSession(c), stock.CreateInput{
		ProductName:  req.ProductName,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		WarehouseID:  req.WarehouseID,
		Status:       models.StockStatus(req.Status),
		Category:     req.Category,
		PurchaseDate: req.PurchaseDate,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Get returns a single stock lot.
func (h *StockHandler) Get(c *gin.Context) {
	item, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// List returns stock lots matching the query filters.
func (h *StockHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), stock.ListFilter{
		WarehouseID: c.Query("warehouse_id"),
		Status:      models.StockStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type updateStockRequest struct {
	ProductName  *string             `json:"product_name"`
	Quantity     *float64            `json:"quantity"`
	Unit         *string             `json:"unit"`
	WarehouseID  *string             `json:"warehouse_id"`
	Status       *models.StockStatus `json:"status"`
	Category     *string             `json:"category"`
	PurchaseDate *time.Time          `json:"purchase_date"`
	ExpiryDate   *time.Time          `json:"expiry_date"`
}

// Update applies a partial update.
func (h *StockHandler) Update(c *gin.Context) {
	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.Update(c.Request.Context(), currentSession(c), c.Param("id"), stock.UpdateInput{
		ProductName:  req.ProductName,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		WarehouseID:  req.WarehouseID,
		Status:       req.Status,
		Category:     req.Category,
		PurchaseDate: req.PurchaseDate,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a stock lot permanently.
func (h *StockHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transferRequest struct {
	TargetWarehouseID string  `json:"target_warehouse_id" binding:"required"`
	Quantity          float64 `json:"quantity"`
}

// Transfer moves stock between warehouses.
func (h *StockHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Transfer(c.Request.Context(), currentSession(c), c.Param("id"), req.TargetWarehouseID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Summary returns the received-stock aggregation for the requested grouping.
func (h *StockHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.DefaultQuery("group_by", "warehouse") {
	case "warehouse":
		summary, err := h.svc.SummaryByWarehouse(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	case "product":
		summary, err := h.svc.SummaryByProduct(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	case "category":
		summary, err := h.svc.SummaryByCategory(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_by must be warehouse, product or category"})
	}
}
