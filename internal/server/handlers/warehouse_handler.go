package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/service/warehouse"
)

// WarehouseHandler exposes warehouse management over HTTP.
type WarehouseHandler struct {
	svc    *warehouse.Service
	logger *zap.Logger
}

// NewWarehouseHandler constructs the HTTP handler adapter.
func NewWarehouseHandler(svc *warehouse.Service, logger *zap.Logger) *WarehouseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseHandler{svc: svc, logger: logger}
}

type createWarehouseRequest struct {
	Name        string  `json:"name" binding:"required"`
	Location    string  `json:"location"`
	Capacity    float64 `json:"capacity"`
	Description string  `json:"description"`
}

// Create inserts a new warehouse.
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req createWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.Create(c.Request.Context(), currentSession(c), warehouse.CreateInput{
		Name:        req.Name,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get returns a single warehouse.
func (h *WarehouseHandler) Get(c *gin.Context) {
	record, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// List returns every warehouse.
func (h *WarehouseHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

type updateWarehouseRequest struct {
	Name        *string  `json:"name"`
	Location    *string  `json:"location"`
	Capacity    *float64 `json:"capacity"`
	Description *string  `json:"description"`
}

// Update applies a partial update.
func (h *WarehouseHandler) Update(c *gin.Context) {
	var req updateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.Update(c.Request.Context(), currentSession(c), c.Param("id"), warehouse.UpdateInput{
		Name:        req.Name,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a warehouse permanently.
func (h *WarehouseHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
