package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/service/field"
)

// FieldHandler exposes field management over HTTP.
type FieldHandler struct {
	svc    *field.Service
	logger *zap.Logger
}

// NewFieldHandler constructs the HTTP handler adapter.
func NewFieldHandler(svc *field.Service, logger *zap.Logger) *FieldHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldHandler{svc: svc, logger: logger}
}

type createFieldRequest struct {
	Name      string   `json:"name" binding:"required"`
	Location  string   `json:"location"`
	Size      float64  `json:"size"`
	CropType  string   `json:"crop_type"`
	Status    string   `json:"status"`
	RiskLevel string   `json:"risk_level"`
	Pests     []string `json:"pests"`
	Workers   []string `json:"workers"`
}

// Create inserts a new field.
func (h *FieldHandler) Create(c *gin.Context) {
	var req createFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.Create(c.Request.Context(), currentSession(c), field.CreateInput{
		Name:      req.Name,
		Location:  req.Location,
		Size:      req.Size,
		CropType:  req.CropType,
		Status:    req.Status,
		RiskLevel: req.RiskLevel,
		Pests:     req.Pests,
		Workers:   req.Workers,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get returns a single field.
func (h *FieldHandler) Get(c *gin.Context) {
	record, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// List returns every field.
func (h *FieldHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

type updateFieldRequest struct {
	Name      *string   `json:"name"`
	Location  *string   `json:"location"`
	Size      *float64  `json:"size"`
	CropType  *string   `json:"crop_type"`
	Status    *string   `json:"status"`
	RiskLevel *string   `json:"risk_level"`
	Pests     *[]string `json:"pests"`
	Workers   *[]string `json:"workers"`
}

// Update applies a partial update.
func (h *FieldHandler) Update(c *gin.Context) {
	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.Update(c.Request.Context(), currentSession(c), c.Param("id"), field.UpdateInput{
		Name:      req.Name,
		Location:  req.Location,
		Size:      req.Size,
		CropType:  req.CropType,
		Status:    req.Status,
		RiskLevel: req.RiskLevel,
		Pests:     req.Pests,
		Workers:   req.Workers,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a field permanently.
func (h *FieldHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
