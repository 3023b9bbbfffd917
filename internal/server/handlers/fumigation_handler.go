package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/service/fumigation"
)

// FumigationHandler exposes the fumigation lifecycle over HTTP.
type FumigationHandler struct {
	svc    *fumigation.Service
	logger *zap.Logger
}

// NewFumigationHandler constructs the HTTP handler adapter.
func NewFumigationHandler(svc *fumigation.Service, logger *zap.Logger) *FumigationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FumigationHandler{svc: svc, logger: logger}
}

type createFumigationRequest struct {
	FieldID      string             `json:"field_id" binding:"required"`
	ApplicatorID string             `json:"applicator_id" binding:"required"`
	Products     []string           `json:"products" binding:"required"`
	Dosage       map[string]float64 `json:"dosage"`
	Date         time.Time          `json:"date"`
	Notes        string             `json:"notes"`
}

// Create schedules a new fumigation.
func (h *FumigationHandler) Create(c *gin.Context) {
	var req createFumigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.Create(c.Request.Context(), currentSession(c), fumigation.CreateInput{
		FieldID:      req.FieldID,
		ApplicatorID: req.ApplicatorID,
		Products:     req.Products,
		Dosage:       req.Dosage,
		Date:         req.Date,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get returns a single fumigation.
func (h *FumigationHandler) Get(c *gin.Context) {
	record, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// List returns fumigations matching the query filters, newest date first.
func (h *FumigationHandler) List(c *gin.Context) {
	filter := fumigation.ListFilter{
		FieldID:      c.Query("field_id"),
		ApplicatorID: c.Query("applicator_id"),
		Status:       models.FumigationStatus(c.Query("status")),
	}

	records, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})

	c.JSON(http.StatusOK, records)
}

type updateFumigationRequest struct {
	FieldID      *string                  `json:"field_id"`
	ApplicatorID *string                  `json:"applicator_id"`
	Products     *[]string                `json:"products"`
	Dosage       *map[string]float64      `json:"dosage"`
	Date         *time.Time               `json:"date"`
	Status       *models.FumigationStatus `json:"status"`
	Notes        *string                  `json:"notes"`
}

// Update applies a partial update.
func (h *FumigationHandler) Update(c *gin.Context) {
	var req updateFumigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.Update(c.Request.Context(), currentSession(c), c.Param("id"), fumigation.UpdateInput{
		FieldID:      req.FieldID,
		ApplicatorID: req.ApplicatorID,
		Products:     req.Products,
		Dosage:       req.Dosage,
		Date:         req.Date,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus moves the fumigation along one state machine edge.
func (h *FumigationHandler) ChangeStatus(c *gin.Context) {
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.ChangeStatus(c.Request.Context(), currentSession(c), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a fumigation permanently.
func (h *FumigationHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upcoming returns scheduled fumigations inside the requested horizon.
func (h *FumigationHandler) Upcoming(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	records, err := h.svc.Upcoming(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Statistics returns aggregate counts over all fumigations.
func (h *FumigationHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
