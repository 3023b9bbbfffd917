package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/service/reporting"
)

// ReportHandler triggers spreadsheet exports. The reporting service may be
// nil when the sheets integration is not configured.
type ReportHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Export pushes the current fumigation statistics and stock summary to the
// configured spreadsheet.
func (h *ReportHandler) Export(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report export is not configured"})
		return
	}

	ctx := c.Request.Context()
	if err := h.svc.ExportFumigationStatistics(ctx); err != nil {
		h.logger.Error("fumigation statistics export failed", zap.Error(err))
		respondError(c, err)
		return
	}
	if err := h.svc.ExportStockSummary(ctx); err != nil {
		h.logger.Error("stock summary export failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}
