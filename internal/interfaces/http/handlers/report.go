// internal/interfaces/http/handlers/report.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"github.com/your-org/inventory-backend/internal/pkg/report"
)

// ReportHandler serves spreadsheet exports
type ReportHandler struct {
	associationService *supplierarticle.Service
	logger             logrus.FieldLogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(associationService *supplierarticle.Service, logger logrus.FieldLogger) *ReportHandler {
	return &ReportHandler{
		associationService: associationService,
		logger:             logger,
	}
}

// ExportReorderCandidates handles GET /reports/reorder-candidates.xlsx
func (h *ReportHandler) ExportReorderCandidates(c *gin.Context) {
	candidates, err := h.associationService.ReorderCandidates(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := report.ReorderCandidates(&buf, candidates); err != nil {
		respondError(c, h.logger, apperror.Internal("failed to build report", err))
		return
	}
	h.sendWorkbook(c, "reorder-candidates.xlsx", &buf)
}

// ExportBelowSafetyStock handles GET /reports/below-safety-stock.xlsx
func (h *ReportHandler) ExportBelowSafetyStock(c *gin.Context) {
	alerts, err := h.associationService.BelowSafetyStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := report.SafetyStockAlerts(&buf, alerts); err != nil {
		respondError(c, h.logger, apperror.Internal("failed to build report", err))
		return
	}
	h.sendWorkbook(c, "below-safety-stock.xlsx", &buf)
}

// ExportArticleCosts handles GET /reports/articles/:id/costs.xlsx
func (h *ReportHandler) ExportArticleCosts(c *gin.Context) {
	id, ok := parseID(c, "id", "article")
	if !ok {
		return
	}

	costs, err := h.associationService.CostReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := report.SupplierCosts(&buf, costs); err != nil {
		respondError(c, h.logger, apperror.Internal("failed to build report", err))
		return
	}
	h.sendWorkbook(c, fmt.Sprintf("article-%d-costs.xlsx", id), &buf)
}

func (h *ReportHandler) sendWorkbook(c *gin.Context, filename string, buf *bytes.Buffer) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, report.ContentType, buf.Bytes())
}
