package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/replenishment"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
)

// ReplenishmentHandler triggers the periodic review on demand
type ReplenishmentHandler struct {
	job    *replenishment.Job
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewReplenishmentHandler creates a new replenishment handler
func NewReplenishmentHandler(job *replenishment.Job, logger logrus.FieldLogger) *ReplenishmentHandler {
	return &ReplenishmentHandler{
		job:    job,
		logger: logger,
		now:    time.Now,
	}
}

// RunReplenishment handles POST /replenishment/run
func (h *ReplenishmentHandler) RunReplenishment(c *gin.Context) {
	report, err := h.job.Run(c.Request.Context(), h.now())
	if errors.Is(err, replenishment.ErrRunInProgress) {
		respondError(c, h.logger, apperror.Conflict("a replenishment run is already in progress"))
		return
	}
	if err != nil {
		respondError(c, h.logger, apperror.Internal("replenishment run failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Replenishment run completed",
		"data":    report,
	})
}
