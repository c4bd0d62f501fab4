package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codyseavey/card-portfolio/internal/services"
)

// PriceHandler exposes the refresh pipeline: trigger, live status, and the
// synchronous single-card path.
type PriceHandler struct {
	worker *services.RefreshWorker
}

func NewPriceHandler(worker *services.RefreshWorker) *PriceHandler {
	return &PriceHandler{worker: worker}
}

// GetRefreshStatus returns the current refresh job state. Polled by the UI
// every few seconds while a run is in flight.
func (h *PriceHandler) GetRefreshStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.Status())
}

// TriggerRefresh starts a background refresh of every tracked card. Returns
// 409 while a run is already in progress.
func (h *PriceHandler) TriggerRefresh(c *gin.Context) {
	if err := h.worker.TriggerRefresh(); err != nil {
		if errors.Is(err, services.ErrRefreshRunning) {
			c.JSON(http.StatusConflict, gin.H{
				"accepted": false,
				"error":    "refresh already in progress",
				"status":   h.worker.Status(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"accepted": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true, "status": h.worker.Status()})
}

// RefreshCardPrice revalues a single card synchronously. It shares the
// listing cache and marketplace pacing with the background run but does not
// take the run lock.
func (h *PriceHandler) RefreshCardPrice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card id is required"})
		return
	}

	valuation, err := h.worker.RefreshCard(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valuation": valuation})
}
