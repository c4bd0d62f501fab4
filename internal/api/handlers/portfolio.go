package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-portfolio/internal/database"
	"github.com/codyseavey/card-portfolio/internal/models"
	"github.com/codyseavey/card-portfolio/internal/services"
)

// PortfolioHandler serves the aggregate views over the persisted valuations:
// the KPI summary and the historical value chart feed.
type PortfolioHandler struct {
	store     *database.Store
	snapshots *services.SnapshotService
}

func NewPortfolioHandler(store *database.Store, snapshots *services.SnapshotService) *PortfolioHandler {
	return &PortfolioHandler{store: store, snapshots: snapshots}
}

type portfolioSummary struct {
	TotalCostBasis         float64    `json:"total_cost_basis"`
	TotalEstimatedValue    float64    `json:"total_estimated_value"`
	NetAppreciationDollars float64    `json:"net_appreciation_dollars"`
	NetAppreciationPercent float64    `json:"net_appreciation_percent"`
	OwnedCount             int        `json:"owned_count"`
	WantListCount          int        `json:"want_list_count"`
	LastPriceUpdate        *time.Time `json:"last_price_update"`
}

// GetSummary returns portfolio KPIs. Cards without an estimate fall back to
// their cost basis, so a portfolio that has never been refreshed still shows
// a sane total.
func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	cards, err := h.store.ListCards()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var summary portfolioSummary
	for _, card := range cards {
		if !card.IsOwned {
			summary.WantListCount++
			continue
		}
		summary.OwnedCount++

		cost := 0.0
		if card.CostBasis != nil {
			cost = *card.CostBasis
		}
		summary.TotalCostBasis += cost
		if card.EstimatedValue != nil {
			summary.TotalEstimatedValue += *card.EstimatedValue
		} else {
			summary.TotalEstimatedValue += cost
		}

		if card.PriceUpdatedAt != nil &&
			(summary.LastPriceUpdate == nil || card.PriceUpdatedAt.After(*summary.LastPriceUpdate)) {
			summary.LastPriceUpdate = card.PriceUpdatedAt
		}
	}

	summary.NetAppreciationDollars = summary.TotalEstimatedValue - summary.TotalCostBasis
	if summary.TotalCostBasis > 0 {
		summary.NetAppreciationPercent = summary.NetAppreciationDollars / summary.TotalCostBasis * 100
	}

	c.JSON(http.StatusOK, summary)
}

// GetHistory returns portfolio snapshots for the chart.
// ?period=week|month|3month|year|all, defaulting to a month.
func (h *PortfolioHandler) GetHistory(c *gin.Context) {
	period := c.DefaultQuery("period", "month")

	snapshots, err := h.snapshots.History(period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PortfolioHistoryResponse{
		Snapshots: snapshots,
		Period:    period,
	})
}
