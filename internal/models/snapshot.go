package models

import "time"

// PortfolioSnapshot stores aggregate portfolio value for historical tracking.
// One row is appended per completed price refresh, upserted per calendar day.
type PortfolioSnapshot struct {
	ID                  uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SnapshotDate        time.Time `json:"snapshot_date" gorm:"uniqueIndex;not null"`
	TotalCostBasis      float64   `json:"total_cost_basis"`
	TotalEstimatedValue float64   `json:"total_estimated_value"`
	CreatedAt           time.Time `json:"created_at"`
}

// PortfolioHistoryResponse is the API response for portfolio value history.
type PortfolioHistoryResponse struct {
	Snapshots []PortfolioSnapshot `json:"snapshots"`
	Period    string              `json:"period"` // "week", "month", "3month", "year", "all"
}
