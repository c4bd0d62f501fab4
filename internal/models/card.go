package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Card is a tracked collectible card, either owned or on the want list.
// The valuation columns are overwritten on every price refresh; they are
// derived data, never a source of truth.
type Card struct {
	ID             string   `json:"id" gorm:"primaryKey"`
	PlayerName     string   `json:"player_name" gorm:"not null;index"`
	Year           int      `json:"year" gorm:"not null"`
	SetName        string   `json:"set_name" gorm:"not null"`
	ParallelRarity string   `json:"parallel_rarity" gorm:"not null"`
	SerialNumber   string   `json:"serial_number"`
	Population     *int     `json:"population"` // print run ceiling, nil = unlimited
	IsOwned        bool     `json:"is_owned" gorm:"index"`
	DateAcquired   *string  `json:"date_acquired"` // YYYY-MM-DD, set only when owned
	CostBasis      *float64 `json:"cost_basis"`
	IsGraded       bool     `json:"is_graded"`
	GradingCompany string   `json:"grading_company"`
	Grade          *float64 `json:"grade"`

	// Valuation columns, superseded on each refresh
	EstimatedValue    *float64      `json:"estimated_value"`
	Avg30DayPrice     *float64      `json:"avg_30_day_price" gorm:"column:avg_30_day_price"`
	NumSales30Day     int           `json:"num_sales_30_day" gorm:"column:num_sales_30_day"`
	PriceTrend        PriceTrend    `json:"price_trend"`
	LowestActivePrice *float64      `json:"lowest_active_price"`
	LowestActiveURL   string        `json:"lowest_active_url"`
	ValuationTier     ValuationTier `json:"valuation_tier"`
	PriceUpdatedAt    *time.Time    `json:"price_updated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label is the human-readable name shown in refresh progress.
func (c *Card) Label() string {
	return fmt.Sprintf("%s - %s", c.SetName, c.ParallelRarity)
}

var populationRe = regexp.MustCompile(`(\d+)?/(\d+)`)

// ParsePopulation extracts the serial number and population ceiling from a
// parallel name like "Purple /60" or "Gold Vinyl 1/1". Returns an empty
// serial and nil population for unlimited parallels.
func ParsePopulation(parallelRarity string) (string, *int) {
	m := populationRe.FindStringSubmatch(parallelRarity)
	if m == nil {
		return "", nil
	}
	pop, err := strconv.Atoi(m[2])
	if err != nil || pop <= 0 {
		return "", nil
	}
	return m[0], &pop
}
