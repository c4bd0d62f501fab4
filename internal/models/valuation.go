package models

// PriceTrend classifies the 30-day price direction.
type PriceTrend string

const (
	TrendUp     PriceTrend = "up"
	TrendDown   PriceTrend = "down"
	TrendStable PriceTrend = "stable"
)

// ValuationTier identifies which comparable-sales tier produced an estimate.
type ValuationTier int

const (
	// TierExactMatch uses sold history of this exact card.
	TierExactMatch ValuationTier = 1
	// TierDraftClass uses cohort sales scaled by relative population.
	TierDraftClass ValuationTier = 2
	// TierSimilarPopulation interpolates between same-player cards at
	// nearby print runs.
	TierSimilarPopulation ValuationTier = 3
	// TierMarketContext carries no numeric estimate, only context such as
	// active listing counts.
	TierMarketContext ValuationTier = 4
)

// Valuation is the result of one comp engine evaluation for one card.
// EstimatedValue is nil when Tier is TierMarketContext.
type Valuation struct {
	EstimatedValue    *float64      `json:"estimated_value"`
	Avg30DayPrice     *float64      `json:"avg_30_day_price"`
	NumSales30Day     int           `json:"num_sales_30_day"`
	PriceTrend        PriceTrend    `json:"price_trend"`
	LowestActivePrice *float64      `json:"lowest_active_price"`
	LowestActiveURL   string        `json:"lowest_active_url"`
	Tier              ValuationTier `json:"tier"`
	ActiveListings    int           `json:"active_listings"`
}
