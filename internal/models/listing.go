package models

import "time"

// QueryKind selects which marketplace listings a search returns.
type QueryKind string

const (
	QuerySold   QueryKind = "sold"
	QueryActive QueryKind = "active"
)

// Listing is a single normalized marketplace result. Listings are transient:
// they flow from the marketplace adapter into the comp engine and are never
// persisted, only the derived valuation is.
type Listing struct {
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
	Platform string    `json:"platform"`
	URL      string    `json:"url"`
	Sold     bool      `json:"sold"`
}
