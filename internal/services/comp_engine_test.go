package services

import (
	"math"
	"testing"
	"time"

	"github.com/codyseavey/card-portfolio/internal/models"
)

var compNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newTestEngine() *CompEngine {
	e := NewCompEngine()
	e.now = func() time.Time { return compNow }
	return e
}

// sale builds a sold listing daysAgo before the fixed engine clock.
func sale(price float64, daysAgo int) models.Listing {
	return models.Listing{
		Price: price,
		Date:  compNow.AddDate(0, 0, -daysAgo),
		Sold:  true,
	}
}

func activeListing(price float64, url string) models.Listing {
	return models.Listing{Price: price, Date: compNow, URL: url}
}

func intPtr(n int) *int { return &n }

func TestExactMatchIsPlainMean(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams"}
	sold := []models.Listing{sale(100, 2), sale(120, 10), sale(140, 20)}

	v := e.Value(card, sold, nil, nil)

	if v.Tier != models.TierExactMatch {
		t.Fatalf("Tier = %d, want %d", v.Tier, models.TierExactMatch)
	}
	if v.EstimatedValue == nil || *v.EstimatedValue != 120 {
		t.Errorf("EstimatedValue = %v, want 120", v.EstimatedValue)
	}
	if v.NumSales30Day != 3 {
		t.Errorf("NumSales30Day = %d, want 3", v.NumSales30Day)
	}
	if v.Avg30DayPrice == nil || *v.Avg30DayPrice != 120 {
		t.Errorf("Avg30DayPrice = %v, want 120", v.Avg30DayPrice)
	}
}

func TestExactMatchKeepsOutliers(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams"}
	// Skewed distribution: the estimate must still be the arithmetic mean
	sold := []models.Listing{
		sale(10, 1), sale(10, 3), sale(10, 5), sale(10, 7), sale(1000, 9),
	}

	v := e.Value(card, sold, nil, nil)

	want := (10 + 10 + 10 + 10 + 1000) / 5.0
	if v.EstimatedValue == nil || math.Abs(*v.EstimatedValue-want) > 1e-9 {
		t.Errorf("EstimatedValue = %v, want %v", v.EstimatedValue, want)
	}
}

func TestStaleSalesIgnored(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams"}
	sold := []models.Listing{sale(500, 45), sale(600, 90)}

	v := e.Value(card, sold, nil, nil)

	if v.Tier != models.TierMarketContext {
		t.Errorf("Tier = %d, want %d", v.Tier, models.TierMarketContext)
	}
	if v.EstimatedValue != nil {
		t.Errorf("EstimatedValue = %v, want nil", *v.EstimatedValue)
	}
	if v.NumSales30Day != 0 {
		t.Errorf("NumSales30Day = %d, want 0", v.NumSales30Day)
	}
}

func TestMarketContextCarriesActiveListings(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams"}
	active := []models.Listing{
		activeListing(95, "https://example.com/a"),
		activeListing(80, "https://example.com/b"),
	}

	v := e.Value(card, nil, nil, active)

	if v.Tier != models.TierMarketContext {
		t.Fatalf("Tier = %d, want %d", v.Tier, models.TierMarketContext)
	}
	if v.EstimatedValue != nil {
		t.Errorf("EstimatedValue = %v, want nil", *v.EstimatedValue)
	}
	if v.ActiveListings != 2 {
		t.Errorf("ActiveListings = %d, want 2", v.ActiveListings)
	}
	if v.LowestActivePrice == nil || *v.LowestActivePrice != 80 {
		t.Errorf("LowestActivePrice = %v, want 80", v.LowestActivePrice)
	}
	if v.LowestActiveURL != "https://example.com/b" {
		t.Errorf("LowestActiveURL = %q, want the $80 listing", v.LowestActiveURL)
	}
}

func TestDraftClassScalesByScarcity(t *testing.T) {
	e := newTestEngine()
	// Card is twice as scarce as the cohort median print run
	card := &models.Card{PlayerName: "Caleb Williams", Population: intPtr(10)}
	siblings := []SiblingHistory{
		{
			PlayerName: "Jayden Daniels",
			Population: intPtr(20),
			SameCohort: true,
			Sales:      []models.Listing{sale(40, 3), sale(60, 8)},
		},
	}

	v := e.Value(card, nil, siblings, nil)

	if v.Tier != models.TierDraftClass {
		t.Fatalf("Tier = %d, want %d", v.Tier, models.TierDraftClass)
	}
	// pool mean 50, scaled by 20/10
	if v.EstimatedValue == nil || math.Abs(*v.EstimatedValue-100) > 1e-9 {
		t.Errorf("EstimatedValue = %v, want 100", v.EstimatedValue)
	}
}

func TestDraftClassUnknownPopulationSkipsScaling(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams"}
	siblings := []SiblingHistory{
		{
			PlayerName: "Drake Maye",
			SameCohort: true,
			Sales:      []models.Listing{sale(40, 3), sale(60, 8)},
		},
	}

	v := e.Value(card, nil, siblings, nil)

	if v.Tier != models.TierDraftClass {
		t.Fatalf("Tier = %d, want %d", v.Tier, models.TierDraftClass)
	}
	if v.EstimatedValue == nil || math.Abs(*v.EstimatedValue-50) > 1e-9 {
		t.Errorf("EstimatedValue = %v, want 50", v.EstimatedValue)
	}
}

func TestDraftClassExcludesOutliers(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams"}

	var sales []models.Listing
	for i := 0; i < 9; i++ {
		sales = append(sales, sale(100, i+1))
	}
	sales = append(sales, sale(1000, 12))
	siblings := []SiblingHistory{
		{PlayerName: "Bo Nix", SameCohort: true, Sales: sales},
	}

	v := e.Value(card, nil, siblings, nil)

	if v.EstimatedValue == nil || math.Abs(*v.EstimatedValue-100) > 1e-9 {
		t.Errorf("EstimatedValue = %v, want 100 after dropping the $1000 sale", v.EstimatedValue)
	}
}

func TestSimilarPopulationInterpolates(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams", Population: intPtr(10)}
	siblings := []SiblingHistory{
		{
			PlayerName: "Caleb Williams",
			Population: intPtr(5),
			Sales:      []models.Listing{sale(200, 4)},
		},
		{
			PlayerName: "Caleb Williams",
			Population: intPtr(15),
			Sales:      []models.Listing{sale(100, 6)},
		},
	}

	v := e.Value(card, nil, siblings, nil)

	if v.Tier != models.TierSimilarPopulation {
		t.Fatalf("Tier = %d, want %d", v.Tier, models.TierSimilarPopulation)
	}
	// Halfway between /5 at $200 and /15 at $100
	if v.EstimatedValue == nil || math.Abs(*v.EstimatedValue-150) > 1e-9 {
		t.Errorf("EstimatedValue = %v, want 150", v.EstimatedValue)
	}
}

func TestSimilarPopulationSingleNeighbor(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams", Population: intPtr(10)}
	siblings := []SiblingHistory{
		{
			PlayerName: "Caleb Williams",
			Population: intPtr(15),
			Sales:      []models.Listing{sale(100, 6), sale(120, 9)},
		},
	}

	v := e.Value(card, nil, siblings, nil)

	if v.Tier != models.TierSimilarPopulation {
		t.Fatalf("Tier = %d, want %d", v.Tier, models.TierSimilarPopulation)
	}
	if v.EstimatedValue == nil || math.Abs(*v.EstimatedValue-110) > 1e-9 {
		t.Errorf("EstimatedValue = %v, want 110", v.EstimatedValue)
	}
}

func TestSimilarPopulationIgnoresFarPrintRuns(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams", Population: intPtr(10)}
	siblings := []SiblingHistory{
		{
			PlayerName: "Caleb Williams",
			Population: intPtr(99),
			Sales:      []models.Listing{sale(20, 4)},
		},
	}

	v := e.Value(card, nil, siblings, nil)

	if v.Tier != models.TierMarketContext {
		t.Errorf("Tier = %d, want %d", v.Tier, models.TierMarketContext)
	}
}

func TestOwnSalesOutrankCohort(t *testing.T) {
	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams", Population: intPtr(10)}
	sold := []models.Listing{sale(300, 5)}
	siblings := []SiblingHistory{
		{
			PlayerName: "Jayden Daniels",
			SameCohort: true,
			Sales:      []models.Listing{sale(40, 3), sale(60, 8)},
		},
	}

	v := e.Value(card, sold, siblings, nil)

	if v.Tier != models.TierExactMatch {
		t.Errorf("Tier = %d, want %d", v.Tier, models.TierExactMatch)
	}
	if v.EstimatedValue == nil || *v.EstimatedValue != 300 {
		t.Errorf("EstimatedValue = %v, want 300", v.EstimatedValue)
	}
}

func TestTrendClassification(t *testing.T) {
	tests := []struct {
		name string
		sold []models.Listing
		want models.PriceTrend
	}{
		{
			name: "rising beyond threshold",
			sold: []models.Listing{sale(100, 20), sale(130, 5)},
			want: models.TrendUp,
		},
		{
			name: "falling beyond threshold",
			sold: []models.Listing{sale(100, 20), sale(70, 5)},
			want: models.TrendDown,
		},
		{
			name: "within threshold is stable",
			sold: []models.Listing{sale(100, 20), sale(105, 5)},
			want: models.TrendStable,
		},
		{
			name: "one empty half is stable",
			sold: []models.Listing{sale(100, 5), sale(120, 3)},
			want: models.TrendStable,
		},
		{
			name: "no sales is stable",
			sold: nil,
			want: models.TrendStable,
		},
	}

	e := newTestEngine()
	card := &models.Card{PlayerName: "Caleb Williams"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Value(card, tt.sold, nil, nil)
			if v.PriceTrend != tt.want {
				t.Errorf("PriceTrend = %q, want %q", v.PriceTrend, tt.want)
			}
		})
	}
}

func TestLowestActiveTieBreaksOnDate(t *testing.T) {
	earlier := models.Listing{Price: 80, Date: compNow.AddDate(0, 0, -3), URL: "first"}
	later := models.Listing{Price: 80, Date: compNow, URL: "second"}

	best := lowestActive([]models.Listing{later, earlier})
	if best == nil || best.URL != "first" {
		t.Errorf("lowestActive picked %+v, want the earlier $80 listing", best)
	}
}
