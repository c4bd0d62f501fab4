package services

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/codyseavey/card-portfolio/internal/metrics"
	"github.com/codyseavey/card-portfolio/internal/models"
)

const (
	// lookbackWindow is the period used for all sale-based statistics.
	lookbackWindow = 30 * 24 * time.Hour
	// trendHalf splits the lookback window for trend classification.
	trendHalf = 15 * 24 * time.Hour
	// trendThreshold is the relative move required to call a trend.
	trendThreshold = 0.10
	// populationBand is the ± range for same-player population comps.
	populationBand = 10
	// outlierStdevs drops sale prices this many standard deviations from
	// the mean before averaging, once there are enough samples.
	outlierStdevs   = 2.0
	outlierMinCount = 4
)

// SiblingHistory carries sold listings for a card related to the one being
// valued: either a cohort player's copy of the same parallel, or the same
// player at a nearby print run.
type SiblingHistory struct {
	PlayerName string
	Population *int // nil when unknown (cohort searches) or unlimited
	SameCohort bool
	Sales      []models.Listing
}

// CompEngine derives a valuation from comparable sales. Tiers are evaluated
// in strict precedence order; the first tier with sufficient data wins, and
// the market-context tier never produces a numeric estimate.
type CompEngine struct {
	now func() time.Time // test hook
}

func NewCompEngine() *CompEngine {
	return &CompEngine{now: time.Now}
}

type tierEvaluator struct {
	tier     models.ValuationTier
	evaluate func() *float64
}

// Value produces the valuation for one card from its own sold history, its
// siblings' histories, and current active listings.
func (e *CompEngine) Value(card *models.Card, soldHistory []models.Listing, siblings []SiblingHistory, active []models.Listing) models.Valuation {
	now := e.now()
	recent := salesWithin(soldHistory, now.Add(-lookbackWindow), now)

	evaluators := []tierEvaluator{
		{models.TierExactMatch, func() *float64 { return e.exactMatch(recent) }},
		{models.TierDraftClass, func() *float64 { return e.draftClass(card, siblings, now) }},
		{models.TierSimilarPopulation, func() *float64 { return e.similarPopulation(card, siblings, now) }},
	}

	v := models.Valuation{
		Tier:           models.TierMarketContext,
		ActiveListings: countActive(active),
	}
	for _, ev := range evaluators {
		if est := ev.evaluate(); est != nil {
			v.EstimatedValue = est
			v.Tier = ev.tier
			break
		}
	}

	if len(recent) > 0 {
		avg := mean(listingPrices(recent))
		v.Avg30DayPrice = &avg
		v.NumSales30Day = len(recent)
	}

	v.PriceTrend = e.trend(recent, now)

	if lowest := lowestActive(active); lowest != nil {
		v.LowestActivePrice = &lowest.Price
		v.LowestActiveURL = lowest.URL
	}

	metrics.ValuationsByTier.WithLabelValues(strconv.Itoa(int(v.Tier))).Inc()
	return v
}

// exactMatch is Tier 1: the card's own sales inside the lookback window.
// The estimate is the plain arithmetic mean, matching the 30-day average
// reported alongside it; outlier trimming applies only to the weaker tiers.
func (e *CompEngine) exactMatch(recent []models.Listing) *float64 {
	if len(recent) == 0 {
		return nil
	}
	est := mean(listingPrices(recent))
	return &est
}

// draftClass is Tier 2: cohort sales scaled by relative scarcity. A lower
// population than the cohort median scales the estimate up; unknown or
// unlimited populations are excluded from scaling and treated as the median.
func (e *CompEngine) draftClass(card *models.Card, siblings []SiblingHistory, now time.Time) *float64 {
	var pool []float64
	var pops []float64
	for _, s := range siblings {
		if !s.SameCohort {
			continue
		}
		sales := salesWithin(s.Sales, now.Add(-lookbackWindow), now)
		if len(sales) == 0 {
			continue
		}
		pool = append(pool, listingPrices(sales)...)
		if s.Population != nil {
			pops = append(pops, float64(*s.Population))
		}
	}
	pool = excludeOutliers(pool)
	if len(pool) == 0 {
		return nil
	}

	est := mean(pool)
	if card.Population != nil && len(pops) > 0 {
		cohortMedian := median(pops)
		if cohortMedian > 0 && *card.Population > 0 {
			est *= cohortMedian / float64(*card.Population)
		}
	}
	return &est
}

// similarPopulation is Tier 3: the same player's cards at nearby print runs.
// The estimate interpolates linearly between the nearest population neighbor
// below and above; a single neighbor is used directly.
func (e *CompEngine) similarPopulation(card *models.Card, siblings []SiblingHistory, now time.Time) *float64 {
	if card.Population == nil {
		return nil
	}
	pop := *card.Population

	type neighbor struct {
		population int
		avgPrice   float64
	}
	var below, above *neighbor

	for _, s := range siblings {
		if s.SameCohort || s.PlayerName != card.PlayerName || s.Population == nil {
			continue
		}
		diff := *s.Population - pop
		if diff < -populationBand || diff > populationBand {
			continue
		}
		sales := salesWithin(s.Sales, now.Add(-lookbackWindow), now)
		prices := excludeOutliers(listingPrices(sales))
		if len(prices) == 0 {
			continue
		}
		n := neighbor{population: *s.Population, avgPrice: mean(prices)}

		if n.population <= pop {
			if below == nil || n.population > below.population {
				below = &n
			}
		} else {
			if above == nil || n.population < above.population {
				above = &n
			}
		}
	}

	switch {
	case below != nil && above != nil:
		span := float64(above.population - below.population)
		frac := float64(pop-below.population) / span
		est := below.avgPrice + (above.avgPrice-below.avgPrice)*frac
		return &est
	case below != nil:
		return &below.avgPrice
	case above != nil:
		return &above.avgPrice
	}
	return nil
}

// trend compares the most recent half of the lookback window against the
// prior half.
func (e *CompEngine) trend(recent []models.Listing, now time.Time) models.PriceTrend {
	later := salesWithin(recent, now.Add(-trendHalf), now)
	earlier := salesWithin(recent, now.Add(-lookbackWindow), now.Add(-trendHalf))
	if len(later) == 0 || len(earlier) == 0 {
		return models.TrendStable
	}

	laterMean := mean(listingPrices(later))
	earlierMean := mean(listingPrices(earlier))
	if earlierMean == 0 {
		return models.TrendStable
	}

	rel := (laterMean - earlierMean) / earlierMean
	switch {
	case rel > trendThreshold:
		return models.TrendUp
	case rel < -trendThreshold:
		return models.TrendDown
	}
	return models.TrendStable
}

// lowestActive picks the cheapest active listing, ties broken by earliest
// listing date.
func lowestActive(active []models.Listing) *models.Listing {
	var best *models.Listing
	for i := range active {
		l := &active[i]
		if l.Sold || l.Price <= 0 {
			continue
		}
		if best == nil || l.Price < best.Price ||
			(l.Price == best.Price && l.Date.Before(best.Date)) {
			best = l
		}
	}
	return best
}

func countActive(active []models.Listing) int {
	n := 0
	for _, l := range active {
		if !l.Sold {
			n++
		}
	}
	return n
}

// salesWithin filters sold listings to (from, to].
func salesWithin(listings []models.Listing, from, to time.Time) []models.Listing {
	var out []models.Listing
	for _, l := range listings {
		if !l.Sold || l.Price <= 0 {
			continue
		}
		if l.Date.After(from) && !l.Date.After(to) {
			out = append(out, l)
		}
	}
	return out
}

func listingPrices(listings []models.Listing) []float64 {
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		prices = append(prices, l.Price)
	}
	return prices
}

// excludeOutliers drops prices more than outlierStdevs standard deviations
// from the mean when there are at least outlierMinCount samples.
func excludeOutliers(prices []float64) []float64 {
	if len(prices) < outlierMinCount {
		return prices
	}
	m := mean(prices)
	sd := stdev(prices, m)
	if sd == 0 {
		return prices
	}
	var out []float64
	for _, p := range prices {
		if math.Abs(p-m) <= outlierStdevs*sd {
			out = append(out, p)
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stdev is the sample standard deviation.
func stdev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}
