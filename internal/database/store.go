package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/card-portfolio/internal/models"
)

// Store is the gorm-backed storage layer for cards and snapshots. The
// valuation pipeline consumes it through the narrow interfaces declared in
// the services package.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListCards returns all tracked cards in a stable enumeration order, so a
// refresh run walks cards in the same order every cycle.
func (s *Store) ListCards() ([]models.Card, error) {
	var cards []models.Card
	if err := s.db.Order("created_at ASC, id ASC").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

func (s *Store) GetCard(id string) (*models.Card, error) {
	var card models.Card
	if err := s.db.First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *Store) CreateCard(card *models.Card) error {
	return s.db.Create(card).Error
}

func (s *Store) UpdateCard(card *models.Card) error {
	return s.db.Save(card).Error
}

func (s *Store) DeleteCard(id string) error {
	return s.db.Delete(&models.Card{}, "id = ?", id).Error
}

// SaveValuation overwrites a card's valuation columns. The previous valuation
// is superseded, not merged.
func (s *Store) SaveValuation(cardID string, v models.Valuation) error {
	now := time.Now()
	res := s.db.Model(&models.Card{}).Where("id = ?", cardID).Updates(map[string]interface{}{
		"estimated_value":     v.EstimatedValue,
		"avg_30_day_price":    v.Avg30DayPrice,
		"num_sales_30_day":    v.NumSales30Day,
		"price_trend":         v.PriceTrend,
		"lowest_active_price": v.LowestActivePrice,
		"lowest_active_url":   v.LowestActiveURL,
		"valuation_tier":      v.Tier,
		"price_updated_at":    now,
	})
	if res.Error != nil {
		return fmt.Errorf("save valuation for card %s: %w", cardID, res.Error)
	}
	return nil
}

// PortfolioTotals sums cost basis and estimated value across owned cards.
// Cards with no estimate fall back to their cost basis, matching the summary
// shown on the dashboard.
func (s *Store) PortfolioTotals() (totalCost, totalValue float64, err error) {
	var cards []models.Card
	if err := s.db.Where("is_owned = ?", true).Find(&cards).Error; err != nil {
		return 0, 0, fmt.Errorf("portfolio totals: %w", err)
	}
	for _, c := range cards {
		cost := 0.0
		if c.CostBasis != nil {
			cost = *c.CostBasis
		}
		totalCost += cost
		if c.EstimatedValue != nil {
			totalValue += *c.EstimatedValue
		} else {
			totalValue += cost
		}
	}
	return totalCost, totalValue, nil
}

// AppendSnapshot records one portfolio snapshot row, upserting per calendar
// day so repeated refreshes on the same day update in place.
func (s *Store) AppendSnapshot(totalCost, totalValue float64) error {
	now := time.Now()
	snapshotDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	snapshot := models.PortfolioSnapshot{
		SnapshotDate:        snapshotDate,
		TotalCostBasis:      totalCost,
		TotalEstimatedValue: totalValue,
		CreatedAt:           now,
	}

	res := s.db.Where("DATE(snapshot_date) = DATE(?)", snapshotDate).
		Assign(models.PortfolioSnapshot{
			TotalCostBasis:      totalCost,
			TotalEstimatedValue: totalValue,
		}).
		FirstOrCreate(&snapshot)
	if res.Error != nil {
		return fmt.Errorf("append snapshot: %w", res.Error)
	}
	return nil
}

// SnapshotHistory retrieves snapshots for a given period, oldest first.
func (s *Store) SnapshotHistory(period string) ([]models.PortfolioSnapshot, error) {
	var snapshots []models.PortfolioSnapshot

	now := time.Now()
	var startDate time.Time

	switch period {
	case "week":
		startDate = now.AddDate(0, 0, -7)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	case "3month":
		startDate = now.AddDate(0, -3, 0)
	case "year":
		startDate = now.AddDate(-1, 0, 0)
	case "all":
		startDate = time.Time{}
	default:
		startDate = now.AddDate(0, -1, 0)
	}

	query := s.db.Order("snapshot_date ASC")
	if !startDate.IsZero() {
		query = query.Where("snapshot_date >= ?", startDate)
	}

	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}
