package services

import (
	"fmt"
	"log"

	"github.com/codyseavey/card-portfolio/internal/metrics"
	"github.com/codyseavey/card-portfolio/internal/models"
)

// SnapshotStore is the slice of storage the snapshot recorder needs.
type SnapshotStore interface {
	PortfolioTotals() (totalCost, totalValue float64, err error)
	AppendSnapshot(totalCost, totalValue float64) error
	SnapshotHistory(period string) ([]models.PortfolioSnapshot, error)
}

// SnapshotService appends one aggregate portfolio snapshot per completed
// price refresh, feeding the historical value chart.
type SnapshotService struct {
	store SnapshotStore
}

func NewSnapshotService(store SnapshotStore) *SnapshotService {
	return &SnapshotService{store: store}
}

// Record aggregates the persisted cost basis and estimated value across
// owned cards and appends a snapshot row.
func (s *SnapshotService) Record() error {
	totalCost, totalValue, err := s.store.PortfolioTotals()
	if err != nil {
		return fmt.Errorf("snapshot totals: %w", err)
	}
	if err := s.store.AppendSnapshot(totalCost, totalValue); err != nil {
		return err
	}

	metrics.PortfolioCostBasisUSD.Set(totalCost)
	metrics.PortfolioValueUSD.Set(totalValue)

	log.Printf("Snapshot service: recorded portfolio snapshot (cost: $%.2f, value: $%.2f)",
		totalCost, totalValue)
	return nil
}

// History returns snapshots for the requested period, oldest first.
func (s *SnapshotService) History(period string) ([]models.PortfolioSnapshot, error) {
	return s.store.SnapshotHistory(period)
}
