package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codyseavey/card-portfolio/internal/metrics"
	"github.com/codyseavey/card-portfolio/internal/models"
)

const (
	// defaultRefreshConcurrency bounds in-flight card lookups. The shared
	// marketplace pacing gate, not this pool size, is the true throughput
	// bound.
	defaultRefreshConcurrency = 3

	// rareCompCutoff is the population ceiling at or below which sibling
	// comp data is gathered. Commodity parallels have enough of their own
	// sales to never need it.
	rareCompCutoff = 25
)

// CardStore is the storage collaborator contract the refresh worker depends
// on.
type CardStore interface {
	ListCards() ([]models.Card, error)
	GetCard(id string) (*models.Card, error)
	SaveValuation(cardID string, v models.Valuation) error
}

// RefreshWorker owns the single-flight background job that revalues every
// tracked card. Exactly one run is in flight at any time; status reads are
// non-blocking copies of the shared job state.
type RefreshWorker struct {
	baseCtx     context.Context
	store       CardStore
	cache       *ListingCache
	market      Searcher
	comp        *CompEngine
	snapshots   *SnapshotService
	cohort      []string
	concurrency int

	mu       sync.Mutex
	job      models.RefreshJob
	progress atomic.Int64
}

// NewRefreshWorker wires the pipeline together. baseCtx outlives any single
// HTTP request: a triggered run proceeds to completion or failure regardless
// of what happens to the request that started it.
func NewRefreshWorker(baseCtx context.Context, store CardStore, cache *ListingCache, market Searcher, comp *CompEngine, snapshots *SnapshotService, cohort []string, concurrency int) *RefreshWorker {
	if concurrency <= 0 {
		concurrency = defaultRefreshConcurrency
	}
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &RefreshWorker{
		baseCtx:     baseCtx,
		store:       store,
		cache:       cache,
		market:      market,
		comp:        comp,
		snapshots:   snapshots,
		cohort:      cohort,
		concurrency: concurrency,
		job:         models.RefreshJob{State: models.RefreshIdle},
	}
}

// TriggerRefresh starts a background refresh run. It returns
// ErrRefreshRunning without side effects while a run is in progress; a
// completed or failed job re-arms and accepts the next trigger.
func (w *RefreshWorker) TriggerRefresh() error {
	w.mu.Lock()
	if w.job.State == models.RefreshRunning {
		w.mu.Unlock()
		metrics.RefreshRejectedTotal.Inc()
		return ErrRefreshRunning
	}
	now := time.Now()
	w.job = models.RefreshJob{State: models.RefreshRunning, StartedAt: &now}
	w.progress.Store(0)
	w.mu.Unlock()

	go w.run(w.baseCtx)
	return nil
}

// Status returns a race-free copy of the current job state.
func (w *RefreshWorker) Status() models.RefreshJob {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.job
}

// run drives one full refresh cycle. Per-card failures are absorbed as
// "no data" valuations; only run-level storage failures end the run early.
func (w *RefreshWorker) run(ctx context.Context) {
	start := time.Now()

	cards, err := w.store.ListCards()
	if err != nil {
		w.fail(fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
		return
	}

	w.mu.Lock()
	w.job.Total = len(cards)
	w.mu.Unlock()

	log.Printf("Refresh worker: starting run for %d cards", len(cards))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var fatalOnce sync.Once
	var fatalErr error

	jobs := make(chan models.Card)
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for card := range jobs {
				if runCtx.Err() != nil {
					continue // drain remaining cards after a fatal error
				}

				v := w.valueCard(runCtx, &card, cards)

				if err := w.store.SaveValuation(card.ID, v); err != nil {
					fatalOnce.Do(func() {
						fatalErr = fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
						cancel()
					})
					continue
				}

				if v.EstimatedValue != nil {
					metrics.RefreshCardsTotal.WithLabelValues("valued").Inc()
				} else {
					metrics.RefreshCardsTotal.WithLabelValues("no_data").Inc()
				}

				// Workers can reach this publish out of increment order, so
				// only ever move the published count forward
				n := int(w.progress.Add(1))
				w.mu.Lock()
				if n > w.job.Progress {
					w.job.Progress = n
					w.job.CurrentCard = card.Label()
				}
				w.mu.Unlock()
			}
		}()
	}

	for _, card := range cards {
		jobs <- card
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		w.fail(fatalErr)
		return
	}

	if err := w.snapshots.Record(); err != nil {
		w.fail(fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
		return
	}

	now := time.Now()
	w.mu.Lock()
	w.job.State = models.RefreshCompleted
	w.job.CurrentCard = ""
	w.job.FinishedAt = &now
	w.mu.Unlock()

	metrics.RefreshRunsTotal.WithLabelValues("completed").Inc()
	metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	log.Printf("Refresh worker: run completed in %s (%d cards)", time.Since(start).Round(time.Second), len(cards))
}

func (w *RefreshWorker) fail(err error) {
	now := time.Now()
	w.mu.Lock()
	w.job.State = models.RefreshFailed
	w.job.CurrentCard = ""
	w.job.FinishedAt = &now
	w.job.LastError = err.Error()
	w.mu.Unlock()

	metrics.RefreshRunsTotal.WithLabelValues("failed").Inc()
	log.Printf("Refresh worker: run failed: %v", err)
}

// RefreshCard runs the fetch and comp pipeline for a single card
// synchronously. It shares the cache and the marketplace pacing budget with
// the background run but does not take the run lock.
func (w *RefreshWorker) RefreshCard(ctx context.Context, id string) (*models.Valuation, error) {
	card, err := w.store.GetCard(id)
	if err != nil {
		return nil, err
	}

	cards, err := w.store.ListCards()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	v := w.valueCard(ctx, card, cards)
	if err := w.store.SaveValuation(card.ID, v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &v, nil
}

// valueCard gathers listing data for one card and runs the comp engine.
// Fetch failures never escape: a card whose queries all fail gets a Tier 4
// valuation and the run moves on.
func (w *RefreshWorker) valueCard(ctx context.Context, card *models.Card, all []models.Card) models.Valuation {
	query := BuildSearchQuery(card)

	sold, err := w.fetchListings(ctx, "card:"+card.ID, query, models.QuerySold)
	if err != nil {
		log.Printf("Refresh worker: sold lookup failed for %s: %v", card.Label(), err)
	}

	active, err := w.fetchListings(ctx, "card:"+card.ID, query, models.QueryActive)
	if err != nil {
		log.Printf("Refresh worker: active lookup failed for %s: %v", card.Label(), err)
	}

	siblings := w.fetchSiblings(ctx, card, all)

	return w.comp.Value(card, sold, siblings, active)
}

// fetchListings routes one query through the cache and the shared-pace
// marketplace adapter.
func (w *RefreshWorker) fetchListings(ctx context.Context, scope, query string, kind models.QueryKind) ([]models.Listing, error) {
	fp := NewFingerprint(scope, kind, time.Now())
	return w.cache.GetOrFetch(ctx, fp, func(ctx context.Context) ([]models.Listing, error) {
		return w.market.Search(ctx, query, kind)
	})
}

// fetchSiblings gathers comparable-sales data for rare cards: sold history
// of the same player's tracked cards at nearby print runs, plus marketplace
// searches for the cohort players' copies of the same parallel.
func (w *RefreshWorker) fetchSiblings(ctx context.Context, card *models.Card, all []models.Card) []SiblingHistory {
	if card.Population == nil || *card.Population > rareCompCutoff {
		return nil
	}

	var siblings []SiblingHistory

	for i := range all {
		other := &all[i]
		if other.ID == card.ID || other.PlayerName != card.PlayerName || other.Population == nil {
			continue
		}
		diff := *other.Population - *card.Population
		if diff < -populationBand || diff > populationBand {
			continue
		}
		sales, err := w.fetchListings(ctx, "card:"+other.ID, BuildSearchQuery(other), models.QuerySold)
		if err != nil {
			continue
		}
		siblings = append(siblings, SiblingHistory{
			PlayerName: other.PlayerName,
			Population: other.Population,
			Sales:      sales,
		})
	}

	for _, player := range w.cohort {
		if strings.EqualFold(player, card.PlayerName) {
			continue
		}
		query := CohortQuery(card, player)
		sales, err := w.fetchListings(ctx, "q:"+query, query, models.QuerySold)
		if err != nil {
			continue
		}
		siblings = append(siblings, SiblingHistory{
			PlayerName: player,
			SameCohort: true,
			Sales:      sales,
		})
	}

	return siblings
}
