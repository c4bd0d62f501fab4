package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/codyseavey/card-portfolio/internal/metrics"
	"github.com/codyseavey/card-portfolio/internal/models"
)

// Searcher is the marketplace search contract the rest of the pipeline
// depends on. A test double can substitute a fixed listing set.
type Searcher interface {
	Search(ctx context.Context, query string, kind models.QueryKind) ([]models.Listing, error)
}

// MarketplaceService issues listing searches against a marketplace search
// API and normalizes the results. It owns nothing beyond the network call:
// caching and valuation live elsewhere.
type MarketplaceService struct {
	client  *http.Client
	baseURL string
	apiKey  string

	// limiter paces all outbound searches process-wide. Parallel refresh
	// workers share this one budget, so pool size does not raise the
	// request rate.
	limiter *rate.Limiter

	maxAttempts int
}

// marketplaceResponse is the wire shape of the search endpoint.
type marketplaceResponse struct {
	Listings []marketplaceListing `json:"listings"`
	Error    string               `json:"error,omitempty"`
}

type marketplaceListing struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"`
	Platform string  `json:"platform"`
	URL      string  `json:"url"`
}

func NewMarketplaceService(baseURL, apiKey string, timeout, minInterval time.Duration, maxAttempts int) *MarketplaceService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if minInterval <= 0 {
		minInterval = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &MarketplaceService{
		client:      &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		limiter:     rate.NewLimiter(rate.Every(minInterval), 1),
		maxAttempts: maxAttempts,
	}
}

// Search runs one marketplace search for sold or active listings. Transient
// failures are retried with exponential backoff up to the attempt budget;
// blocked responses surface immediately.
func (s *MarketplaceService) Search(ctx context.Context, query string, kind models.QueryKind) ([]models.Listing, error) {
	start := time.Now()

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Kind: FetchTransient, Err: err}
		}

		listings, err := s.doSearch(ctx, query, kind)
		if err == nil {
			metrics.MarketplaceRequestsTotal.WithLabelValues(string(kind), "ok").Inc()
			metrics.MarketplaceRequestDuration.Observe(time.Since(start).Seconds())
			return listings, nil
		}

		if IsBlocked(err) {
			metrics.MarketplaceRequestsTotal.WithLabelValues(string(kind), "blocked").Inc()
			return nil, err
		}

		lastErr = err
		if attempt < s.maxAttempts {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, &FetchError{Kind: FetchTransient, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}
	}

	metrics.MarketplaceRequestsTotal.WithLabelValues(string(kind), "transient").Inc()
	return nil, lastErr
}

func (s *MarketplaceService) doSearch(ctx context.Context, query string, kind models.QueryKind) ([]models.Listing, error) {
	if s.baseURL == "" {
		return nil, &FetchError{Kind: FetchBlocked, Err: fmt.Errorf("no marketplace base URL configured")}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("kind", string(kind))

	reqURL := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransient, Err: err}
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &FetchError{Kind: FetchBlocked, Err: fmt.Errorf("marketplace returned status %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return nil, &FetchError{Kind: FetchTransient, Err: fmt.Errorf("marketplace returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &FetchError{Kind: FetchBlocked, Err: fmt.Errorf("marketplace returned status %d", resp.StatusCode)}
	}

	var body marketplaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// An unparseable body usually means an interstitial block page
		return nil, &FetchError{Kind: FetchBlocked, Err: fmt.Errorf("unparseable search response: %w", err)}
	}
	if body.Error != "" {
		return nil, &FetchError{Kind: FetchBlocked, Err: fmt.Errorf("marketplace error: %s", body.Error)}
	}

	listings := make([]models.Listing, 0, len(body.Listings))
	for _, l := range body.Listings {
		if l.Price <= 0 {
			continue
		}
		listings = append(listings, models.Listing{
			Title:    l.Title,
			Price:    l.Price,
			Date:     parseListingDate(l.Date),
			Platform: l.Platform,
			URL:      l.URL,
			Sold:     kind == models.QuerySold,
		})
	}
	return listings, nil
}

// parseListingDate accepts the date formats the marketplace emits. Listings
// with a missing or malformed date keep a zero time and fall outside every
// lookback window.
func parseListingDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
