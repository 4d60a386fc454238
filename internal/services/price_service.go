package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PriceRow is one market quote for a commodity.
type PriceRow struct {
	Market      string   `json:"market"`
	District    string   `json:"district,omitempty"`
	State       string   `json:"state,omitempty"`
	Variety     string   `json:"variety,omitempty"`
	MinPrice    *float64 `json:"min_price"`
	MaxPrice    *float64 `json:"max_price"`
	ModalPrice  *float64 `json:"modal_price"`
	ArrivalDate string   `json:"arrival_date,omitempty"`
}

type PriceEntry struct {
	FetchedAt time.Time  `json:"fetched_at"`
	Items     []PriceRow `json:"items"`
}

type priceCache struct {
	LastUpdated time.Time             `json:"last_updated"`
	Commodities map[string]PriceEntry `json:"commodities"`
}

// PriceService keeps a per-commodity price table cached in its own document,
// disjoint from the listing store. Reads serve from cache; entries older
// than maxAge are refreshed from the upstream market-data API, and a fetch
// failure keeps the last known rows.
type PriceService struct {
	APIURL string
	APIKey string
	Client *http.Client
	MaxAge time.Duration
	Now    func() time.Time

	path string
	mu   sync.Mutex
}

func NewPriceService(dataDir, apiURL, apiKey string, maxAge time.Duration) *PriceService {
	return &PriceService{
		APIURL: apiURL,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 10 * time.Second},
		MaxAge: maxAge,
		Now:    time.Now,
		path:   filepath.Join(dataDir, "price_cache.json"),
	}
}

func (s *PriceService) loadCache() priceCache {
	cache := priceCache{Commodities: map[string]PriceEntry{}}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(b, &cache); err != nil {
		log.Printf("[price] unreadable cache, starting empty: %v", err)
		return priceCache{Commodities: map[string]PriceEntry{}}
	}
	if cache.Commodities == nil {
		cache.Commodities = map[string]PriceEntry{}
	}
	return cache
}

func (s *PriceService) saveCache(cache priceCache) {
	b, err := json.MarshalIndent(cache, "", "  ")
	if err == nil {
		err = os.WriteFile(s.path, b, 0o644)
	}
	if err != nil {
		log.Printf("[price] cache write failed: %v", err)
	}
}

func normCommodity(c string) string { return strings.ToLower(strings.TrimSpace(c)) }

// Get returns the cached entry for a commodity, refreshing first when the
// entry is missing or stale.
func (s *PriceService) Get(ctx context.Context, commodity string) (PriceEntry, error) {
	key := normCommodity(commodity)
	if key == "" {
		return PriceEntry{}, fmt.Errorf("commodity required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cache := s.loadCache()
	entry, ok := cache.Commodities[key]
	if ok && s.Now().Sub(entry.FetchedAt) < s.MaxAge {
		return entry, nil
	}
	return s.refreshLocked(ctx, cache, key)
}

// Refresh forces a fetch for one commodity regardless of entry age.
func (s *PriceService) Refresh(ctx context.Context, commodity string) (PriceEntry, error) {
	key := normCommodity(commodity)
	if key == "" {
		return PriceEntry{}, fmt.Errorf("commodity required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx, s.loadCache(), key)
}

func (s *PriceService) refreshLocked(ctx context.Context, cache priceCache, key string) (PriceEntry, error) {
	rows, err := s.fetch(ctx, key)
	if err != nil {
		log.Printf("[price] fetch %q failed: %v", key, err)
		if stale, ok := cache.Commodities[key]; ok {
			return stale, nil // degrade to last known rows
		}
		return PriceEntry{}, err
	}
	entry := PriceEntry{FetchedAt: s.Now().UTC(), Items: rows}
	cache.Commodities[key] = entry
	cache.LastUpdated = entry.FetchedAt
	s.saveCache(cache)
	return entry, nil
}

// RunDailyRefresh re-fetches every tracked commodity on the given interval
// until ctx is cancelled. It touches only the price cache document.
func (s *PriceService) RunDailyRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s.refreshAll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

var defaultCommodities = []string{"tomato", "banana", "onion", "potato"}

func (s *PriceService) refreshAll(ctx context.Context) {
	s.mu.Lock()
	cache := s.loadCache()
	keys := make([]string, 0, len(cache.Commodities))
	for k := range cache.Commodities {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	if len(keys) == 0 {
		keys = defaultCommodities
	}
	for _, k := range keys {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.Refresh(ctx, k); err != nil {
			log.Printf("[price] scheduled refresh %q: %v", k, err)
		}
	}
}

// datagovResponse matches the data.gov.in mandi-price resource shape.
type datagovResponse struct {
	Records []struct {
		Market      string `json:"market"`
		District    string `json:"district"`
		State       string `json:"state"`
		Variety     string `json:"variety"`
		MinPrice    string `json:"min_price"`
		MaxPrice    string `json:"max_price"`
		ModalPrice  string `json:"modal_price"`
		ArrivalDate string `json:"arrival_date"`
	} `json:"records"`
}

func (s *PriceService) fetch(ctx context.Context, commodity string) ([]PriceRow, error) {
	if s.APIURL == "" {
		return nil, fmt.Errorf("no price API configured")
	}
	q := url.Values{}
	q.Set("api-key", s.APIKey)
	q.Set("format", "json")
	q.Set("limit", "40")
	q.Set("filters[commodity]", commodity)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.APIURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API status %d", resp.StatusCode)
	}

	var body datagovResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	parsePrice := func(raw string) *float64 {
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return &f
	}

	rows := make([]PriceRow, 0, len(body.Records))
	for _, r := range body.Records {
		rows = append(rows, PriceRow{
			Market:      r.Market,
			District:    r.District,
			State:       r.State,
			Variety:     r.Variety,
			MinPrice:    parsePrice(r.MinPrice),
			MaxPrice:    parsePrice(r.MaxPrice),
			ModalPrice:  parsePrice(r.ModalPrice),
			ArrivalDate: r.ArrivalDate,
		})
	}
	return rows, nil
}
