package services_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"agrimarket/internal/services"
)

const datagovBody = `{"records": [
  {"market": "Azadpur", "district": "Delhi", "state": "Delhi", "variety": "Local",
   "min_price": "1,200", "max_price": "1800", "modal_price": "1500", "arrival_date": "30/08/2026"},
  {"market": "Pimpalgaon", "min_price": "", "max_price": "abc", "modal_price": "1400"}
]}`

func priceServer(t *testing.T, hits *atomic.Int64, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.URL.Query().Get("filters[commodity]"); got == "" {
			t.Errorf("missing commodity filter in %s", r.URL.RawQuery)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		fmt.Fprint(w, datagovBody)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPriceService_FetchAndCache(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int64
	srv := priceServer(t, &hits, http.StatusOK)

	svc := services.NewPriceService(t.TempDir(), srv.URL, "test-key", time.Hour)

	entry, err := svc.Get(ctx, " Tomato ")
	if err != nil {
		t.Fatal(err)
	}
	if len(entry.Items) != 2 {
		t.Fatalf("want 2 rows, got %d", len(entry.Items))
	}
	first := entry.Items[0]
	if first.MinPrice == nil || *first.MinPrice != 1200 {
		t.Fatalf("comma-grouped price should parse, got %v", first.MinPrice)
	}
	second := entry.Items[1]
	if second.MinPrice != nil || second.MaxPrice != nil {
		t.Fatalf("blank and junk prices should be nil, got %v %v", second.MinPrice, second.MaxPrice)
	}

	// fresh entry: served from cache, no second request
	if _, err := svc.Get(ctx, "tomato"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("want 1 upstream hit, got %d", hits.Load())
	}

	// forced refresh always refetches
	if _, err := svc.Refresh(ctx, "tomato"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Fatalf("want 2 upstream hits, got %d", hits.Load())
	}
}

func TestPriceService_StaleFallbackOnFailure(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int64
	srv := priceServer(t, &hits, http.StatusOK)
	dir := t.TempDir()

	// MaxAge 0 forces a refresh attempt on every read
	svc := services.NewPriceService(dir, srv.URL, "test-key", 0)
	if _, err := svc.Get(ctx, "onion"); err != nil {
		t.Fatal(err)
	}

	// upstream starts failing; the cached rows must keep serving
	failing := priceServer(t, &hits, http.StatusBadGateway)
	svc.APIURL = failing.URL
	entry, err := svc.Get(ctx, "onion")
	if err != nil {
		t.Fatalf("stale rows should mask the failure, got %v", err)
	}
	if len(entry.Items) != 2 {
		t.Fatalf("want the previously cached rows, got %d", len(entry.Items))
	}

	// no cache at all: the failure surfaces
	if _, err := svc.Get(ctx, "banana"); err == nil {
		t.Fatal("uncached commodity with a failing upstream must error")
	}
}

func TestPriceService_CacheSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int64
	srv := priceServer(t, &hits, http.StatusOK)
	dir := t.TempDir()

	first := services.NewPriceService(dir, srv.URL, "test-key", time.Hour)
	if _, err := first.Get(ctx, "potato"); err != nil {
		t.Fatal(err)
	}

	second := services.NewPriceService(dir, srv.URL, "test-key", time.Hour)
	if _, err := second.Get(ctx, "potato"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("restart should reuse the on-disk cache, got %d hits", hits.Load())
	}
}
