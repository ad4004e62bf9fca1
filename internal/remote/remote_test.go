package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

func dataset() *model.Dataset {
	return &model.Dataset{Accounts: []model.Account{{
		Name:         "Main",
		TotalDeposit: decimal.NewFromInt(5000),
		Monthly:      []model.MonthEntry{{Month: "2025-01", Profit: decimal.NewFromInt(250)}},
	}}}
}

// saveServer answers every POST with status and body, recording the
// decoded dataset and the number of hits.
func saveServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, *model.Dataset) {
	t.Helper()
	var hits atomic.Int32
	got := &model.Dataset{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(got)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, got
}

func TestSaver_PrimarySucceeds(t *testing.T) {
	primary, primaryHits, got := saveServer(t, http.StatusOK, `{"success":true}`)
	fallback, fallbackHits, _ := saveServer(t, http.StatusOK, `{"success":true}`)

	res := NewSaver(nil, primary.URL, fallback.URL).Save(context.Background(), dataset())
	if !res.Saved || res.Target != primary.URL {
		t.Fatalf("expected save to primary, got %+v", res)
	}
	if primaryHits.Load() != 1 || fallbackHits.Load() != 0 {
		t.Errorf("expected 1/0 hits, got %d/%d", primaryHits.Load(), fallbackHits.Load())
	}
	if len(got.Accounts) != 1 || !got.Accounts[0].TotalDeposit.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("primary received unexpected document %+v", got)
	}
}

func TestSaver_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"success":false,"error":"disk full"}`},
		{"success false", http.StatusOK, `{"success":false}`},
		{"not json", http.StatusOK, `<html>ok</html>`},
		{"missing flag", http.StatusOK, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary, primaryHits, _ := saveServer(t, tt.status, tt.body)
			fallback, fallbackHits, _ := saveServer(t, http.StatusOK, `{"success":true}`)

			res := NewSaver(nil, primary.URL, fallback.URL).Save(context.Background(), dataset())
			if !res.Saved || res.Target != fallback.URL {
				t.Fatalf("expected save to fallback, got %+v", res)
			}
			if primaryHits.Load() != 1 || fallbackHits.Load() != 1 {
				t.Errorf("expected one attempt per target, got %d/%d", primaryHits.Load(), fallbackHits.Load())
			}
		})
	}
}

func TestSaver_BothFail(t *testing.T) {
	primary, _, _ := saveServer(t, http.StatusServiceUnavailable, "down")
	fallback, _, _ := saveServer(t, http.StatusOK, `{"success":false,"error":"read-only"}`)

	res := NewSaver(nil, primary.URL, fallback.URL).Save(context.Background(), dataset())
	if res.Saved || res.Target != "" {
		t.Fatalf("expected failure, got %+v", res)
	}
	if !strings.Contains(res.Reason, "HTTP 503") || !strings.Contains(res.Reason, "read-only") {
		t.Errorf("reason should mention both failures: %q", res.Reason)
	}
}

func TestSaver_NoTargets(t *testing.T) {
	res := NewSaver(nil, "", "").Save(context.Background(), dataset())
	if res.Saved || res.Reason == "" {
		t.Errorf("expected unsaved result with reason, got %+v", res)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("expected no-cache, got %q", r.Header.Get("Cache-Control"))
		}
		w.Write([]byte(`{"accounts":[{"name":"A","totalDeposit":1000,"monthly":[{"month":"2025-01","profit":null}]}]}`))
	}))
	defer srv.Close()

	ds, err := Fetch(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(ds.Accounts) != 1 || !ds.Accounts[0].Monthly[0].Profit.IsZero() {
		t.Errorf("unexpected dataset %+v", ds)
	}
}

func TestFetch_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), nil, srv.URL); err == nil {
		t.Error("expected error for 404")
	}
}
