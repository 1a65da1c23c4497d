package stats_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/stats"
)

func TestClient_SaveHit(t *testing.T) {
	var got stats.EndpointHit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/hit" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	at := time.Date(2026, 4, 5, 6, 7, 8, 0, time.Local)
	hit := stats.EndpointHit{App: "ewm-main-service", URI: "/events/1", IP: "10.0.0.1", Timestamp: model.NewDateTime(at)}
	if err := stats.NewClient(srv.URL+"/", time.Second).SaveHit(context.Background(), hit); err != nil {
		t.Fatalf("SaveHit() error = %v", err)
	}
	if got.URI != hit.URI || got.IP != hit.IP || !got.Timestamp.Equal(at) {
		t.Errorf("server received %+v", got)
	}
}

func TestClient_SaveHit_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := stats.NewClient(srv.URL, time.Second).SaveHit(context.Background(), stats.EndpointHit{URI: "/events"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestClient_GetViews_Chunks(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		uris := q["uris"]
		if len(uris) > stats.MaxURIsPerCall {
			t.Errorf("call carried %d uris", len(uris))
		}
		if q.Get("unique") != "true" {
			t.Errorf("unique = %q", q.Get("unique"))
		}
		if q.Get("start") != "2026-01-01 00:00:00" || q.Get("end") != "2026-02-01 00:00:00" {
			t.Errorf("window = %s .. %s", q.Get("start"), q.Get("end"))
		}
		mu.Lock()
		calls++
		mu.Unlock()

		out := make([]stats.ViewStats, 0, len(uris))
		for _, u := range uris {
			out = append(out, stats.ViewStats{App: "ewm-main-service", URI: u, Hits: 1})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	uris := make([]string, 120)
	for i := range uris {
		uris[i] = fmt.Sprintf("/events/%d", i)
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local)

	got, err := stats.NewClient(srv.URL, time.Second).GetViews(context.Background(), uris, start, end, true)
	if err != nil {
		t.Fatalf("GetViews() error = %v", err)
	}
	mu.Lock()
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	mu.Unlock()
	views := stats.ViewsByURI(got, "ewm-main-service")
	if len(views) != len(uris) {
		t.Errorf("got views for %d uris, want %d", len(views), len(uris))
	}
	for _, u := range uris {
		if views[u] != 1 {
			t.Errorf("views[%s] = %d, want 1", u, views[u])
		}
	}
}

func TestClient_GetViews_Empty(t *testing.T) {
	got, err := stats.NewClient("http://127.0.0.1:1", time.Second).GetViews(context.Background(), nil, time.Now(), time.Now(), false)
	if err != nil || len(got) != 0 {
		t.Errorf("GetViews(nil) = %v, %v", got, err)
	}
}

func TestClient_GetViews_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := stats.NewClient(srv.URL, time.Second).GetViews(context.Background(), []string{"/events/1"}, time.Now(), time.Now(), true)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
}
