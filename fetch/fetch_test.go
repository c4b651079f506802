package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rotblauer/orthod/params"
)

func testSourceConfig(serverURL string) *params.TileSourceConfig {
	cfg := params.DefaultTileSourceConfig()
	cfg.URLTemplate = serverURL + "/tiles/h{q}.jpeg"
	cfg.Subdomains = nil
	return cfg
}

func TestHTTPSource_Fetch(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if strings.Contains(r.URL.Path, "h0213") {
			w.Write([]byte("tile-0213"))
			return
		}
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	source := NewHTTPSource(testSourceConfig(server.URL), params.DefaultFetchConfig())
	b, err := source.Fetch(context.Background(), "0213")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "tile-0213" {
		t.Fatalf("unexpected body: %s", b)
	}
	if gotUA == "" || !strings.HasPrefix(gotUA, "orthod/") {
		t.Fatalf("unexpected user agent: %q", gotUA)
	}

	if _, err := source.Fetch(context.Background(), "3333"); err == nil {
		t.Fatal("want error for non-200 status")
	}
}

func TestHTTPSource_SubdomainRotation(t *testing.T) {
	cfg := params.DefaultTileSourceConfig()
	cfg.URLTemplate = "http://{s}.example.com/tiles/h{q}.jpeg"
	cfg.Subdomains = []string{"h0", "h1"}
	source := NewHTTPSource(cfg, params.DefaultFetchConfig())

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		u := source.URL("0213")
		if !strings.Contains(u, "h0213.jpeg") {
			t.Fatalf("quadkey not substituted: %s", u)
		}
		host := strings.TrimPrefix(u, "http://")
		seen[host[:2]] = true
	}
	if !seen["h0"] || !seen["h1"] {
		t.Fatalf("subdomains not rotated: %v", seen)
	}
}

func TestHTTPSource_NullOnce(t *testing.T) {
	var nullHits atomic.Int32
	nullKey := strings.Repeat("1", 21)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, nullKey) {
			nullHits.Add(1)
		}
		w.Write([]byte("placeholder"))
	}))
	defer server.Close()

	source := NewHTTPSource(testSourceConfig(server.URL), params.DefaultFetchConfig())

	wait := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			b, err := source.Null(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			if string(b) != "placeholder" {
				t.Errorf("unexpected null tile: %s", b)
			}
		}()
	}
	wait.Wait()

	// Once more, after the flight has landed.
	if _, err := source.Null(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := nullHits.Load(); n != 1 {
		t.Fatalf("null tile fetched %d times, want 1", n)
	}
}

func TestHTTPSource_NullError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(testSourceConfig(server.URL), params.DefaultFetchConfig())
	_, err := source.Null(context.Background())
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "null tile") {
		t.Fatalf("unexpected error: %v", err)
	}
	// The failure is not sticky; a later call tries again.
	if _, err := source.Null(context.Background()); err == nil {
		t.Fatal("want error again")
	}
}
