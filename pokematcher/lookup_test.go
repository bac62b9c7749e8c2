package pokematcher

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestResolver(link string) *Resolver {
	r := NewResolver()
	r.SearchURL = link
	r.Backoff = func(attempt int) time.Duration {
		return 0
	}
	r.Limiter = rate.NewLimiter(rate.Inf, 1)
	return r
}

const noResultsPage = `<html><body><p>Nothing matched your search.</p></body></html>`

func TestResolveAttributes(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, `<html><body><div class="entry">`+
			`<a data-set="PAR" data-number="123" href="/card/par-123">Boss's Orders</a>`+
			`</div></body></html>`)
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	res := r.Resolve("Boss's Orders")
	if res == nil {
		t.Fatalf("FAIL: expected a result")
	}
	if res.SetCode != "PAR" || res.Number != "123" {
		t.Errorf("FAIL: Expected 'PAR 123' got '%s %s'", res.SetCode, res.Number)
	}
	if requests != 1 {
		t.Errorf("FAIL: expected a single request, got %d", requests)
	}
}

func TestResolveCaption(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Results</h1>`+
			`<p>Porygon · MEW 137/165 · Common</p></body></html>`)
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	res := r.Resolve("Porygon")
	if res == nil {
		t.Fatalf("FAIL: expected a result")
	}
	if res.SetCode != "MEW" || res.Number != "137" {
		t.Errorf("FAIL: Expected 'MEW 137' got '%s %s'", res.SetCode, res.Number)
	}
}

// Print information hidden in an attribute near the card name is only
// reachable through the proximity window.
func TestResolveProximity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Jacq</p>`+
			`<img alt="Jacq full art" data-title="SVI 175"></body></html>`)
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	res := r.Resolve("Jacq")
	if res == nil {
		t.Fatalf("FAIL: expected a result")
	}
	if res.SetCode != "SVI" || res.Number != "175" {
		t.Errorf("FAIL: Expected 'SVI 175' got '%s %s'", res.SetCode, res.Number)
	}
}

func TestResolveCacheMonotonic(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, `<html><body><a data-set="OBF" data-number="125">Charizard ex</a></body></html>`)
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	first := r.Resolve("Charizard ex")
	if first == nil {
		t.Fatalf("FAIL: expected a result")
	}
	count := atomic.LoadInt32(&requests)

	second := r.Resolve("Charizard ex")
	if second == nil || *second != *first {
		t.Errorf("FAIL: cached outcome differs, '%v' vs '%v'", second, first)
	}
	if atomic.LoadInt32(&requests) != count {
		t.Errorf("FAIL: a cached lookup hit the network")
	}
}

// A miss is a first class outcome: it exhausts retries plus the broad
// query once, then the negative result short-circuits forever.
func TestResolveNotFoundCached(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, noResultsPage)
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	res := r.Resolve("Zubat")
	if res != nil {
		t.Fatalf("FAIL: expected no result, got '%v'", res)
	}

	// retries with the primary query, then the broad one
	expected := int32(defaultRetries + 1)
	if requests != expected {
		t.Errorf("FAIL: expected %d requests, got %d", expected, requests)
	}

	res = r.Resolve("Zubat")
	if res != nil {
		t.Errorf("FAIL: expected the cached miss, got '%v'", res)
	}
	if requests != expected {
		t.Errorf("FAIL: a cached miss hit the network, %d requests", requests)
	}
}

// Empty responses count as transport failures: backoff between
// attempts, then a not-found outcome instead of an error.
func TestResolveTransportFailure(t *testing.T) {
	var backoffs int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	r.Backoff = func(attempt int) time.Duration {
		atomic.AddInt32(&backoffs, 1)
		return 0
	}

	res := r.Resolve("Gimmighoul")
	if res != nil {
		t.Fatalf("FAIL: expected no result, got '%v'", res)
	}
	if backoffs != defaultRetries {
		t.Errorf("FAIL: expected %d backoffs, got %d", defaultRetries, backoffs)
	}
}

// Once the primary query is exhausted, the possessive-stripped name is
// tried before giving up.
func TestResolvePossessiveEscalation(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("s")
		queries = append(queries, query)
		if strings.Contains(query, "Team Rocket") {
			fmt.Fprint(w, noResultsPage)
			return
		}
		fmt.Fprint(w, `<html><body><a data-set="MEW" data-number="137">Porygon</a></body></html>`)
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	res := r.Resolve("Team Rocket’s Porygon")
	if res == nil {
		t.Fatalf("FAIL: expected a result from the secondary query")
	}
	if res.SetCode != "MEW" || res.Number != "137" {
		t.Errorf("FAIL: Expected 'MEW 137' got '%s %s'", res.SetCode, res.Number)
	}

	if len(queries) != defaultRetries+1 {
		t.Fatalf("FAIL: expected %d queries, got %d", defaultRetries+1, len(queries))
	}
	last := queries[len(queries)-1]
	if last != `"Porygon"` {
		t.Errorf("FAIL: Expected '\"Porygon\"' got '%s'", last)
	}
}

// The legacy promo code is rewritten before the result is cached or
// returned.
func TestResolveLegacySetCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a data-set="PR-SV" data-number="45">Pikachu</a></body></html>`)
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	res := r.Resolve("Pikachu")
	if res == nil {
		t.Fatalf("FAIL: expected a result")
	}
	if res.SetCode != "SVP" {
		t.Errorf("FAIL: Expected 'SVP' got '%s'", res.SetCode)
	}

	cached := r.Resolve("Pikachu")
	if cached.SetCode != "SVP" {
		t.Errorf("FAIL: cached entry kept the legacy code '%s'", cached.SetCode)
	}
}

// Degenerate names never reach the network.
func TestResolveEmptyName(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, noResultsPage)
	}))
	defer ts.Close()

	r := newTestResolver(ts.URL)
	if res := r.Resolve("   "); res != nil {
		t.Errorf("FAIL: expected no result, got '%v'", res)
	}
	if requests != 0 {
		t.Errorf("FAIL: expected no requests, got %d", requests)
	}
}
