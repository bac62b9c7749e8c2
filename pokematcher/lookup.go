package pokematcher

import (
	"context"
	"errors"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	defaultSearchURL  = "https://pkmncards.com/"
	defaultRetries    = 3
	defaultBackoff    = 2 * time.Second
	defaultQueryDelay = 1 * time.Second

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Promo prints are indexed under the legacy code on some pages and
	// under the modern one everywhere else, so the legacy one is always
	// rewritten before a result leaves the resolver.
	legacySetCode    = "PR-SV"
	canonicalSetCode = "SVP"

	// How far around the name occurrence the proximity strategy looks
	proximityWindow = 400
)

var errEmptyResponse = errors.New("empty response body")

// LookupResult is the print identifier recovered by a remote lookup.
// Number stays a string, leading zeros and letter suffixes matter.
type LookupResult struct {
	SetCode string
	Number  string
}

// BackoffFunc returns how long to wait after a failed attempt.
type BackoffFunc func(attempt int) time.Duration

// Resolver performs best effort set/number resolution against the
// remote search index, for Pokemon entries whose source page carried no
// structured print information. Every terminal outcome, found or not,
// is memoized by raw query name for the lifetime of the resolver, so a
// scraping session never queries the same name twice.
type Resolver struct {
	SearchURL string
	UserAgent string

	// Bounded attempts for the primary query
	Retries int

	// Wait policy between failed attempts, injectable so tests do not
	// sleep for real
	Backoff BackoffFunc

	// Politeness delay between successive remote queries
	Limiter *rate.Limiter

	client *http.Client
	cache  map[string]*LookupResult
	logger *log.Logger
}

// NewResolver sets up a resolver with the default remote endpoint,
// retry bound, and politeness delay.
func NewResolver() *Resolver {
	client := retryablehttp.NewClient()
	client.Logger = nil
	return &Resolver{
		SearchURL: defaultSearchURL,
		UserAgent: defaultUserAgent,
		Retries:   defaultRetries,
		Backoff: func(attempt int) time.Duration {
			return defaultBackoff
		},
		Limiter: rate.NewLimiter(rate.Every(defaultQueryDelay), 1),
		client:  client.StandardClient(),
		cache:   map[string]*LookupResult{},
		logger:  log.New(io.Discard, "", log.LstdFlags),
	}
}

// SetLogger redirects the resolver logs to a custom logger.
func (r *Resolver) SetLogger(userLogger *log.Logger) {
	r.logger = userLogger
}

// Resolve looks up the set code and number for a raw card name, or nil
// when the name cannot be resolved. It never returns an error: network
// failures and unparseable responses both degrade to nil, since the
// caller keeps the bare card either way. Outcomes are cached by the raw
// name, a repeated call is O(1) and performs no network traffic.
func (r *Resolver) Resolve(rawName string) *LookupResult {
	if r.cache == nil {
		r.cache = map[string]*LookupResult{}
	}
	res, found := r.cache[rawName]
	if found {
		return res
	}

	res = r.lookup(rawName)
	if res != nil && res.SetCode == legacySetCode {
		res.SetCode = canonicalSetCode
	}
	r.cache[rawName] = res
	return res
}

func (r *Resolver) lookup(rawName string) *LookupResult {
	// Keep the display casing, but clean up entities, apostrophe
	// lookalikes, and spacing before building queries
	name := html.UnescapeString(rawName)
	name = replacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil
	}

	// Cards like "Team Rocket's Porygon" may be indexed without the
	// possessive prefix, prepare a fallback query for that spelling
	secondary := ""
	idx := strings.Index(name, "'s ")
	if idx >= 0 {
		secondary = strings.TrimSpace(name[idx+len("'s "):])
	}

	for attempt := 0; attempt < r.Retries; attempt++ {
		body, err := r.search(name, true)
		if err != nil {
			r.logger.Println("attempt", attempt+1, "for", name, "failed:", err)
			time.Sleep(r.Backoff(attempt))
			continue
		}
		res := extract(body, name)
		if res != nil {
			return res
		}
	}

	if secondary != "" {
		r.logger.Println("escalating", name, "to possessive-stripped query", secondary)
		body, err := r.search(secondary, true)
		if err == nil {
			res := extract(body, secondary)
			if res != nil {
				return res
			}
		}
	}

	// Last resort, drop the exact phrase quoting and let the remote
	// index fuzzy match
	body, err := r.search(name, false)
	if err == nil {
		res := extract(body, name)
		if res != nil {
			return res
		}
	}

	r.logger.Println("no result for", name)
	return nil
}

func (r *Resolver) search(query string, exact bool) (string, error) {
	link, err := url.Parse(r.SearchURL)
	if err != nil {
		return "", err
	}
	if exact {
		query = `"` + query + `"`
	}
	v := url.Values{}
	v.Set("s", query)
	link.RawQuery = v.Encode()

	req, err := http.NewRequest(http.MethodGet, link.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", r.UserAgent)

	if r.Limiter != nil {
		r.Limiter.Wait(context.Background())
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", errEmptyResponse
	}
	return string(body), nil
}

// Short caption formats seen on result pages, like "PAR 123",
// "PR-SV · 45", or "OBF #125a"
var setNumberRE = regexp.MustCompile(`\b([A-Z]{2,4}(?:-[A-Z]{1,2})?)[ ·]{1,3}#?(\d{1,3}[a-zA-Z]?)\b`)

// extract runs the three strategies in their fixed priority order:
// structured attributes on the first matching result element, then the
// caption text pattern, then both again inside a bounded window around
// the first occurrence of the name. Cheap and precise before expensive
// and fuzzy.
func extract(body, name string) *LookupResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		res := extractAttributes(doc.Selection)
		if res != nil {
			return res
		}
		res = extractCaption(doc.Text())
		if res != nil {
			return res
		}
	}

	idx := strings.Index(strings.ToLower(body), strings.ToLower(name))
	if idx < 0 {
		return nil
	}
	start := max(idx-proximityWindow, 0)
	end := min(idx+len(name)+proximityWindow, len(body))
	window := body[start:end]

	windowDoc, err := goquery.NewDocumentFromReader(strings.NewReader(window))
	if err == nil {
		res := extractAttributes(windowDoc.Selection)
		if res != nil {
			return res
		}
	}
	return extractCaption(window)
}

func extractAttributes(sel *goquery.Selection) *LookupResult {
	node := sel.Find("[data-set][data-number]").First()
	setCode, _ := node.Attr("data-set")
	number, _ := node.Attr("data-number")
	if setCode == "" || number == "" {
		return nil
	}
	return &LookupResult{
		SetCode: setCode,
		Number:  number,
	}
}

func extractCaption(text string) *LookupResult {
	matches := setNumberRE.FindStringSubmatch(text)
	if matches == nil {
		return nil
	}
	return &LookupResult{
		SetCode: matches[1],
		Number:  matches[2],
	}
}
