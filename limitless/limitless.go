package limitless

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/ptcgban/go-ptcgban/ptcgban"
)

const (
	baseURL        = "https://limitlesstcg.com"
	tournamentsURL = baseURL + "/tournaments"

	// Politeness delay between page visits
	defaultPageDelay = 2 * time.Second
)

var ErrEmptyPage = errors.New("page contains no recognizable data")

// Scraper fetches tournament results from the target site. Pages are
// visited sequentially with a fixed delay, there is no concurrency.
type Scraper struct {
	LogCallback ptcgban.LogCallbackFunc

	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func NewScraper() *Scraper {
	client := retryablehttp.NewClient()
	client.Logger = nil
	return &Scraper{
		client:    client.StandardClient(),
		limiter:   rate.NewLimiter(rate.Every(defaultPageDelay), 1),
		userAgent: uarand.GetRandom(),
	}
}

func (ll *Scraper) printf(format string, a ...interface{}) {
	if ll.LogCallback != nil {
		ll.LogCallback("[LL] "+format, a...)
	}
}

func (ll *Scraper) getPage(link string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ll.userAgent)

	ll.limiter.Wait(context.Background())

	resp, err := ll.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return goquery.NewDocumentFromReader(resp.Body)
}

// TournamentRef is one row of the tournament index.
type TournamentRef struct {
	Name    string
	Format  string
	Date    time.Time
	Players int
	URL     string
}

// Standings scrapes the final standings table of a single tournament
// page. Decklist contents are not fetched here, each returned deck
// carries the link for a separate DeckList call.
func (ll *Scraper) Standings(link string) (*ptcgban.Tournament, error) {
	doc, err := ll.getPage(link)
	if err != nil {
		return nil, err
	}

	tournament := ptcgban.Tournament{
		Name:   strings.TrimSpace(doc.Find(`div[class="infobox-heading"]`).First().Text()),
		Format: strings.TrimSpace(doc.Find(`div[class="infobox-line"] a[href*="format"]`).First().Text()),
	}
	dateStr, found := doc.Find(`time`).First().Attr("datetime")
	if found {
		date, err := time.Parse("2006-01-02", dateStr[:min(len(dateStr), 10)])
		if err == nil {
			tournament.Date = date
		}
	}

	doc.Find(`table[class~="striped"] tr`).Each(func(i int, s *goquery.Selection) {
		cells := s.Find("td")
		if cells.Length() < 2 {
			return
		}

		placement, err := strconv.Atoi(strings.TrimSpace(cells.First().Text()))
		if err != nil {
			return
		}

		deck := ptcgban.Deck{
			Placement: placement,
			Player:    strings.TrimSpace(cells.Eq(1).Text()),
		}

		deckLink, found := s.Find(`a[href*="decklist"]`).Attr("href")
		if found {
			deck.URL = absoluteURL(link, deckLink)
		}

		record := strings.TrimSpace(s.Find(`td[class="record"]`).Text())
		deck.Record = parseRecord(record)

		tournament.Decks = append(tournament.Decks, deck)
	})

	if len(tournament.Decks) == 0 {
		return nil, ErrEmptyPage
	}
	tournament.Players = len(tournament.Decks)

	ll.printf("found %d standings at %s", len(tournament.Decks), link)
	return &tournament, nil
}

// DeckList scrapes a published decklist page into raw entries. Lines
// without structured print information are returned with empty set and
// number, resolution happens downstream.
func (ll *Scraper) DeckList(link string) ([]ptcgban.RawEntry, error) {
	doc, err := ll.getPage(link)
	if err != nil {
		return nil, err
	}

	var entries []ptcgban.RawEntry

	// Newer pages carry one annotated element per card
	doc.Find(`div[class~="decklist-card"]`).Each(func(i int, s *goquery.Selection) {
		count, err := strconv.Atoi(s.AttrOr("data-count", ""))
		if err != nil {
			return
		}
		name := strings.TrimSpace(s.Find(`span[class="card-name"]`).Text())
		if name == "" {
			return
		}
		entries = append(entries, ptcgban.RawEntry{
			Count:   count,
			Name:    name,
			SetCode: s.AttrOr("data-set", ""),
			Number:  s.AttrOr("data-number", ""),
		})
	})
	if len(entries) > 0 {
		return entries, nil
	}

	// Older pages are plain text blocks, one card per line
	for _, line := range strings.Split(doc.Find(`div[class~="decklist"]`).Text(), "\n") {
		entry, ok := ParseDecklistLine(line)
		if ok {
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		return nil, ErrEmptyPage
	}
	return entries, nil
}

// Pairings scrapes completed rounds from a tournament pairings page.
// The archetype fields are left empty when the site does not label the
// decks, callers fill them from standings data.
func (ll *Scraper) Pairings(link string) ([]ptcgban.Match, error) {
	doc, err := ll.getPage(link)
	if err != nil {
		return nil, err
	}

	var matches []ptcgban.Match
	doc.Find(`div[class~="pairing"]`).Each(func(i int, s *goquery.Selection) {
		winner := strings.TrimSpace(s.Find(`div[class~="winner"] a`).Text())
		loser := strings.TrimSpace(s.Find(`div[class~="loser"] a`).Text())
		if winner == "" && loser == "" {
			players := s.Find(`a[class~="player"]`)
			if players.Length() < 2 {
				return
			}
			matches = append(matches, ptcgban.Match{
				Winner: strings.TrimSpace(players.Eq(0).Text()),
				Loser:  strings.TrimSpace(players.Eq(1).Text()),
				Draw:   true,
			})
			return
		}
		if winner == "" || loser == "" {
			return
		}
		matches = append(matches, ptcgban.Match{
			Winner: winner,
			Loser:  loser,
		})
	})

	if len(matches) == 0 {
		return nil, ErrEmptyPage
	}
	return matches, nil
}

func parseRecord(record string) ptcgban.Record {
	var out ptcgban.Record
	fields := strings.Split(record, "-")
	if len(fields) < 2 {
		return out
	}
	out.Wins, _ = strconv.Atoi(strings.TrimSpace(fields[0]))
	out.Losses, _ = strconv.Atoi(strings.TrimSpace(fields[1]))
	if len(fields) > 2 {
		out.Ties, _ = strconv.Atoi(strings.TrimSpace(fields[2]))
	}
	return out
}

func absoluteURL(pageLink, href string) string {
	base, err := url.Parse(pageLink)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
