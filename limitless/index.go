package limitless

import (
	"strconv"
	"strings"
	"time"

	colly "github.com/gocolly/colly/v2"
)

// Tournaments crawls the tournament index and returns one reference per
// completed event, most recent first as listed by the site.
func (ll *Scraper) Tournaments() ([]TournamentRef, error) {
	var refs []TournamentRef

	c := colly.NewCollector(
		colly.AllowedDomains("limitlesstcg.com", "www.limitlesstcg.com"),
		colly.UserAgent(ll.userAgent),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob: "*",
		Delay:      defaultPageDelay,
	})

	c.OnHTML(`table[class~="completed-tournaments"] tr`, func(e *colly.HTMLElement) {
		link := e.ChildAttr(`a[href*="/tournament"]`, "href")
		if link == "" {
			return
		}

		ref := TournamentRef{
			Name:   strings.TrimSpace(e.ChildText(`a[href*="/tournament"]`)),
			Format: strings.TrimSpace(e.ChildText(`td[class="format"]`)),
			URL:    e.Request.AbsoluteURL(link),
		}
		ref.Players, _ = strconv.Atoi(strings.TrimSpace(e.ChildText(`td[class="players"]`)))

		dateStr := e.ChildAttr("time", "datetime")
		if len(dateStr) >= 10 {
			date, err := time.Parse("2006-01-02", dateStr[:10])
			if err == nil {
				ref.Date = date
			}
		}

		refs = append(refs, ref)
	})

	err := c.Visit(tournamentsURL)
	if err != nil {
		return nil, err
	}

	if len(refs) == 0 {
		return nil, ErrEmptyPage
	}

	ll.printf("found %d completed tournaments", len(refs))
	return refs, nil
}
