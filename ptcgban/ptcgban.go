// Package ptcgban defines the record types shared by the tournament
// scrapers and utility functions to aggregate decklists into reports.
package ptcgban

import (
	"time"

	"github.com/ptcgban/go-ptcgban/pokematcher"
)

type LogCallbackFunc func(format string, a ...interface{})

// RawEntry is one decklist line as captured by the page extraction
// layer, before any normalization or enrichment. SetCode and Number are
// empty when the page did not carry structured print information.
type RawEntry struct {
	Count   int
	Name    string
	SetCode string
	Number  string
}

// DeckEntry is one decklist line after enrichment.
type DeckEntry struct {
	// Number of copies in the deck
	Count int `json:"count"`

	// Card name, with the original display casing
	Name string `json:"name"`

	// Print identifier, may be empty for unresolved cards
	SetCode string `json:"set_code,omitempty"`
	Number  string `json:"number,omitempty"`

	Category pokematcher.Category `json:"category"`
}

// Record is a player's win/loss/tie score at a single tournament.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Deck is one player's entry in a tournament.
type Deck struct {
	Player    string      `json:"player"`
	Placement int         `json:"placement"`
	Archetype string      `json:"archetype"`
	Record    Record      `json:"record"`
	Cards     []DeckEntry `json:"cards,omitempty"`

	// Link to the decklist page, when one was published
	URL string `json:"url,omitempty"`
}

// Match is a single completed pairing between two decks, identified by
// their archetypes. On a draw the winner/loser order is meaningless.
type Match struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	Draw   bool   `json:"draw,omitempty"`
}

// Tournament groups everything scraped from a single event page.
type Tournament struct {
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	Format  string    `json:"format,omitempty"`
	Players int       `json:"players,omitempty"`
	Decks   []Deck    `json:"decks"`
	Matches []Match   `json:"matches,omitempty"`
}
