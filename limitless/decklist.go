package limitless

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ptcgban/go-ptcgban/ptcgban"
)

// One text decklist line: a copy count, the card name, and optionally a
// trailing set code and collector number, like "4 Charizard ex PAF 54".
var decklistLineRE = regexp.MustCompile(`^(\d+)\s+(.+?)(?:\s+([A-Z]{2,4}(?:-[A-Z]{1,2})?)\s+(\d{1,3}[a-zA-Z]?))?$`)

// Section headers and totals that share the "<number> <words>" shape
// with real card lines.
var decklistNoise = []string{
	"pokemon",
	"pokémon",
	"trainer",
	"energy",
	"cards",
}

// ParseDecklistLine extracts one raw entry from a text decklist line.
// The bool is false for lines that are not card entries, such as
// section headers ("Pokemon: 18") or blank separators.
func ParseDecklistLine(line string) (ptcgban.RawEntry, bool) {
	line = strings.TrimSpace(line)

	matches := decklistLineRE.FindStringSubmatch(line)
	if matches == nil {
		return ptcgban.RawEntry{}, false
	}

	// Headers like "18 Pokemon" or "60 cards" parse as count+name,
	// filter them out by name
	name := strings.TrimSpace(matches[2])
	lower := strings.ToLower(name)
	for _, noise := range decklistNoise {
		if lower == noise {
			return ptcgban.RawEntry{}, false
		}
	}

	count, err := strconv.Atoi(matches[1])
	if err != nil || count == 0 {
		return ptcgban.RawEntry{}, false
	}

	return ptcgban.RawEntry{
		Count:   count,
		Name:    name,
		SetCode: matches[3],
		Number:  matches[4],
	}, true
}
