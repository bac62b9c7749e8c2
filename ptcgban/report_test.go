package ptcgban

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func testTournaments() []Tournament {
	return []Tournament{
		{
			Name: "Regional One",
			Date: time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC),
			Decks: []Deck{
				{Player: "alice", Placement: 1, Archetype: "Charizard ex"},
				{Player: "bob", Placement: 2, Archetype: "Gardevoir ex"},
				{Player: "carol", Placement: 3, Archetype: "Charizard ex"},
				{Player: "dave", Placement: 4, Archetype: "Lost Box"},
			},
			Matches: []Match{
				{Winner: "Charizard ex", Loser: "Gardevoir ex"},
				{Winner: "Charizard ex", Loser: "Gardevoir ex"},
				{Winner: "Gardevoir ex", Loser: "Charizard ex"},
				{Winner: "Lost Box", Loser: "Charizard ex", Draw: true},
			},
		},
		{
			Name: "Regional Two",
			Date: time.Date(2024, time.March, 23, 0, 0, 0, 0, time.UTC),
			Decks: []Deck{
				{Player: "erin", Placement: 1, Archetype: "Charizard ex"},
				{Player: "frank", Placement: 5, Archetype: "Charizard ex"},
			},
		},
	}
}

func TestMetaShare(t *testing.T) {
	shares := MetaShare(testTournaments())

	share, found := shares["Charizard ex"]
	if !found {
		t.Fatalf("FAIL: missing archetype")
	}
	if share.Decks != 4 {
		t.Errorf("FAIL: Expected 4 decks got %d", share.Decks)
	}
	// 4 of 6 decks
	if share.Share < 0.666 || share.Share > 0.667 {
		t.Errorf("FAIL: Expected ~0.6667 got %f", share.Share)
	}
}

func TestPlacementStats(t *testing.T) {
	placements := PlacementStats(testTournaments())

	stat, found := placements["Charizard ex"]
	if !found {
		t.Fatalf("FAIL: missing archetype")
	}
	if stat.Decks != 4 {
		t.Errorf("FAIL: Expected 4 decks got %d", stat.Decks)
	}
	if stat.Best != 1 {
		t.Errorf("FAIL: Expected best 1 got %d", stat.Best)
	}
	// placements 1, 3, 1, 5
	if stat.Mean != 2.5 {
		t.Errorf("FAIL: Expected mean 2.5 got %f", stat.Mean)
	}
	if stat.Median != 2 {
		t.Errorf("FAIL: Expected median 2 got %f", stat.Median)
	}
}

func TestMatchupWinRates(t *testing.T) {
	matchups := MatchupWinRates(testTournaments())

	rate := matchups["Charizard ex"]["Gardevoir ex"]
	if rate.Wins != 2 || rate.Losses != 1 || rate.Draws != 0 {
		t.Errorf("FAIL: Expected 2-1-0 got %d-%d-%d", rate.Wins, rate.Losses, rate.Draws)
	}
	if rate.Rate < 0.666 || rate.Rate > 0.667 {
		t.Errorf("FAIL: Expected ~0.6667 got %f", rate.Rate)
	}

	// Draws count for both sides
	drawRate := matchups["Lost Box"]["Charizard ex"]
	if drawRate.Draws != 1 || drawRate.Rate != 0.5 {
		t.Errorf("FAIL: Expected a 0.5 rate from the draw, got %v", drawRate)
	}
}

func TestWriteMetaShareToCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMetaShareToCSV(testTournaments(), &buf)
	if err != nil {
		t.Fatalf("FAIL: %s", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != strings.Join(MetaShareHeader, ",") {
		t.Errorf("FAIL: wrong header '%s'", lines[0])
	}
	// Header plus three archetypes, sorted
	if len(lines) != 4 {
		t.Fatalf("FAIL: expected 4 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Charizard ex,4,") {
		t.Errorf("FAIL: unexpected first row '%s'", lines[1])
	}
}

func TestWriteMetaShareToCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMetaShareToCSV(nil, &buf)
	if err == nil {
		t.Errorf("FAIL: this call is supposed to return an error")
	}
}

func TestWriteDecksToNDJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDecksToNDJSON(testTournaments(), &buf)
	if err != nil {
		t.Fatalf("FAIL: %s", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("FAIL: expected 6 lines, got %d", len(lines))
	}

	var row DeckRow
	err = json.Unmarshal([]byte(lines[0]), &row)
	if err != nil {
		t.Fatalf("FAIL: %s", err)
	}
	if row.Tournament != "Regional One" || row.Player != "alice" {
		t.Errorf("FAIL: unexpected first row %v", row)
	}
}
