package ptcgban

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

var (
	// The canonical header that will be present in all meta share files
	MetaShareHeader = []string{
		"Archetype", "Decks", "Share",
	}
	// The canonical header that will be present in all placement files
	PlacementHeader = []string{
		"Archetype", "Decks", "Best", "Mean", "Median", "StdDev",
	}
	// The canonical header that will be present in all matchup files
	MatchupHeader = []string{
		"Archetype", "Opponent", "Wins", "Losses", "Draws", "Win Rate",
	}
	// The canonical header that will be present in all decklist files
	DeckHeader = []string{
		"Player", "Placement", "Archetype", "Count", "Name", "Set", "Number", "Category",
	}
)

func WriteMetaShareToCSV(tournaments []Tournament, w io.Writer) error {
	shares := MetaShare(tournaments)
	if len(shares) == 0 {
		return fmt.Errorf("no decks to report")
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	err := csvWriter.Write(MetaShareHeader)
	if err != nil {
		return err
	}

	for _, archetype := range sortedKeys(shares) {
		share := shares[archetype]
		err = csvWriter.Write([]string{
			share.Archetype,
			strconv.Itoa(share.Decks),
			fmt.Sprintf("%0.4f", share.Share),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func WritePlacementsToCSV(tournaments []Tournament, w io.Writer) error {
	placements := PlacementStats(tournaments)
	if len(placements) == 0 {
		return fmt.Errorf("no placements to report")
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	err := csvWriter.Write(PlacementHeader)
	if err != nil {
		return err
	}

	for _, archetype := range sortedKeys(placements) {
		stat := placements[archetype]
		err = csvWriter.Write([]string{
			stat.Archetype,
			strconv.Itoa(stat.Decks),
			strconv.Itoa(stat.Best),
			fmt.Sprintf("%0.2f", stat.Mean),
			fmt.Sprintf("%0.2f", stat.Median),
			fmt.Sprintf("%0.2f", stat.StdDev),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func WriteMatchupsToCSV(tournaments []Tournament, w io.Writer) error {
	matchups := MatchupWinRates(tournaments)
	if len(matchups) == 0 {
		return fmt.Errorf("no matches to report")
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	err := csvWriter.Write(MatchupHeader)
	if err != nil {
		return err
	}

	for _, archetype := range sortedKeys(matchups) {
		row := matchups[archetype]
		for _, opponent := range sortedKeys(row) {
			rate := row[opponent]
			err = csvWriter.Write([]string{
				rate.Archetype,
				rate.Opponent,
				strconv.Itoa(rate.Wins),
				strconv.Itoa(rate.Losses),
				strconv.Itoa(rate.Draws),
				fmt.Sprintf("%0.4f", rate.Rate),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func WriteDecksToCSV(tournament Tournament, w io.Writer) error {
	if len(tournament.Decks) == 0 {
		return fmt.Errorf("no decks to report")
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	err := csvWriter.Write(DeckHeader)
	if err != nil {
		return err
	}

	for _, deck := range tournament.Decks {
		for _, card := range deck.Cards {
			err = csvWriter.Write([]string{
				deck.Player,
				strconv.Itoa(deck.Placement),
				deck.Archetype,
				strconv.Itoa(card.Count),
				card.Name,
				card.SetCode,
				card.Number,
				card.Category.String(),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
