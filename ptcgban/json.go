package ptcgban

import (
	"io"
	"time"

	"github.com/scizorman/go-ndjson"
)

// DeckRow is the flattened per-deck record used for NDJSON exports.
type DeckRow struct {
	Tournament string    `json:"tournament"`
	Date       time.Time `json:"date"`
	Format     string    `json:"format,omitempty"`
	Deck
}

// WriteDecksToNDJSON flattens every deck of every tournament into one
// JSON object per line.
func WriteDecksToNDJSON(tournaments []Tournament, w io.Writer) error {
	var rows []DeckRow
	for _, tournament := range tournaments {
		for _, deck := range tournament.Decks {
			rows = append(rows, DeckRow{
				Tournament: tournament.Name,
				Date:       tournament.Date,
				Format:     tournament.Format,
				Deck:       deck,
			})
		}
	}

	output, err := ndjson.Marshal(rows)
	if err != nil {
		return err
	}

	_, err = w.Write(output)
	return err
}
