package ptcgban

import (
	"github.com/montanaflynn/stats"
)

// ArchetypeShare is one row of the meta share report.
type ArchetypeShare struct {
	Archetype string  `json:"archetype"`
	Decks     int     `json:"decks"`
	Share     float64 `json:"share"`
}

// MetaShare computes the fraction of observed decks playing each
// archetype across the given tournaments.
func MetaShare(tournaments []Tournament) map[string]ArchetypeShare {
	total := 0
	counts := map[string]int{}
	for _, tournament := range tournaments {
		for _, deck := range tournament.Decks {
			counts[deck.Archetype]++
			total++
		}
	}

	out := map[string]ArchetypeShare{}
	for archetype, count := range counts {
		share := 0.0
		if total > 0 {
			share = float64(count) / float64(total)
		}
		out[archetype] = ArchetypeShare{
			Archetype: archetype,
			Decks:     count,
			Share:     share,
		}
	}
	return out
}

// PlacementStat summarizes where an archetype finished across events.
type PlacementStat struct {
	Archetype string  `json:"archetype"`
	Decks     int     `json:"decks"`
	Best      int     `json:"best"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	StdDev    float64 `json:"std_dev"`
}

// PlacementStats aggregates final standings per archetype.
func PlacementStats(tournaments []Tournament) map[string]PlacementStat {
	placements := map[string][]float64{}
	for _, tournament := range tournaments {
		for _, deck := range tournament.Decks {
			if deck.Placement <= 0 {
				continue
			}
			placements[deck.Archetype] = append(placements[deck.Archetype], float64(deck.Placement))
		}
	}

	out := map[string]PlacementStat{}
	for archetype, values := range placements {
		stat := PlacementStat{
			Archetype: archetype,
			Decks:     len(values),
		}
		best, err := stats.Min(values)
		if err == nil {
			stat.Best = int(best)
		}
		stat.Mean, _ = stats.Mean(values)
		stat.Median, _ = stats.Median(values)
		stat.StdDev, _ = stats.StandardDeviation(values)
		out[archetype] = stat
	}
	return out
}

// MatchupRate is the head to head score of one archetype pairing.
type MatchupRate struct {
	Archetype string  `json:"archetype"`
	Opponent  string  `json:"opponent"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Draws     int     `json:"draws"`
	Rate      float64 `json:"rate"`
}

// MatchupWinRates aggregates pairing results into per-archetype win
// rates against each opponent. Draws count as half a win, the usual
// tournament convention.
func MatchupWinRates(tournaments []Tournament) map[string]map[string]MatchupRate {
	out := map[string]map[string]MatchupRate{}

	record := func(archetype, opponent string, wins, losses, draws int) {
		if out[archetype] == nil {
			out[archetype] = map[string]MatchupRate{}
		}
		rate := out[archetype][opponent]
		rate.Archetype = archetype
		rate.Opponent = opponent
		rate.Wins += wins
		rate.Losses += losses
		rate.Draws += draws
		total := rate.Wins + rate.Losses + rate.Draws
		if total > 0 {
			rate.Rate = (float64(rate.Wins) + 0.5*float64(rate.Draws)) / float64(total)
		}
		out[archetype][opponent] = rate
	}

	for _, tournament := range tournaments {
		for _, match := range tournament.Matches {
			if match.Winner == "" || match.Loser == "" {
				continue
			}
			if match.Draw {
				record(match.Winner, match.Loser, 0, 0, 1)
				record(match.Loser, match.Winner, 0, 0, 1)
				continue
			}
			record(match.Winner, match.Loser, 1, 0, 0)
			record(match.Loser, match.Winner, 0, 1, 0)
		}
	}
	return out
}
