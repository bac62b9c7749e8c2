package ptcgban

import (
	"sort"
	"strings"

	"github.com/ptcgban/go-ptcgban/pokematcher"
)

// EnrichEntries runs raw decklist lines through the matching core:
// candidates that the reference database rejects are dropped, survivors
// are classified, and Pokemon entries lacking structured print
// information are resolved against the remote index. Unresolved Pokemon
// are kept with their bare name, losing a card from a decklist is worse
// than an incomplete record.
//
// Entries that already carry a set and number are trusted as-is: the
// existence check only guards the loose text extraction patterns, and
// it is skipped entirely when the reference database loaded nothing,
// since in that degraded state it would reject every real card too.
func EnrichEntries(ds *pokematcher.Datastore, resolver *pokematcher.Resolver, raw []RawEntry) []DeckEntry {
	var out []DeckEntry
	for _, entry := range raw {
		structured := entry.SetCode != "" && entry.Number != ""
		if !structured && ds.Len() > 0 && !ds.IsValid(entry.Name) {
			continue
		}

		card := DeckEntry{
			Count:    entry.Count,
			Name:     entry.Name,
			SetCode:  entry.SetCode,
			Number:   entry.Number,
			Category: ds.Classify(entry.Name),
		}

		if !structured && card.Category == pokematcher.CategoryPokemon && resolver != nil {
			res := resolver.Resolve(entry.Name)
			if res != nil {
				card.SetCode = res.SetCode
				card.Number = res.Number
			}
		}

		out = append(out, card)
	}
	return out
}

// Archetype derives a deck label from its most prominent Pokemon cards,
// ie the two highest counts, names breaking ties. Decks with no Pokemon
// at all (usually a scrape artifact) are labeled Unknown.
func Archetype(cards []DeckEntry) string {
	var pokemon []DeckEntry
	for _, card := range cards {
		if card.Category == pokematcher.CategoryPokemon {
			pokemon = append(pokemon, card)
		}
	}
	if len(pokemon) == 0 {
		return "Unknown"
	}

	sort.Slice(pokemon, func(i, j int) bool {
		if pokemon[i].Count != pokemon[j].Count {
			return pokemon[i].Count > pokemon[j].Count
		}
		return pokemon[i].Name < pokemon[j].Name
	})

	names := []string{pokemon[0].Name}
	if len(pokemon) > 1 && pokemon[1].Count == pokemon[0].Count {
		names = append(names, pokemon[1].Name)
	}
	return strings.Join(names, " / ")
}
