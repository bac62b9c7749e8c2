package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/ptcgban/go-ptcgban/limitless"
	"github.com/ptcgban/go-ptcgban/pokematcher"
	"github.com/ptcgban/go-ptcgban/ptcgban"
	"github.com/ptcgban/go-ptcgban/tcgcsv"
)

var GlobalLogCallback ptcgban.LogCallbackFunc = log.Printf

var PricesHeader = []string{
	"Set", "Number", "Name", "Market Price",
}

func dumpTo(outputPath, filename string, writer func(w io.Writer) error) error {
	file, err := os.Create(filepath.Join(outputPath, filename))
	if err != nil {
		return err
	}
	defer file.Close()

	return writer(file)
}

func scrapeTournament(scraper *limitless.Scraper, ds *pokematcher.Datastore, resolver *pokematcher.Resolver, link string) (*ptcgban.Tournament, error) {
	tournament, err := scraper.Standings(link)
	if err != nil {
		return nil, err
	}

	archetypes := map[string]string{}
	for i := range tournament.Decks {
		deck := &tournament.Decks[i]
		if deck.URL == "" {
			deck.Archetype = "Unknown"
			continue
		}

		raw, err := scraper.DeckList(deck.URL)
		if err != nil {
			log.Println("skipping decklist for", deck.Player, "due to", err)
			deck.Archetype = "Unknown"
			continue
		}

		deck.Cards = ptcgban.EnrichEntries(ds, resolver, raw)
		deck.Archetype = ptcgban.Archetype(deck.Cards)
		archetypes[deck.Player] = deck.Archetype
	}

	// Pairings list player names, remap them to the archetypes found in
	// the standings so matchup reports aggregate across events
	matches, err := scraper.Pairings(strings.TrimSuffix(link, "/") + "/pairings")
	if err == nil {
		for _, match := range matches {
			winner, foundW := archetypes[match.Winner]
			loser, foundL := archetypes[match.Loser]
			if !foundW || !foundL {
				continue
			}
			tournament.Matches = append(tournament.Matches, ptcgban.Match{
				Winner: winner,
				Loser:  loser,
				Draw:   match.Draw,
			})
		}
	}

	return tournament, nil
}

func dumpPrices(tournaments []ptcgban.Tournament, w io.Writer) error {
	guide, err := tcgcsv.NewPriceGuide()
	if err != nil {
		return err
	}

	type print struct {
		setCode string
		number  string
		name    string
	}
	seen := map[print]bool{}
	var prints []print
	for _, tournament := range tournaments {
		for _, deck := range tournament.Decks {
			for _, card := range deck.Cards {
				if card.SetCode == "" || card.Number == "" {
					continue
				}
				key := print{card.SetCode, card.Number, card.Name}
				if seen[key] {
					continue
				}
				seen[key] = true
				prints = append(prints, key)
			}
		}
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	err = csvWriter.Write(PricesHeader)
	if err != nil {
		return err
	}

	for _, p := range prints {
		price, err := guide.MarketPrice(p.setCode, p.number)
		if err != nil {
			// Best effort, missing prices never abort the report
			continue
		}
		err = csvWriter.Write([]string{
			p.setCode,
			p.number,
			p.name,
			fmt.Sprintf("%0.2f", price),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func run() int {
	refsOpt := flag.String("refs", os.Getenv("CARD_REFERENCE_FILES"), "Comma separated reference table files, primary first")
	outputPathOpt := flag.String("output-path", "", "Path where to dump the reports")
	formatOpt := flag.String("format", "csv", "Output format (csv or ndjson)")
	latestOpt := flag.Int("latest", 1, "How many recent tournaments to scrape")
	tournamentOpt := flag.String("tournament", "", "Scrape a single tournament page instead of the index")
	pricesOpt := flag.Bool("prices", false, "Also dump market prices for every resolved print")
	flag.Parse()

	if *outputPathOpt == "" {
		log.Println("Missing output-path argument")
		return 1
	}
	err := os.MkdirAll(*outputPathOpt, 0755)
	if err != nil {
		log.Println(err)
		return 1
	}

	var refFiles []string
	if *refsOpt != "" {
		refFiles = strings.Split(*refsOpt, ",")
	}
	ds := pokematcher.NewDatastoreFromFiles(refFiles...)
	ds.SetLogger(log.Default())
	if ds.Len() == 0 {
		// Degraded but not fatal, classification falls back to defaults
		log.Println("No reference sources loaded, card validation disabled")
	}
	log.Println("Reference database loaded with", ds.Len(), "entries")

	resolver := pokematcher.NewResolver()
	resolver.SetLogger(log.Default())

	scraper := limitless.NewScraper()
	scraper.LogCallback = GlobalLogCallback

	var links []string
	if *tournamentOpt != "" {
		links = append(links, *tournamentOpt)
	} else {
		refs, err := scraper.Tournaments()
		if err != nil {
			log.Println(err)
			return 1
		}
		if len(refs) > *latestOpt {
			refs = refs[:*latestOpt]
		}
		for _, ref := range refs {
			links = append(links, ref.URL)
		}
	}

	var tournaments []ptcgban.Tournament
	for _, link := range links {
		tournament, err := scrapeTournament(scraper, ds, resolver, link)
		if err != nil {
			log.Println("skipping", link, "due to", err)
			continue
		}
		tournaments = append(tournaments, *tournament)
	}
	if len(tournaments) == 0 {
		log.Println("Nothing was scraped")
		return 1
	}

	switch *formatOpt {
	case "csv":
		for i, tournament := range tournaments {
			filename := fmt.Sprintf("decks_%02d.csv", i+1)
			err = dumpTo(*outputPathOpt, filename, func(w io.Writer) error {
				return ptcgban.WriteDecksToCSV(tournament, w)
			})
			if err != nil {
				log.Println(err)
				return 1
			}
		}
		err = dumpTo(*outputPathOpt, "meta_share.csv", func(w io.Writer) error {
			return ptcgban.WriteMetaShareToCSV(tournaments, w)
		})
		if err != nil {
			log.Println(err)
			return 1
		}
		err = dumpTo(*outputPathOpt, "placements.csv", func(w io.Writer) error {
			return ptcgban.WritePlacementsToCSV(tournaments, w)
		})
		if err != nil {
			log.Println(err)
			return 1
		}
		err = dumpTo(*outputPathOpt, "matchups.csv", func(w io.Writer) error {
			return ptcgban.WriteMatchupsToCSV(tournaments, w)
		})
		if err != nil {
			// Pairings are not published for every event
			log.Println(err)
		}
	case "ndjson":
		err = dumpTo(*outputPathOpt, "decks.ndjson", func(w io.Writer) error {
			return ptcgban.WriteDecksToNDJSON(tournaments, w)
		})
		if err != nil {
			log.Println(err)
			return 1
		}
	default:
		log.Println("Unsupported output format", *formatOpt)
		return 1
	}

	if *pricesOpt {
		err = dumpTo(*outputPathOpt, "prices.csv", func(w io.Writer) error {
			return dumpPrices(tournaments, w)
		})
		if err != nil {
			log.Println(err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(run())
}
