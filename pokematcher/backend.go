package pokematcher

import (
	"encoding/csv"
	"errors"
	"io"
	"log"
	"os"
	"strings"
)

var errNoSourceData = errors.New("no reference source data")

// Source is one tabular reference feed, tried in the order given to
// NewDatastore. The first source is the primary one: entries loaded
// from it are never replaced by later sources.
type Source struct {
	Name   string
	Reader io.Reader
}

type referenceEntry struct {
	// Display name as spelled by the source
	Name string

	Category Category
}

// Datastore is the in-memory reference database mapping normalized card
// names to their category. It is built once per scraping session and
// never modified afterwards.
type Datastore struct {
	entries map[string]referenceEntry
	logger  *log.Logger
}

// Header spellings observed across the reference feeds.
var (
	nameColumns = []string{"name", "card name", "cardname", "card"}
	codeColumns = []string{"type", "card type", "cardtype", "category", "code"}
)

// NewDatastore builds the reference database from the given sources.
// Sources that cannot be read or parsed are skipped: an empty datastore
// is a degraded but legal state, where every classification falls back
// to the default category and every existence check is negative.
func NewDatastore(sources ...Source) *Datastore {
	ds := &Datastore{
		entries: map[string]referenceEntry{},
		logger:  log.New(io.Discard, "", log.LstdFlags),
	}
	for _, source := range sources {
		err := ds.loadSource(source)
		if err != nil {
			ds.logger.Println("skipping reference source", source.Name, "due to", err)
		}
	}
	return ds
}

// NewDatastoreFromFiles is a convenience wrapper over NewDatastore for
// on-disk reference tables. Missing files are expected (regional feeds
// are not always present) and simply skipped.
func NewDatastoreFromFiles(filenames ...string) *Datastore {
	var sources []Source
	var readers []io.ReadCloser
	for _, filename := range filenames {
		reader, err := os.Open(filename)
		if err != nil {
			continue
		}
		readers = append(readers, reader)
		sources = append(sources, Source{
			Name:   filename,
			Reader: reader,
		})
	}
	ds := NewDatastore(sources...)
	for _, reader := range readers {
		reader.Close()
	}
	return ds
}

func (ds *Datastore) loadSource(source Source) error {
	if source.Reader == nil {
		return errNoSourceData
	}

	csvReader := csv.NewReader(source.Reader)
	csvReader.Comma = '\t'
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errNoSourceData
	}

	// Some feeds are comma separated instead, reparse if the first row
	// did not split
	if len(records[0]) == 1 && strings.Contains(records[0][0], ",") {
		var sb strings.Builder
		for _, record := range records {
			sb.WriteString(record[0])
			sb.WriteString("\n")
		}
		csvReader = csv.NewReader(strings.NewReader(sb.String()))
		csvReader.FieldsPerRecord = -1
		csvReader.LazyQuotes = true
		records, err = csvReader.ReadAll()
		if err != nil {
			return err
		}
	}

	nameIdx, codeIdx := 0, 1
	start := 0
	if idx := columnIndex(records[0], nameColumns); idx >= 0 {
		nameIdx = idx
		start = 1
		if idx := columnIndex(records[0], codeColumns); idx >= 0 {
			codeIdx = idx
		}
	}

	added := 0
	for _, record := range records[start:] {
		if len(record) <= nameIdx {
			continue
		}
		name := strings.TrimSpace(record[nameIdx])
		if name == "" {
			continue
		}
		code := ""
		if len(record) > codeIdx {
			code = record[codeIdx]
		}

		key := Normalize(name)
		// Higher priority sources win, never overwrite
		_, found := ds.entries[key]
		if found {
			continue
		}
		ds.entries[key] = referenceEntry{
			Name:     name,
			Category: categoryFromCode(code),
		}
		added++
	}

	ds.logger.Println("loaded", added, "entries from", source.Name)
	return nil
}

func columnIndex(header []string, candidates []string) int {
	for i, field := range header {
		field = strings.ToLower(strings.TrimSpace(field))
		for _, candidate := range candidates {
			if field == candidate {
				return i
			}
		}
	}
	return -1
}

var trainerMarkers = []string{
	"item",
	"supporter",
	"stadium",
	"tool",
	"ace spec",
}

// Single letter prefixes used by the reference feeds to mark a Pokemon
// row with its energy type (Grass, Fire, Water, Lightning, Psychic,
// Fighting, Darkness, Metal, Colorless, Dragon, Fairy).
const energyTypeLetters = "grwlpfdmcny"

// categoryFromCode translates a raw type code from a reference feed into
// one of the three categories. The decision order matters: energy marks
// first, then trainer subtypes, and everything else (stage markers,
// variant markers, energy type letters, or codes never seen before) is
// a Pokemon. Defaulting to Pokemon is deliberate, misclassifying a
// Trainer as Pokemon is the cheaper mistake for decklist filtering.
func categoryFromCode(code string) Category {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || strings.Contains(code, "energy") {
		return CategoryEnergy
	}
	for _, marker := range trainerMarkers {
		if strings.Contains(code, marker) {
			return CategoryTrainer
		}
	}
	return CategoryPokemon
}

// CategoryOf performs an exact lookup of the normalized name, with no
// escalation rules applied.
func (ds *Datastore) CategoryOf(name string) (Category, bool) {
	if ds == nil || ds.entries == nil {
		return CategoryPokemon, false
	}
	entry, found := ds.entries[Normalize(name)]
	return entry.Category, found
}

// DisplayName returns the name as spelled by the reference source that
// defined the entry, preserving the original casing.
func (ds *Datastore) DisplayName(name string) (string, bool) {
	if ds == nil || ds.entries == nil {
		return "", false
	}
	entry, found := ds.entries[Normalize(name)]
	return entry.Name, found
}

// Len reports how many entries were loaded across all sources.
func (ds *Datastore) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.entries)
}

// SetLogger redirects the datastore logs to a custom logger.
func (ds *Datastore) SetLogger(userLogger *log.Logger) {
	ds.logger = userLogger
}
