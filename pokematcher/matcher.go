package pokematcher

import (
	"strings"
)

// Variant markers that sources disagree on keeping in the card name.
// The order is load bearing: names exist that collide across steps, and
// stripping is always attempted before appending.
var variantSuffixes = []string{
	" ex",
	" v",
	" vmax",
	" vstar",
	" gx",
	" mega",
}

const basicPrefix = "basic "

// findVariant runs the escalation chain over a normalized name that
// failed the exact lookup, and returns the first reference key the name
// can be reconciled to:
//  1. strip a leading "basic "
//  2. strip each known variant suffix in turn
//  3. append each known variant suffix in turn
func (ds *Datastore) findVariant(norm string) (string, bool) {
	if ds == nil || ds.entries == nil {
		return "", false
	}

	if strings.HasPrefix(norm, basicPrefix) {
		bare := strings.TrimPrefix(norm, basicPrefix)
		_, found := ds.entries[bare]
		if found {
			return bare, true
		}
	}

	for _, suffix := range variantSuffixes {
		if !strings.HasSuffix(norm, suffix) {
			continue
		}
		bare := strings.TrimSuffix(norm, suffix)
		_, found := ds.entries[bare]
		if found {
			return bare, true
		}
	}

	for _, suffix := range variantSuffixes {
		variant := norm + suffix
		_, found := ds.entries[variant]
		if found {
			return variant, true
		}
	}

	return "", false
}

// Classify determines the category of a raw card name. The exact
// reference entry wins when present; otherwise the name level energy
// marker and the variant escalation chain are tried, and anything still
// unrecognized defaults to Pokemon. Deterministic and total: any input
// produces a category, even against an empty datastore.
func (ds *Datastore) Classify(name string) Category {
	norm := Normalize(name)

	if ds != nil && ds.entries != nil {
		entry, found := ds.entries[norm]
		if found {
			return entry.Category
		}
	}

	if norm == "energy" || strings.HasSuffix(norm, " energy") {
		return CategoryEnergy
	}

	key, found := ds.findVariant(norm)
	if found {
		return ds.entries[key].Category
	}

	return CategoryPokemon
}

// IsValid reports whether the name belongs to a real card, used to
// reject tournament titles and page furniture that the extraction
// patterns capture by mistake. It mirrors the Classify escalation but
// only tests presence. Names absent from every loaded source are
// reported invalid, including against an empty datastore.
func (ds *Datastore) IsValid(name string) bool {
	if ds == nil || ds.entries == nil {
		return false
	}

	norm := Normalize(name)
	_, found := ds.entries[norm]
	if found {
		return true
	}

	_, found = ds.findVariant(norm)
	return found
}
