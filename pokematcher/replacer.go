package pokematcher

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var replacer = strings.NewReplacer(
	// Mojibake from pages serving UTF-8 bytes as latin-1, most commonly
	// seen on "Pokémon" and on curly apostrophes. Needs to run before
	// the plain apostrophe step below.
	"Ã©", "é",
	"â€™", "'",
	"â€˜", "'",
	"Â", "",

	// Every code point the source site has been seen using in place of
	// a plain apostrophe
	"’", "'",
	"‘", "'",
	"ʼ", "'",
	"´", "'",
	"`", "'",

	// Quotes and assorted decoration
	"“", "",
	"”", "",
	"\"", "",
	"®", "",
	"™", "",

	// Unicode spaces that survive entity decoding
	" ", " ",
	" ", " ",
)

// Strips combining marks after NFD decomposition, so that "Pokémon" and
// "Pokemon" produce the same key.
var markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw card name into its lookup key: HTML
// entities are decoded, the many apostrophe lookalikes become a plain
// ASCII apostrophe, diacritics are folded away, runs of whitespace
// collapse to single spaces, and the result is lowercased.
// It is pure and idempotent, and never fails - any input (including the
// empty string) yields a normalized string.
func Normalize(str string) string {
	str = html.UnescapeString(str)
	str = replacer.Replace(str)
	folded, _, err := transform.String(markStripper, str)
	if err == nil {
		str = folded
	}
	str = strings.Join(strings.Fields(str), " ")
	return strings.ToLower(str)
}

// Compare strings after both are Normalize-d.
func Equals(str1, str2 string) bool {
	return Normalize(str1) == Normalize(str2)
}

// Check if str1 contains str2 after both are Normalize-d.
func Contains(str1, str2 string) bool {
	return strings.Contains(Normalize(str1), Normalize(str2))
}

// Check if str2 is the prefix of str1 after both are Normalize-d.
func HasPrefix(str1, str2 string) bool {
	return strings.HasPrefix(Normalize(str1), Normalize(str2))
}
