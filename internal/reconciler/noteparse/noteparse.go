// Package noteparse extracts structured signals from the free text operators
// type into cash transaction notes: order codes, delivery distances and
// quantities, including quantities spelled out as Vietnamese number words.
// Everything here is heuristic pattern matching over messy human input.
package noteparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	orderCodeRe = regexp.MustCompile(`\b[A-Z0-9_]{5,}\b`)
	distanceRe  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*km`)
	integerRe   = regexp.MustCompile(`\d+`)
)

// Distances above this are assumed to be misread thousands separators
// ("3.485" is an amount, not 3485 km), distances of zero are noise.
const maxPlausibleDistanceKm = 20

// Vietnamese digit words one through nine, lowercase.
var numberWords = map[string]string{
	"một":  "1",
	"hai":  "2",
	"ba":   "3",
	"bốn":  "4",
	"năm":  "5",
	"sáu":  "6",
	"bảy":  "7",
	"tám":  "8",
	"chín": "9",
}

// ExtractOrderCode returns the first whole-word token of five or more
// uppercase letters, digits or underscores, with any leading '#' already
// excluded by the word boundary. Upstream order codes are five-character
// prefixes before an underscore separator, so a token containing '_' is
// truncated to its first five characters. Returns "" when the note carries
// no qualifying token.
func ExtractOrderCode(note string) string {
	code := orderCodeRe.FindString(note)
	if code == "" {
		return ""
	}
	if strings.Contains(code, "_") && len(code) >= 5 {
		code = code[:5]
	}
	return code
}

// ExtractDistanceKm finds a number immediately followed by "km"
// (case-insensitive, decimal comma or dot both accepted) and returns it
// rounded to two decimals. A separator followed by exactly three digits is a
// thousands separator, not a decimal point ("3.485" is 3485, an amount), so
// the value is scaled accordingly. Values outside (0, 20) are rejected: a
// zero distance is noise and anything larger is a misparsed amount.
func ExtractDistanceKm(note string) (float64, bool) {
	m := distanceRe.FindStringSubmatch(note)
	if m == nil {
		return 0, false
	}

	raw := strings.ReplaceAll(m[1], ",", ".")
	if whole, frac, found := strings.Cut(raw, "."); found && len(frac) == 3 {
		raw = whole + frac
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if v <= 0 || v >= maxPlausibleDistanceKm {
		return 0, false
	}

	return math.Round(v*100) / 100, true
}

// ConvertVietnameseNumberWords replaces whole-word occurrences of the
// Vietnamese digit words one through nine with their digit forms so the
// integer extractor can find spelled-out counts. Replacement is done on
// letter-run boundaries, never inside a longer word.
func ConvertVietnameseNumberWords(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var word []rune
	flush := func() {
		if len(word) == 0 {
			return
		}
		w := string(word)
		if digit, ok := numberWords[strings.ToLower(w)]; ok {
			b.WriteString(digit)
		} else {
			b.WriteString(w)
		}
		word = word[:0]
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			word = append(word, r)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()

	return b.String()
}

// ExtractFirstInteger returns the first run of digits in the note after
// Vietnamese number-word conversion, or 0 when the note contains none.
func ExtractFirstInteger(note string) int {
	converted := ConvertVietnameseNumberWords(note)
	m := integerRe.FindString(converted)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		// Digit runs long enough to overflow int are not real quantities.
		return 0
	}
	return n
}
