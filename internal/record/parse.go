package record

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// dateFormats are tried in order. Most-specific first so "2024-03-15" is
// never mis-read by a two-digit-year layout.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
	"20060102",
	"01/02/06",
}

// ParseAmount parses a monetary cell. Currency symbols, thousands separators
// and surrounding whitespace are stripped; a value in parentheses is treated
// as negative. Returns nil when no number can be recovered.
func ParseAmount(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return nil
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if negative {
		value = -value
	}
	return &value
}

// ParseDate parses a date cell against the supported layouts in order.
// Returns nil when no layout matches.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	// Timestamps like "2024-03-15 00:00:00" carry the date up front.
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// CleanText trims and collapses internal runs of whitespace to one space.
func CleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// SplitName splits a personal name into (first, last). "LAST, FIRST" order
// is detected by the comma; otherwise the final token is taken as the
// surname. Entity names pass through unsplit as the last name.
func SplitName(name string) (first, last string) {
	name = CleanText(name)
	if name == "" {
		return "", ""
	}
	if i := strings.Index(name, ","); i >= 0 {
		last = strings.TrimSpace(name[:i])
		first = strings.TrimSpace(name[i+1:])
		return first, last
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

// streetContractions maps common street-type words to their USPS short
// forms so property and mailing addresses compare on equal footing.
var streetContractions = map[string]string{
	"STREET":    "ST",
	"AVENUE":    "AVE",
	"BOULEVARD": "BLVD",
	"DRIVE":     "DR",
	"LANE":      "LN",
	"ROAD":      "RD",
	"COURT":     "CT",
	"CIRCLE":    "CIR",
	"PLACE":     "PL",
	"TRAIL":     "TRL",
	"PARKWAY":   "PKWY",
	"HIGHWAY":   "HWY",
	"TERRACE":   "TER",
	"NORTH":     "N",
	"SOUTH":     "S",
	"EAST":      "E",
	"WEST":      "W",
	"APARTMENT": "APT",
	"SUITE":     "STE",
	"UNIT":      "UNIT",
}

// NormalizeAddressLine reduces an address line to a comparable key:
// uppercased, punctuation removed, street words contracted.
func NormalizeAddressLine(line string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(line) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		if short, ok := streetContractions[w]; ok {
			words[i] = short
		}
	}
	return strings.Join(words, " ")
}

// Absentee reports whether the mailing address differs from the property
// address. Both must be present for a determination; otherwise false.
func Absentee(property, mailing Address) bool {
	if property.Line1 == "" || mailing.Line1 == "" {
		return false
	}
	if NormalizeAddressLine(property.Line1) != NormalizeAddressLine(mailing.Line1) {
		return true
	}
	pz, mz := zip5(property.Zip), zip5(mailing.Zip)
	return pz != "" && mz != "" && pz != mz
}

func zip5(zip string) string {
	zip = strings.TrimSpace(zip)
	if i := strings.Index(zip, "-"); i >= 0 {
		zip = zip[:i]
	}
	if len(zip) > 5 {
		zip = zip[:5]
	}
	return zip
}
