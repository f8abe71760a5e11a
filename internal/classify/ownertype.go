// Package classify assigns each normalized record a disposition and a
// lead score with a per-factor breakdown.
package classify

import (
	"strings"
	"unicode"
)

// OwnerType is the coarse category of the name on the record.
type OwnerType string

const (
	OwnerBank       OwnerType = "BANK"
	OwnerGovernment OwnerType = "GOVERNMENT"
	OwnerLLC        OwnerType = "LLC"
	OwnerTrust      OwnerType = "TRUST"
	OwnerPerson     OwnerType = "PERSON"
	OwnerUnknown    OwnerType = "UNKNOWN"
)

// entitySuffixes mark corporate entities. Checked as whole words so
// "LLOYD" does not read as an LLC.
var entitySuffixes = []string{
	"LLC", "L L C", "LP", "LLP", "INC", "INCORPORATED", "CORP", "CORPORATION",
	"CO", "COMPANY", "LTD", "LIMITED", "PARTNERSHIP", "PARTNERS", "HOLDINGS",
	"PROPERTIES", "INVESTMENTS", "VENTURES", "GROUP", "ENTERPRISES",
}

var trustMarkers = []string{
	"TRUST", "TRUSTEE", "TRUSTEES", "LIVING TRUST", "FAMILY TRUST",
	"REVOCABLE", "IRREVOCABLE", "ESTATE OF", "TR",
}

// OwnerClassifier categorizes names against configurable keyword lists.
// Rules are ordered: institutional checks run before entity suffixes so
// "FIRST NATIONAL BANK CORP" reads as BANK, not LLC.
type OwnerClassifier struct {
	bankKeywords       []string
	governmentKeywords []string
	detectGovernment   bool
}

// NewOwnerClassifier builds a classifier over the configured keyword lists.
// Government detection only applies to property-tax data, where exempt
// parcels appear under agency names.
func NewOwnerClassifier(bankKeywords, governmentKeywords []string, detectGovernment bool) *OwnerClassifier {
	return &OwnerClassifier{
		bankKeywords:       upperAll(bankKeywords),
		governmentKeywords: upperAll(governmentKeywords),
		detectGovernment:   detectGovernment,
	}
}

// Classify returns the owner type for a name. The empty name is UNKNOWN.
func (c *OwnerClassifier) Classify(name string) OwnerType {
	upper := strings.Join(strings.Fields(strings.ToUpper(name)), " ")
	if upper == "" {
		return OwnerUnknown
	}
	for _, kw := range c.bankKeywords {
		if containsWord(upper, kw) {
			return OwnerBank
		}
	}
	if c.detectGovernment {
		for _, kw := range c.governmentKeywords {
			if containsWord(upper, kw) {
				return OwnerGovernment
			}
		}
	}
	for _, suffix := range entitySuffixes {
		if containsWord(upper, suffix) {
			return OwnerLLC
		}
	}
	for _, marker := range trustMarkers {
		if containsWord(upper, marker) {
			return OwnerTrust
		}
	}
	if looksLikePerson(upper) {
		return OwnerPerson
	}
	return OwnerUnknown
}

// looksLikePerson accepts "LAST, FIRST" forms and short all-alphabetic
// names of two to four tokens. Digits anywhere disqualify.
func looksLikePerson(upper string) bool {
	for _, r := range upper {
		if unicode.IsDigit(r) {
			return false
		}
	}
	if strings.Contains(upper, ",") {
		return true
	}
	tokens := strings.Fields(upper)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	for _, tok := range tokens {
		for _, r := range tok {
			if !unicode.IsLetter(r) && r != '\'' && r != '-' && r != '.' {
				return false
			}
		}
	}
	return true
}

// containsWord reports whether phrase occurs in s on word boundaries.
func containsWord(s, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordChar(rune(s[start-1]))
		afterOK := end == len(s) || !isWordChar(rune(s[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func upperAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.ToUpper(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
