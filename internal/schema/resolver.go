package schema

import (
	"strings"
	"unicode"

	"github.com/note-leads/internal/debug"
)

// Method records how a canonical field was bound to a source column, for the
// audit artifact.
type Method string

const (
	MethodExact      Method = "exact"
	MethodNormalized Method = "normalized"
	MethodFuzzy      Method = "fuzzy"
	MethodManual     Method = "manual"
)

// FieldMapping binds one canonical field to a source column.
type FieldMapping struct {
	Column string  `json:"column"`
	Method Method  `json:"method"`
	Score  float64 `json:"score,omitempty"`
}

// Mapping is the once-per-file result of header resolution. Read-only after
// creation; persisted as the column-mapping audit artifact.
type Mapping struct {
	Fields          map[string]FieldMapping `json:"fields"`
	MissingRequired []string                `json:"missing_required,omitempty"`
}

// Column returns the source column bound to a canonical field.
func (m *Mapping) Column(field string) (string, bool) {
	fm, ok := m.Fields[field]
	if !ok {
		return "", false
	}
	return fm.Column, true
}

// Complete reports whether every required field resolved. Callers treat an
// incomplete mapping as a hard stop for the file.
func (m *Mapping) Complete() bool {
	return len(m.MissingRequired) == 0
}

// Resolver maps raw header rows onto a canonical field set.
type Resolver struct {
	fields    []Field
	threshold float64
	trace     bool
}

// NewResolver creates a resolver for a field set with the given fuzzy
// similarity threshold.
func NewResolver(fields []Field, threshold float64) *Resolver {
	return &Resolver{fields: fields, threshold: threshold}
}

// SetTrace enables per-field resolution tracing.
func (r *Resolver) SetTrace(enabled bool) {
	r.trace = enabled
}

// Resolve produces a Mapping from a raw header row. Each header column is
// consumed by at most one canonical field; fields are resolved in declaration
// order (required first) so required fields win contested matches. Resolve
// never fails: unresolvable fields are simply left out of the mapping, and
// unresolved required fields are reported in MissingRequired.
func (r *Resolver) Resolve(header []string) *Mapping {
	mapping := &Mapping{Fields: make(map[string]FieldMapping)}
	used := make([]bool, len(header))

	for _, field := range orderRequiredFirst(r.fields) {
		if fm, ok := r.resolveField(field, header, used); ok {
			mapping.Fields[field.Name] = fm
			debug.Output(r.trace, "resolved %s -> %q (%s, %.2f)", field.Name, fm.Column, fm.Method, fm.Score)
		} else if field.Required {
			mapping.MissingRequired = append(mapping.MissingRequired, field.Name)
			debug.Output(r.trace, "required field %s unresolved", field.Name)
		}
	}

	return mapping
}

func (r *Resolver) resolveField(field Field, header []string, used []bool) (FieldMapping, bool) {
	// Pass 1: exact match after case/whitespace normalization.
	for i, col := range header {
		if used[i] {
			continue
		}
		if normalizeExact(col) == normalizeExact(field.Name) {
			used[i] = true
			return FieldMapping{Column: col, Method: MethodExact, Score: 1.0}, true
		}
	}

	// Pass 2: match ignoring punctuation, underscores and spacing, against
	// the canonical name and every alias.
	for i, col := range header {
		if used[i] {
			continue
		}
		loose := normalizeLoose(col)
		if loose == normalizeLoose(field.Name) {
			used[i] = true
			return FieldMapping{Column: col, Method: MethodNormalized, Score: 1.0}, true
		}
		for _, alias := range field.Aliases {
			if loose == normalizeLoose(alias) {
				used[i] = true
				return FieldMapping{Column: col, Method: MethodNormalized, Score: 1.0}, true
			}
		}
	}

	// Pass 3: fuzzy similarity against the alias list. Strict > keeps the
	// first occurrence in header order on tied scores.
	bestIdx := -1
	bestScore := 0.0
	for i, col := range header {
		if used[i] {
			continue
		}
		loose := normalizeLoose(col)

		score := JaroWinklerSimilarity(loose, normalizeLoose(field.Name))
		for _, alias := range field.Aliases {
			if s := JaroWinklerSimilarity(loose, normalizeLoose(alias)); s > score {
				score = s
			}
		}

		if score >= r.threshold && score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx >= 0 {
		used[bestIdx] = true
		return FieldMapping{Column: header[bestIdx], Method: MethodFuzzy, Score: bestScore}, true
	}

	return FieldMapping{}, false
}

// orderRequiredFirst returns fields with required ones ahead of optional
// ones, preserving declaration order within each group.
func orderRequiredFirst(fields []Field) []Field {
	ordered := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Required {
			ordered = append(ordered, f)
		}
	}
	for _, f := range fields {
		if !f.Required {
			ordered = append(ordered, f)
		}
	}
	return ordered
}

// normalizeExact lowercases and collapses whitespace.
func normalizeExact(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// normalizeLoose additionally treats punctuation, underscores and hyphens as
// spaces so "Loan_Amount", "loan-amount" and "Loan Amount" compare equal.
func normalizeLoose(s string) string {
	b := strings.Builder{}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
