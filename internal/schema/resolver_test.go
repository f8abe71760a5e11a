package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAliasForms(t *testing.T) {
	// Every spelling an operator has actually shipped for the loan amount
	// column must land on the same canonical field.
	tests := []struct {
		name   string
		header []string
	}{
		{name: "snake case", header: []string{"lender_name", "loan_amount"}},
		{name: "upper case", header: []string{"LENDER NAME", "LOAN AMOUNT"}},
		{name: "abbreviated", header: []string{"Lender", "Loan Amt"}},
		{name: "punctuated", header: []string{"Lender-Name", "Loan.Amount"}},
		{name: "padded", header: []string{" Lender Name ", "  loan_amount  "}},
	}
	r := NewResolver(RecorderFields(), 0.80)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := r.Resolve(tt.header)
			require.True(t, m.Complete(), "missing: %v", m.MissingRequired)

			col, ok := m.Column("loan_amount")
			require.True(t, ok)
			assert.Equal(t, tt.header[1], col)
			col, ok = m.Column("lender_name")
			require.True(t, ok)
			assert.Equal(t, tt.header[0], col)
		})
	}
}

func TestResolveMethodPerPass(t *testing.T) {
	r := NewResolver(RecorderFields(), 0.80)
	m := r.Resolve([]string{"lender_name", "Loan Amt", "Recrding Date"})

	assert.Equal(t, MethodExact, m.Fields["lender_name"].Method)
	assert.Equal(t, MethodNormalized, m.Fields["loan_amount"].Method)

	fuzzy, ok := m.Fields["recording_date"]
	require.True(t, ok, "misspelled header resolves fuzzily")
	assert.Equal(t, MethodFuzzy, fuzzy.Method)
	assert.Equal(t, "Recrding Date", fuzzy.Column)
	assert.GreaterOrEqual(t, fuzzy.Score, 0.80)
}

func TestResolveConsumesColumns(t *testing.T) {
	// Two plausible amount columns: the first suitable one is bound and
	// the second stays available for other fields, never double-bound.
	r := NewResolver(RecorderFields(), 0.80)
	m := r.Resolve([]string{"Lender", "Loan Amount", "Amount"})

	col, _ := m.Column("loan_amount")
	assert.Equal(t, "Loan Amount", col)

	bound := make(map[string]int)
	for _, fm := range m.Fields {
		bound[fm.Column]++
	}
	for colName, n := range bound {
		assert.Equal(t, 1, n, "column %s bound %d times", colName, n)
	}
}

func TestResolveRequiredFieldsWinContestedColumns(t *testing.T) {
	// "Amount" could serve interest_rate fuzzily, but loan_amount is
	// required and resolves first.
	r := NewResolver(RecorderFields(), 0.80)
	m := r.Resolve([]string{"Lender", "Amount"})

	col, ok := m.Column("loan_amount")
	require.True(t, ok)
	assert.Equal(t, "Amount", col)
	assert.True(t, m.Complete())
}

func TestResolveMissingRequired(t *testing.T) {
	r := NewResolver(RecorderFields(), 0.80)
	m := r.Resolve([]string{"Document Number", "Book", "Page"})

	assert.False(t, m.Complete())
	assert.Contains(t, m.MissingRequired, "lender_name")
	assert.Contains(t, m.MissingRequired, "loan_amount")
}

func TestResolveFuzzyTieKeepsFirstColumn(t *testing.T) {
	// Identical columns tie at the same similarity; strict comparison
	// keeps the earlier header position.
	r := NewResolver(RecorderFields(), 0.80)
	m := r.Resolve([]string{"Lender", "Loan Amnt", "Loan Amnt"})

	fm := m.Fields["loan_amount"]
	assert.Equal(t, MethodFuzzy, fm.Method)
	col, _ := m.Column("loan_amount")
	assert.Equal(t, "Loan Amnt", col)
}

func TestMappingSaveLoadRoundTrip(t *testing.T) {
	r := NewResolver(RecorderFields(), 0.80)
	m := r.Resolve([]string{"Lender Name", "Loan Amt", "Recording Date"})

	path := filepath.Join(t.TempDir(), "out", "column_mapping.json")
	require.NoError(t, m.Save(path))

	loaded, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, m.Fields, loaded.Fields)
	assert.True(t, loaded.Complete())
}

func TestLoadMappingManualEdit(t *testing.T) {
	// A hand-written mapping has no method; it loads as manual so the
	// audit trail shows resolution was bypassed.
	path := filepath.Join(t.TempDir(), "column_mapping.json")
	content := `{"fields": {"lender_name": {"column": "Col A"}, "loan_amount": {"column": "Col B"}}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, MethodManual, m.Fields["lender_name"].Method)
	col, ok := m.Column("loan_amount")
	require.True(t, ok)
	assert.Equal(t, "Col B", col)
}
