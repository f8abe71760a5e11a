package enrich

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestMergeResults(t *testing.T) {
	dir := t.TempDir()
	leads := filepath.Join(dir, "leads.csv")
	results := filepath.Join(dir, "results.csv")
	out := filepath.Join(dir, "merged.csv")

	require.NoError(t, os.WriteFile(leads, []byte(
		"lead_id,full_name,lead_score\n"+
			"aaa,SMITH JOHN,80\n"+
			"bbb,DOE JANE,65\n"+
			"ccc,ROE RICHARD,50\n"), 0644))
	require.NoError(t, os.WriteFile(results, []byte(
		"lead_id,email,phone\n"+
			"aaa,jsmith@example.com,512-555-0100\n"+
			"bbb,,512-555-0199\n"), 0644))

	counts, err := MergeResults(leads, results, out)
	require.NoError(t, err)

	assert.Equal(t, 3, counts.TotalRows)
	assert.Equal(t, 2, counts.Matched)
	assert.Equal(t, 1, counts.Unmatched)
	assert.Equal(t, 1, counts.WithEmail)
	assert.Equal(t, 2, counts.WithPhone)

	rows := readCSV(t, out)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"lead_id", "full_name", "lead_score", "email", "phone"}, rows[0])
	assert.Equal(t, []string{"aaa", "SMITH JOHN", "80", "jsmith@example.com", "512-555-0100"}, rows[1])
	assert.Equal(t, []string{"ccc", "ROE RICHARD", "50", "", ""}, rows[3], "unmatched row passes through with blanks")
}

func TestMergeResultsMissingResultsFile(t *testing.T) {
	dir := t.TempDir()
	leads := filepath.Join(dir, "leads.csv")
	out := filepath.Join(dir, "merged.csv")
	require.NoError(t, os.WriteFile(leads, []byte("lead_id,full_name\naaa,SMITH JOHN\n"), 0644))

	counts, err := MergeResults(leads, filepath.Join(dir, "nope.csv"), out)
	require.NoError(t, err, "missing results degrade to passthrough")
	assert.Equal(t, 1, counts.TotalRows)
	assert.Equal(t, 0, counts.Matched)

	rows := readCSV(t, out)
	assert.Equal(t, []string{"lead_id", "full_name", "email", "phone"}, rows[0])
}

func TestMergeResultsNoLeadIDColumn(t *testing.T) {
	dir := t.TempDir()
	leads := filepath.Join(dir, "leads.csv")
	require.NoError(t, os.WriteFile(leads, []byte("full_name\nSMITH JOHN\n"), 0644))

	_, err := MergeResults(leads, filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.csv"))
	assert.Error(t, err)
}
