package export

import (
	"archive/zip"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLine writes values into their layout positions over a blank line.
func buildLine(t *testing.T, values map[string]string) string {
	t.Helper()
	line := []byte(strings.Repeat(" ", minLineLength))
	for name, value := range values {
		spec, ok := fieldSpecs[name]
		require.True(t, ok, "unknown field %s", name)
		require.LessOrEqual(t, len(value), spec.End-spec.Start+1, "value too wide for %s", name)
		copy(line[spec.Start-1:], value)
	}
	return string(line)
}

func sampleValues() map[string]string {
	return map[string]string{
		"account_id":          "123456",
		"property_type":       "R1",
		"assessed_year":       "2025",
		"owner_name":          "SMITH JOHN",
		"mailing_address":     "PO BOX 9",
		"mailing_city":        "AUSTIN",
		"mailing_state":       "TX",
		"mailing_zip":         "78701",
		"situs_city":          "AUSTIN",
		"situs_zip":           "78701",
		"situs_street_prefx":  "N",
		"situs_street":        "LAMAR",
		"situs_street_suffix": "BLVD",
		"land_value":          "100000",
		"improvement_value":   "240000",
		"total_value":         "340000",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func column(t *testing.T, rows [][]string, name string) int {
	t.Helper()
	for i, col := range rows[0] {
		if col == name {
			return i
		}
	}
	t.Fatalf("column %s not in header %v", name, rows[0])
	return -1
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "prop_clean.csv")
	errors := filepath.Join(dir, "prop_errors.csv")

	bad := sampleValues()
	bad["total_value"] = "NOTNUM"

	input := buildLine(t, sampleValues()) + "\n" +
		"\n" + // blank lines are skipped entirely
		"SHORT LINE\n" +
		buildLine(t, bad) + "\n"

	counts, err := Parse(strings.NewReader(input), clean, errors)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.TotalLines)
	assert.Equal(t, 1, counts.Clean)
	assert.Equal(t, 2, counts.Errors)

	rows := readCSV(t, clean)
	require.Len(t, rows, 2)
	assert.Equal(t, CleanColumns, rows[0])
	assert.Equal(t, "123456", rows[1][column(t, rows, "account_id")])
	assert.Equal(t, "SMITH JOHN", rows[1][column(t, rows, "owner_name")])
	assert.Equal(t, "N LAMAR BLVD", rows[1][column(t, rows, "situs_address")], "street assembled from prefix, street, suffix")
	assert.Equal(t, "340000", rows[1][column(t, rows, "total_value")])
	assert.Equal(t, "TX", rows[1][column(t, rows, "situs_state")], "state shared with mailing state field")

	errRows := readCSV(t, errors)
	require.Len(t, errRows, 3)
	assert.Contains(t, errRows[1][2], "too short")
	assert.Contains(t, errRows[2][2], "total_value")
}

func TestParseZip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "export.zip")

	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range []string{"PROP_ENT.TXT", "PROP.TXT", "README.TXT"} {
		entry, err := zw.Create(name)
		require.NoError(t, err)
		if name == "PROP.TXT" {
			_, err = entry.Write([]byte(buildLine(t, sampleValues()) + "\n"))
		} else {
			_, err = entry.Write([]byte("other content\n"))
		}
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	clean := filepath.Join(dir, "out", "prop_clean.csv")
	errors := filepath.Join(dir, "out", "prop_errors.csv")
	counts, err := ParseZip(zipPath, clean, errors, false)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Clean, "exact PROP.TXT entry preferred")
	assert.Equal(t, 0, counts.Errors)
}

func TestParseZipNoPropertyEntry(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "export.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	entry, err := zw.Create("README.TXT")
	require.NoError(t, err)
	_, err = entry.Write([]byte("no property data"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = ParseZip(zipPath, filepath.Join(dir, "c.csv"), filepath.Join(dir, "e.csv"), false)
	assert.Error(t, err)
}
