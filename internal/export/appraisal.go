// Package export parses appraisal-district export archives: fixed-width
// PROP.TXT records inside a ZIP, written out as the cleaned CSV the
// property-target pipeline consumes.
package export

import (
	"archive/zip"
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/note-leads/internal/debug"
)

// FieldSpec is a 1-based inclusive character range in a fixed-width line,
// matching the appraisal export layout sheet.
type FieldSpec struct {
	Start int
	End   int
}

// fieldSpecs positions come from the Legacy 8.0.30 appraisal export
// layout. The situs street is split across prefix/street/suffix columns
// and reassembled into situs_address.
var fieldSpecs = map[string]FieldSpec{
	"account_id":        {1, 12},
	"property_type":     {13, 17},
	"assessed_year":     {18, 22},
	"owner_name":        {609, 678},
	"mailing_address":   {694, 753},
	"mailing_city":      {874, 923},
	"mailing_state":     {924, 925},
	"mailing_zip":       {979, 983},
	"situs_city":        {1110, 1139},
	"situs_state":       {924, 925},
	"situs_zip":         {1140, 1149},
	"land_value":        {1796, 1810},
	"improvement_value": {1826, 1840},
	"total_value":       {1916, 1930},

	"situs_street_prefx":  {1040, 1049},
	"situs_street":        {1050, 1099},
	"situs_street_suffix": {1100, 1109},
}

// CleanColumns is the header of prop_clean.csv, in output order.
var CleanColumns = []string{
	"account_id", "owner_name", "situs_address", "situs_city", "situs_state", "situs_zip",
	"mailing_address", "mailing_city", "mailing_state", "mailing_zip", "property_type",
	"land_value", "improvement_value", "total_value", "assessed_year",
}

var numericColumns = []string{"land_value", "improvement_value", "total_value"}

const progressInterval = 50000

// minLineLength is the largest end position in the layout; shorter lines
// cannot carry a full record and go to the error file.
var minLineLength = func() int {
	max := 0
	for _, spec := range fieldSpecs {
		if spec.End > max {
			max = spec.End
		}
	}
	return max
}()

// Counts summarizes one parse run.
type Counts struct {
	TotalLines int
	Clean      int
	Errors     int
}

// ParseZip extracts an appraisal export archive and parses its property
// file into cleanPath and errorPath.
func ParseZip(zipPath, cleanPath, errorPath string, trace bool) (Counts, error) {
	done := debug.Timing(trace, "appraisal export parse")
	defer done()

	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return Counts{}, fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer archive.Close()

	entry := findPropertyEntry(archive)
	if entry == nil {
		return Counts{}, fmt.Errorf("no PROP*.TXT entry in %s", zipPath)
	}
	fmt.Printf("Parsing %s from %s\n", entry.Name, filepath.Base(zipPath))

	f, err := entry.Open()
	if err != nil {
		return Counts{}, fmt.Errorf("open archive entry %s: %w", entry.Name, err)
	}
	defer f.Close()

	return Parse(f, cleanPath, errorPath)
}

// findPropertyEntry locates the property file, preferring an exact
// PROP.TXT over other PROP-prefixed entries.
func findPropertyEntry(archive *zip.ReadCloser) *zip.File {
	var first *zip.File
	for _, entry := range archive.File {
		name := strings.ToUpper(filepath.Base(entry.Name))
		if !strings.HasPrefix(name, "PROP") || !strings.HasSuffix(name, ".TXT") {
			continue
		}
		if name == "PROP.TXT" {
			return entry
		}
		if first == nil {
			first = entry
		}
	}
	return first
}

// ParseFile parses an already-extracted property file.
func ParseFile(propPath, cleanPath, errorPath string, trace bool) (Counts, error) {
	done := debug.Timing(trace, "appraisal export parse")
	defer done()

	f, err := os.Open(propPath)
	if err != nil {
		return Counts{}, fmt.Errorf("open property file: %w", err)
	}
	defer f.Close()
	return Parse(f, cleanPath, errorPath)
}

// Parse streams fixed-width lines from r, writing clean records and
// per-line errors. A malformed line never aborts the run.
func Parse(r io.Reader, cleanPath, errorPath string) (Counts, error) {
	var counts Counts

	for _, path := range []string{cleanPath, errorPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return counts, fmt.Errorf("create output dir: %w", err)
		}
	}
	cleanFile, err := os.Create(cleanPath)
	if err != nil {
		return counts, fmt.Errorf("create %s: %w", cleanPath, err)
	}
	defer cleanFile.Close()
	errorFile, err := os.Create(errorPath)
	if err != nil {
		return counts, fmt.Errorf("create %s: %w", errorPath, err)
	}
	defer errorFile.Close()

	cleanWriter := csv.NewWriter(cleanFile)
	errorWriter := csv.NewWriter(errorFile)
	if err := cleanWriter.Write(CleanColumns); err != nil {
		return counts, fmt.Errorf("write clean header: %w", err)
	}
	if err := errorWriter.Write([]string{"line_number", "line_content", "error_reason"}); err != nil {
		return counts, fmt.Errorf("write error header: %w", err)
	}

	scanner := bufio.NewScanner(r)
	// Export lines run past 1900 characters.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		counts.TotalLines++

		record, parseErr := parseLine(line)
		if parseErr != "" {
			counts.Errors++
			if err := errorWriter.Write([]string{strconv.Itoa(lineNumber), line, parseErr}); err != nil {
				return counts, fmt.Errorf("write error row: %w", err)
			}
		} else {
			counts.Clean++
			row := make([]string, len(CleanColumns))
			for i, col := range CleanColumns {
				row[i] = record[col]
			}
			if err := cleanWriter.Write(row); err != nil {
				return counts, fmt.Errorf("write clean row: %w", err)
			}
		}

		if lineNumber%progressInterval == 0 {
			fmt.Printf("  processed %d lines (clean: %d, errors: %d)\n", lineNumber, counts.Clean, counts.Errors)
		}
	}
	if err := scanner.Err(); err != nil {
		return counts, fmt.Errorf("read property file: %w", err)
	}

	cleanWriter.Flush()
	errorWriter.Flush()
	if err := cleanWriter.Error(); err != nil {
		return counts, fmt.Errorf("flush clean file: %w", err)
	}
	if err := errorWriter.Error(); err != nil {
		return counts, fmt.Errorf("flush error file: %w", err)
	}
	return counts, nil
}

// parseLine extracts one record. Returns a non-empty reason when the line
// is unusable or a numeric field fails validation.
func parseLine(line string) (map[string]string, string) {
	if len(line) < minLineLength {
		return nil, fmt.Sprintf("line too short (expected at least %d chars, got %d)", minLineLength, len(line))
	}

	record := make(map[string]string, len(CleanColumns))
	for _, col := range CleanColumns {
		if col == "situs_address" {
			record[col] = situsAddress(line)
			continue
		}
		value := extractField(line, fieldSpecs[col])
		// State columns share a wider source field in the layout.
		if (col == "situs_state" || col == "mailing_state") && len(value) > 2 {
			value = strings.TrimSpace(value[:2])
		}
		record[col] = value
	}

	var reasons []string
	for _, col := range numericColumns {
		value := record[col]
		if value == "" {
			continue
		}
		cleaned := strings.NewReplacer(",", "", "$", "", " ", "").Replace(value)
		if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
			reasons = append(reasons, fmt.Sprintf("failed to parse numeric field %s: %q", col, value))
		}
	}
	if len(reasons) > 0 {
		return nil, strings.Join(reasons, "; ")
	}
	return record, ""
}

// situsAddress assembles the street address from its three layout parts.
func situsAddress(line string) string {
	parts := make([]string, 0, 3)
	for _, col := range []string{"situs_street_prefx", "situs_street", "situs_street_suffix"} {
		if v := extractField(line, fieldSpecs[col]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// extractField pulls a 1-based inclusive range, tolerating short lines.
func extractField(line string, spec FieldSpec) string {
	start := spec.Start - 1
	end := spec.End
	if end > len(line) {
		end = len(line)
	}
	if start >= len(line) || start >= end {
		return ""
	}
	return strings.TrimSpace(line[start:end])
}
