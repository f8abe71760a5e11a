package enrich

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MergeCounts summarizes a merge run.
type MergeCounts struct {
	TotalRows int
	Matched   int
	Unmatched int
	WithEmail int
	WithPhone int
}

// contactColumns are appended to the leads file when absent. Matched rows
// get them filled from the enrichment results.
var contactColumns = []string{"email", "phone"}

// MergeResults streams a leads file, joining third-party contact results
// by lead_id and writing the merged file to outPath. Rows without a match
// pass through unchanged with blank contact columns.
func MergeResults(leadsPath, resultsPath, outPath string) (MergeCounts, error) {
	var counts MergeCounts

	lookup, err := loadResults(resultsPath)
	if err != nil {
		return counts, err
	}

	in, err := os.Open(leadsPath)
	if err != nil {
		return counts, fmt.Errorf("open leads file: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return counts, fmt.Errorf("create output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return counts, fmt.Errorf("create merged file: %w", err)
	}
	defer out.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	writer := csv.NewWriter(out)

	header, err := reader.Read()
	if err != nil {
		return counts, fmt.Errorf("read leads header: %w", err)
	}
	col := indexColumns(header)
	leadIDPos, ok := col["lead_id"]
	if !ok {
		return counts, fmt.Errorf("leads file %s has no lead_id column", leadsPath)
	}

	outHeader := append([]string(nil), header...)
	contactPos := make(map[string]int, len(contactColumns))
	for _, c := range contactColumns {
		if pos, exists := col[c]; exists {
			contactPos[c] = pos
		} else {
			contactPos[c] = len(outHeader)
			outHeader = append(outHeader, c)
		}
	}
	if err := writer.Write(outHeader); err != nil {
		return counts, fmt.Errorf("write merged header: %w", err)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return counts, fmt.Errorf("read leads row: %w", err)
		}
		counts.TotalRows++

		outRow := make([]string, len(outHeader))
		copy(outRow, row)

		var leadID string
		if leadIDPos < len(row) {
			leadID = strings.TrimSpace(row[leadIDPos])
		}
		if result, found := lookup[leadID]; found && leadID != "" {
			counts.Matched++
			if result.Email != "" {
				outRow[contactPos["email"]] = result.Email
				counts.WithEmail++
			}
			if result.Phone != "" {
				outRow[contactPos["phone"]] = result.Phone
				counts.WithPhone++
			}
		} else {
			counts.Unmatched++
		}

		if err := writer.Write(outRow); err != nil {
			return counts, fmt.Errorf("write merged row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return counts, fmt.Errorf("flush merged file: %w", err)
	}
	return counts, nil
}

type contactResult struct {
	Email string
	Phone string
}

// loadResults reads the enrichment results keyed by lead_id. A missing
// file yields an empty lookup so the merge degrades to a passthrough.
func loadResults(path string) (map[string]contactResult, error) {
	lookup := make(map[string]contactResult)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lookup, nil
		}
		return nil, fmt.Errorf("open enrichment results: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read results header: %w", err)
	}
	col := indexColumns(header)
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read results row: %w", err)
		}
		id := get(row, "lead_id")
		if id == "" {
			continue
		}
		lookup[id] = contactResult{
			Email: get(row, "email"),
			Phone: get(row, "phone"),
		}
	}
	return lookup, nil
}

func indexColumns(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}
