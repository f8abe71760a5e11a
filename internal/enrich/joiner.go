// Package enrich joins secondary datasets onto records: appraisal-district
// rows by account id before classification, and third-party contact
// results by lead_id after.
package enrich

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/note-leads/internal/record"
)

// Entry is one appraisal-district row's enrichment payload.
type Entry struct {
	AccountID      string
	OwnerName      string
	SitusAddress   record.Address
	MailingAddress record.Address
	TotalValue     string
	PropertyType   string
}

// Joiner is an in-memory lookup keyed by normalized account id. A nil
// Joiner is valid and always misses, so callers never branch on presence
// of the secondary dataset.
type Joiner struct {
	entries map[string]Entry
}

// Len reports the number of loaded entries. Nil-safe.
func (j *Joiner) Len() int {
	if j == nil {
		return 0
	}
	return len(j.entries)
}

// Find returns the entry for an account id, if any. Nil-safe; a miss
// never carries an error because the join is best-effort by contract.
func (j *Joiner) Find(accountID string) (Entry, bool) {
	if j == nil {
		return Entry{}, false
	}
	e, ok := j.entries[normalizeKey(accountID)]
	return e, ok
}

// Apply copies enrichment fields onto a record, filling only what the
// record is missing. The record's own values always win.
func (j *Joiner) Apply(rec *record.Record) bool {
	e, ok := j.Find(rec.ParcelID)
	if !ok {
		return false
	}
	if rec.OwnerName == "" {
		rec.OwnerName = e.OwnerName
	}
	if rec.PropertyAddress.Empty() {
		rec.PropertyAddress = e.SitusAddress
	}
	if rec.MailingAddress.Empty() {
		rec.MailingAddress = e.MailingAddress
	}
	if rec.PropertyType == "" {
		rec.PropertyType = e.PropertyType
	}
	return true
}

// LoadJoiner reads a cleaned appraisal export into a lookup. The file is
// optional; a missing path returns a nil Joiner rather than an error.
func LoadJoiner(path string) (*Joiner, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open enrichment file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read enrichment header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	entries := make(map[string]Entry)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read enrichment row: %w", err)
		}
		id := normalizeKey(get(row, "account_id"))
		if id == "" {
			continue
		}
		entries[id] = Entry{
			AccountID: id,
			OwnerName: get(row, "owner_name"),
			SitusAddress: record.Address{
				Line1: get(row, "situs_address"),
				City:  get(row, "situs_city"),
				State: get(row, "situs_state"),
				Zip:   get(row, "situs_zip"),
			},
			MailingAddress: record.Address{
				Line1: get(row, "mailing_address"),
				City:  get(row, "mailing_city"),
				State: get(row, "mailing_state"),
				Zip:   get(row, "mailing_zip"),
			},
			TotalValue:   get(row, "total_value"),
			PropertyType: get(row, "property_type"),
		}
	}
	return &Joiner{entries: entries}, nil
}

func normalizeKey(id string) string {
	return strings.TrimLeft(strings.TrimSpace(id), "0")
}
