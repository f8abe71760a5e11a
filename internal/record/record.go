package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/note-leads/internal/schema"
)

// Address holds the split components of a property or mailing address.
type Address struct {
	Line1 string
	City  string
	State string
	Zip   string
}

// Complete reports whether the address is usable for outreach mail.
func (a Address) Complete() bool {
	return a.Line1 != "" && a.City != "" && a.State != "" && a.Zip != ""
}

// Empty reports whether no component is present at all.
func (a Address) Empty() bool {
	return a.Line1 == "" && a.City == "" && a.State == "" && a.Zip == ""
}

// Record is one row's canonical values after coercion. Absent is represented
// by nil (amounts, dates) or the empty string (text), never by a defaulted
// value. Records live only for the duration of a single row's processing.
type Record struct {
	LenderName   string
	BorrowerName string
	OwnerName    string
	DocType      string

	Amount *float64 // loan_amount or total_value depending on pipeline
	Date   *time.Time

	InterestRate *float64
	MaturityDate *time.Time
	LoanTerm     string

	ParcelID string // apn / account_id

	PropertyAddress Address
	MailingAddress  Address

	LandValue        *float64
	ImprovementValue *float64
	PropertyType     string
	AssessedYear     string

	// Notes records per-field coercion gaps for the row's audit text.
	Notes []string
}

// Name returns whichever of the lender/owner name fields is populated.
func (r *Record) Name() string {
	if r.LenderName != "" {
		return r.LenderName
	}
	return r.OwnerName
}

// Normalizer extracts canonical values from raw rows through a column
// mapping. One normalizer is built per input file; the mapping and header
// index are read-only after construction.
type Normalizer struct {
	mapping *schema.Mapping
	index   map[string]int // source column name -> position in row
}

// NewNormalizer builds a normalizer for a file's header and resolved mapping.
func NewNormalizer(mapping *schema.Mapping, header []string) *Normalizer {
	index := make(map[string]int, len(header))
	for i, col := range header {
		if _, exists := index[col]; !exists {
			index[col] = i
		}
	}
	return &Normalizer{mapping: mapping, index: index}
}

// Get returns the raw trimmed cell for a canonical field, or "" when the
// field is unmapped or the row is short.
func (n *Normalizer) Get(row []string, field string) string {
	col, ok := n.mapping.Column(field)
	if !ok {
		return ""
	}
	pos, ok := n.index[col]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

// Normalize coerces one raw row into a Record. Coercion failures degrade to
// absent fields and a note; Normalize itself never fails.
func (n *Normalizer) Normalize(row []string) *Record {
	rec := &Record{}

	rec.LenderName = CleanText(n.Get(row, "lender_name"))
	rec.BorrowerName = CleanText(n.Get(row, "borrower_name"))
	rec.OwnerName = CleanText(n.Get(row, "owner_name"))
	rec.DocType = CleanText(n.Get(row, "doc_type"))
	rec.LoanTerm = CleanText(n.Get(row, "loan_term"))
	rec.PropertyType = CleanText(n.Get(row, "property_type"))
	rec.AssessedYear = CleanText(n.Get(row, "assessed_year"))

	rec.ParcelID = CleanText(n.Get(row, "apn"))
	if rec.ParcelID == "" {
		rec.ParcelID = CleanText(n.Get(row, "account_id"))
	}

	rec.Amount = n.money(row, "loan_amount", rec)
	if rec.Amount == nil {
		rec.Amount = n.money(row, "total_value", rec)
	}
	rec.InterestRate = n.money(row, "interest_rate", rec)
	rec.LandValue = n.money(row, "land_value", rec)
	rec.ImprovementValue = n.money(row, "improvement_value", rec)

	rec.Date = n.date(row, "recording_date", rec)
	rec.MaturityDate = n.date(row, "maturity_date", rec)

	rec.PropertyAddress = Address{
		Line1: CleanText(n.Get(row, "property_address")),
		City:  CleanText(n.Get(row, "property_city")),
		State: CleanText(n.Get(row, "property_state")),
		Zip:   CleanText(n.Get(row, "property_zip")),
	}
	if rec.PropertyAddress.Empty() {
		rec.PropertyAddress = Address{
			Line1: CleanText(n.Get(row, "situs_address")),
			City:  CleanText(n.Get(row, "situs_city")),
			State: CleanText(n.Get(row, "situs_state")),
			Zip:   CleanText(n.Get(row, "situs_zip")),
		}
	}
	rec.MailingAddress = Address{
		Line1: CleanText(n.Get(row, "mailing_address")),
		City:  CleanText(n.Get(row, "mailing_city")),
		State: CleanText(n.Get(row, "mailing_state")),
		Zip:   CleanText(n.Get(row, "mailing_zip")),
	}

	return rec
}

func (n *Normalizer) money(row []string, field string, rec *Record) *float64 {
	raw := n.Get(row, field)
	if raw == "" {
		return nil
	}
	amount := ParseAmount(raw)
	if amount == nil {
		rec.Notes = append(rec.Notes, fmt.Sprintf("unparseable %s: %q", field, raw))
	}
	return amount
}

func (n *Normalizer) date(row []string, field string, rec *Record) *time.Time {
	raw := n.Get(row, field)
	if raw == "" {
		return nil
	}
	date := ParseDate(raw)
	if date == nil {
		rec.Notes = append(rec.Notes, fmt.Sprintf("unparseable %s: %q", field, raw))
	}
	return date
}
