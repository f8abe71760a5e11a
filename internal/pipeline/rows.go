package pipeline

import (
	"fmt"
	"time"

	"github.com/note-leads/internal/classify"
	"github.com/note-leads/internal/output"
	"github.com/note-leads/internal/record"
)

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// splitForOutreach separates a name into person columns and an entity
// column. Entities keep the whole name in company_name; people get
// first/last split for mail-merge templates.
func splitForOutreach(name string, owner classify.OwnerType) (first, last, company string) {
	if owner == classify.OwnerPerson {
		first, last = record.SplitName(name)
		return first, last, ""
	}
	return "", "", name
}

// emailRow builds the outreach row for the email-ready partition. The
// email column stays blank until enrichment results are merged back.
func emailRow(rec *record.Record, res classify.Result, leadID, sourceFile string) output.Row {
	name := rec.Name()
	first, last, company := splitForOutreach(name, res.Owner)

	return output.Row{
		"lead_id":              leadID,
		"first_name":           first,
		"last_name":            last,
		"full_name":            name,
		"email":                "",
		"company_name":         company,
		"owner_type":           string(res.Owner),
		"mailing_address_1":    rec.MailingAddress.Line1,
		"mailing_city":         rec.MailingAddress.City,
		"mailing_state":        rec.MailingAddress.State,
		"mailing_zip":          rec.MailingAddress.Zip,
		"property_address_1":   rec.PropertyAddress.Line1,
		"property_city":        rec.PropertyAddress.City,
		"property_state":       rec.PropertyAddress.State,
		"property_zip":         rec.PropertyAddress.Zip,
		"county":               "",
		"doc_type":             rec.DocType,
		"recording_date":       formatDate(rec.Date),
		"original_loan_amount": formatAmount(rec.Amount),
		"interest_rate":        formatAmount(rec.InterestRate),
		"loan_term_months":     rec.LoanTerm,
		"lien_position":        "",
		"tcad_account_id":      rec.ParcelID,
		"source_file":          sourceFile,
		"lead_score":           fmt.Sprintf("%d", res.Score),
		"why_flagged":          res.WhyFlagged,
	}
}

// mailRow extends an email row with the print-shop columns.
func mailRow(email output.Row, rec *record.Record) output.Row {
	row := make(output.Row, len(email)+4)
	for k, v := range email {
		row[k] = v
	}

	nameLine := email["full_name"]
	if email["company_name"] != "" {
		nameLine = email["company_name"]
	}
	row["mailing_address_2"] = ""
	row["owner_mailing_name_line"] = nameLine
	row["property_owner_occupied_guess"] = occupiedGuess(rec)
	row["equity_estimate"] = ""
	return row
}

// occupiedGuess labels a record by comparing mailing and property
// addresses; either side missing means no determination.
func occupiedGuess(rec *record.Record) string {
	if rec.PropertyAddress.Line1 == "" || rec.MailingAddress.Line1 == "" {
		return "UNKNOWN"
	}
	if record.Absentee(rec.PropertyAddress, rec.MailingAddress) {
		return "ABSENTEE"
	}
	return "OWNER_OCCUPIED"
}

// propertyRow builds the row shared by every property-target partition.
func propertyRow(rec *record.Record, res classify.Result, leadID string) output.Row {
	name := rec.Name()
	_, _, company := splitForOutreach(name, res.Owner)

	return output.Row{
		"lead_id":              leadID,
		"full_name":            name,
		"company_name":         company,
		"owner_type":           string(res.Owner),
		"mailing_address":      rec.MailingAddress.Line1,
		"mailing_city":         rec.MailingAddress.City,
		"mailing_state":        rec.MailingAddress.State,
		"mailing_zip":          rec.MailingAddress.Zip,
		"situs_address":        rec.PropertyAddress.Line1,
		"situs_city":           rec.PropertyAddress.City,
		"situs_state":          rec.PropertyAddress.State,
		"situs_zip":            rec.PropertyAddress.Zip,
		"tcad_account_id":      rec.ParcelID,
		"owner_occupied_guess": occupiedGuess(rec),
		"total_value":          formatAmount(rec.Amount),
		"property_type":        rec.PropertyType,
		"lead_score":           fmt.Sprintf("%d", res.Score),
		"why_flagged":          res.WhyFlagged,
	}
}
