// Package output owns the partitioned CSV streams a pipeline run writes
// into. Each partition has a fixed column set and exactly one append-only
// writer for the life of the run.
package output

import "fmt"

// Recorder pipeline partition names.
const (
	PartitionEmailReady = "note_leads_email_ready"
	PartitionMailReady  = "note_leads_mail_ready"
	PartitionReview     = "review_queue"
	PartitionDiscarded  = "discarded"
)

// Property-target pipeline partition names.
const (
	PartitionTargets        = "property_targets_email_ready"
	PartitionTargetsReview  = "property_targets_review"
	PartitionTargetsDiscard = "property_targets_discarded"
)

// EmailColumns is the outreach column set for email campaigns. The email
// column itself stays blank until enrichment results are merged back.
var EmailColumns = []string{
	"lead_id", "first_name", "last_name", "full_name", "email", "company_name",
	"owner_type", "mailing_address_1", "mailing_city", "mailing_state", "mailing_zip",
	"property_address_1", "property_city", "property_state", "property_zip",
	"county", "doc_type", "recording_date", "original_loan_amount",
	"interest_rate", "loan_term_months", "lien_position", "tcad_account_id",
	"source_file", "lead_score", "why_flagged",
}

// MailColumns extends EmailColumns with the fields a print shop needs.
var MailColumns = append(append([]string(nil), EmailColumns...),
	"mailing_address_2", "owner_mailing_name_line",
	"property_owner_occupied_guess", "equity_estimate",
)

// PropertyColumns is the column set shared by every property-target
// partition, value buckets included.
var PropertyColumns = []string{
	"lead_id", "full_name", "company_name", "owner_type",
	"mailing_address", "mailing_city", "mailing_state", "mailing_zip",
	"situs_address", "situs_city", "situs_state", "situs_zip",
	"tcad_account_id", "owner_occupied_guess", "total_value",
	"property_type", "lead_score", "why_flagged",
}

// TriageColumns appends the classification reason to a file's original
// header for the review and discard partitions.
func TriageColumns(original []string) []string {
	return append(append([]string(nil), original...), "classification_reason")
}

// BucketLabel names the value bucket containing value, in thousands, e.g.
// 340000 with a 100000 width is "300k-400k".
func BucketLabel(value, width float64) string {
	if width <= 0 {
		return "unknown"
	}
	start := int(value/width) * int(width)
	end := start + int(width)
	return fmt.Sprintf("%dk-%dk", start/1000, end/1000)
}

// BucketPartition is the partition name for a value bucket.
func BucketPartition(label string) string {
	return "property_targets_" + label
}
