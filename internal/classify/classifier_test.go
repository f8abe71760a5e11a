package classify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/note-leads/internal/config"
	"github.com/note-leads/internal/record"
)

func testOptions() Options {
	return Options{
		Weights:               testWeights(),
		BankKeywords:          config.DefaultBankKeywords,
		GovernmentKeywords:    config.DefaultGovernmentKeywords,
		SellerFinanceKeywords: config.DefaultSellerFinanceKeywords,
		ReleaseKeywords:       config.DefaultReleaseKeywords,
	}
}

func fixedRecorder(opts Options) *Classifier {
	c := NewRecorderClassifier(opts)
	c.scorer.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func fixedProperty(opts Options) *Classifier {
	c := NewPropertyClassifier(opts)
	c.scorer.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func amt(v float64) *float64 { return &v }

func when(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func fullAddress() record.Address {
	return record.Address{Line1: "123 Main St", City: "Austin", State: "TX", Zip: "78701"}
}

func TestClassifySellerFinanceLead(t *testing.T) {
	c := fixedRecorder(testOptions())
	res := c.Classify(&record.Record{
		LenderName:      "JOHN AND MARY SMITH",
		Amount:          amt(45000),
		DocType:         "SELLER FINANCE DEED OF TRUST",
		Date:            when("2018-06-01"),
		MailingAddress:  fullAddress(),
		PropertyAddress: fullAddress(),
	})

	assert.Equal(t, DispositionLead, res.Disposition)
	assert.Equal(t, OwnerPerson, res.Owner)
	assert.Equal(t, 100, res.Score)
	assert.Contains(t, res.WhyFlagged, "owner person")
	assert.Contains(t, res.WhyFlagged, "seller finance doc")
}

func TestClassifyBankLenderDiscarded(t *testing.T) {
	c := fixedRecorder(testOptions())
	res := c.Classify(&record.Record{
		LenderName: "WELLS FARGO BANK N.A.",
		Amount:     amt(200000),
	})

	assert.Equal(t, DispositionDiscard, res.Disposition)
	assert.Equal(t, OwnerBank, res.Owner)
	assert.Contains(t, res.Reason, "institutional lender")
	assert.Zero(t, res.Score)
}

func TestClassifyMissingAmountReviewed(t *testing.T) {
	c := fixedRecorder(testOptions())
	res := c.Classify(&record.Record{
		LenderName: "SMITH FAMILY LLC",
		DocType:    "DEED OF TRUST",
	})

	assert.Equal(t, DispositionReview, res.Disposition)
	assert.Equal(t, OwnerLLC, res.Owner)
	assert.Contains(t, res.Reason, "missing loan amount")
}

func TestDiscardPrecedence(t *testing.T) {
	// A bank lender is discarded even when every lead quality is present.
	c := fixedRecorder(testOptions())
	res := c.Classify(&record.Record{
		LenderName:      "FIRST NATIONAL BANK",
		Amount:          amt(45000),
		DocType:         "SELLER FINANCE DEED OF TRUST",
		Date:            when("2018-06-01"),
		MailingAddress:  fullAddress(),
		PropertyAddress: fullAddress(),
	})
	assert.Equal(t, DispositionDiscard, res.Disposition)
}

func TestClassifyRecorderReviewRules(t *testing.T) {
	tests := []struct {
		name   string
		rec    record.Record
		reason string
	}{
		{
			name:   "amount above maximum",
			rec:    record.Record{LenderName: "SMITH, JOHN", Amount: amt(750000), DocType: "DEED OF TRUST", Date: when("2018-06-01"), MailingAddress: fullAddress()},
			reason: "above maximum",
		},
		{
			name:   "entity without seller finance doc",
			rec:    record.Record{LenderName: "ACME HOLDINGS LLC", Amount: amt(45000), DocType: "ASSIGNMENT", Date: when("2018-06-01"), MailingAddress: fullAddress()},
			reason: "without seller-finance document",
		},
		{
			name:   "unparseable date",
			rec:    record.Record{LenderName: "SMITH, JOHN", Amount: amt(45000), DocType: "DEED OF TRUST", MailingAddress: fullAddress()},
			reason: "recording date",
		},
		{
			name:   "too recent",
			rec:    record.Record{LenderName: "SMITH, JOHN", Amount: amt(45000), DocType: "DEED OF TRUST", Date: when("2025-06-01"), MailingAddress: fullAddress()},
			reason: "too recent",
		},
		{
			name:   "no address at all",
			rec:    record.Record{LenderName: "SMITH, JOHN", Amount: amt(45000), DocType: "DEED OF TRUST", Date: when("2018-06-01")},
			reason: "address",
		},
	}
	c := fixedRecorder(testOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			res := c.Classify(&rec)
			assert.Equal(t, DispositionReview, res.Disposition)
			assert.Contains(t, res.Reason, tt.reason)
		})
	}
}

func TestClassifyRecorderDiscardRules(t *testing.T) {
	tests := []struct {
		name   string
		rec    record.Record
		reason string
	}{
		{
			name:   "release without seller finance",
			rec:    record.Record{LenderName: "SMITH, JOHN", Amount: amt(45000), DocType: "RELEASE OF LIEN"},
			reason: "release/satisfaction",
		},
		{
			name:   "no usable data",
			rec:    record.Record{DocType: "DEED OF TRUST"},
			reason: "missing lender name and loan amount",
		},
		{
			name:   "too old",
			rec:    record.Record{LenderName: "SMITH, JOHN", Amount: amt(45000), DocType: "DEED OF TRUST", Date: when("1995-01-01")},
			reason: "too old",
		},
		{
			name:   "zero amount",
			rec:    record.Record{LenderName: "SMITH, JOHN", Amount: amt(0), DocType: "DEED OF TRUST", Date: when("2018-06-01")},
			reason: "invalid loan amount",
		},
	}
	c := fixedRecorder(testOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			res := c.Classify(&rec)
			assert.Equal(t, DispositionDiscard, res.Disposition)
			assert.Contains(t, res.Reason, tt.reason)
		})
	}
}

func TestClassifyReleaseWithSellerFinanceKept(t *testing.T) {
	// A release keyword alongside a seller-finance keyword is ambiguous,
	// not a clean discard.
	c := fixedRecorder(testOptions())
	res := c.Classify(&record.Record{
		LenderName:     "SMITH, JOHN",
		Amount:         amt(45000),
		DocType:        "PARTIAL RELEASE OF DEED OF TRUST",
		Date:           when("2018-06-01"),
		MailingAddress: fullAddress(),
	})
	assert.NotEqual(t, DispositionDiscard, res.Disposition)
}

func TestClassifyPropertyChain(t *testing.T) {
	opts := testOptions()
	opts.Weights.MinAmount = 150000
	opts.Weights.MaxAmount = 600000
	opts.Weights.IdealMinAmount = 0
	opts.Weights.IdealMaxAmount = 0

	c := fixedProperty(opts)

	mail := record.Address{Line1: "900 Elm Dr", City: "Dallas", State: "TX", Zip: "75201"}

	tests := []struct {
		name string
		rec  record.Record
		want Disposition
	}{
		{name: "qualifying absentee owner", rec: record.Record{OwnerName: "SMITH, JOHN", Amount: amt(300000), PropertyAddress: fullAddress(), MailingAddress: mail}, want: DispositionLead},
		{name: "government owner", rec: record.Record{OwnerName: "SECRETARY OF HUD", Amount: amt(300000), MailingAddress: mail}, want: DispositionDiscard},
		{name: "missing owner", rec: record.Record{Amount: amt(300000), MailingAddress: mail}, want: DispositionDiscard},
		{name: "missing value", rec: record.Record{OwnerName: "SMITH, JOHN", MailingAddress: mail}, want: DispositionReview},
		{name: "value below minimum", rec: record.Record{OwnerName: "SMITH, JOHN", Amount: amt(90000), PropertyAddress: fullAddress(), MailingAddress: mail}, want: DispositionReview},
		{name: "value above maximum", rec: record.Record{OwnerName: "SMITH, JOHN", Amount: amt(900000), PropertyAddress: fullAddress(), MailingAddress: mail}, want: DispositionReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			res := c.Classify(&rec)
			assert.Equal(t, tt.want, res.Disposition)
		})
	}
}

func TestClassifyPropertyAbsenteeOnly(t *testing.T) {
	opts := testOptions()
	opts.Weights.MinAmount = 150000
	opts.Weights.MaxAmount = 600000
	opts.OnlyAbsentee = true
	c := fixedProperty(opts)

	ownerOccupied := record.Record{
		OwnerName:       "SMITH, JOHN",
		Amount:          amt(300000),
		PropertyAddress: fullAddress(),
		MailingAddress:  fullAddress(),
	}
	res := c.Classify(&ownerOccupied)
	assert.Equal(t, DispositionDiscard, res.Disposition)
	assert.Contains(t, res.Reason, "owner occupied")

	absentee := ownerOccupied
	absentee.MailingAddress = record.Address{Line1: "900 Elm Dr", City: "Dallas", State: "TX", Zip: "75201"}
	res = c.Classify(&absentee)
	assert.Equal(t, DispositionLead, res.Disposition)
}

func TestClassificationIsTotal(t *testing.T) {
	// Every combination of present/absent core fields lands in exactly one
	// of the three dispositions; nothing falls through the chain.
	c := fixedRecorder(testOptions())
	names := []string{"", "SMITH, JOHN", "WELLS FARGO BANK N.A.", "ACME HOLDINGS LLC"}
	amounts := []*float64{nil, amt(-5), amt(45000), amt(900000)}
	docs := []string{"", "DEED OF TRUST", "RELEASE OF LIEN"}
	dates := []*time.Time{nil, when("2018-06-01"), when("2025-12-01"), when("1990-01-01")}

	for _, name := range names {
		for _, amount := range amounts {
			for _, doc := range docs {
				for _, date := range dates {
					rec := record.Record{LenderName: name, Amount: amount, DocType: doc, Date: date}
					res := c.Classify(&rec)
					label := fmt.Sprintf("name=%q amount=%v doc=%q date=%v", name, amount, doc, date)
					require.Contains(t, []Disposition{DispositionLead, DispositionReview, DispositionDiscard}, res.Disposition, label)
					assert.GreaterOrEqual(t, res.Score, 0, label)
					assert.LessOrEqual(t, res.Score, 100, label)
				}
			}
		}
	}
}

func TestClassifyReportsFiringRule(t *testing.T) {
	c := fixedRecorder(testOptions())

	tests := []struct {
		name string
		rec  record.Record
		rule string
	}{
		{
			name: "bank lender",
			rec:  record.Record{LenderName: "WELLS FARGO BANK N.A.", Amount: amt(45000), Date: when("2018-06-01")},
			rule: "institutional lender",
		},
		{
			name: "release doc",
			rec:  record.Record{LenderName: "SMITH, JOHN", Amount: amt(45000), DocType: "RELEASE OF LIEN", Date: when("2018-06-01")},
			rule: "release document",
		},
		{
			name: "no amount",
			rec:  record.Record{LenderName: "SMITH, JOHN", DocType: "DEED OF TRUST", Date: when("2018-06-01")},
			rule: "missing amount",
		},
		{
			name: "chain fallthrough",
			rec: record.Record{
				LenderName:     "SMITH, JOHN",
				Amount:         amt(45000),
				DocType:        "SELLER FINANCE DEED OF TRUST",
				Date:           when("2018-06-01"),
				MailingAddress: fullAddress(),
			},
			rule: "lead",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(&tt.rec)
			assert.Equal(t, tt.rule, res.Rule)
		})
	}
}
