package classify

import (
	"time"

	"github.com/note-leads/internal/record"
)

// ScoreWeights are the points each positive signal contributes. The
// defaults sum to 100 for an ideal person-owned, seller-financed record
// with a complete mailing address.
type ScoreWeights struct {
	OwnerPerson int
	OwnerLLC    int
	OwnerTrust  int

	AmountIdeal   int // middle half of the configured range
	AmountInRange int

	AgeMidWindow int
	AgeInWindow  int

	CompleteMailing  int
	SellerFinanceDoc int
	Absentee         int
}

// DefaultWeights returns the standard scoring profile.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{
		OwnerPerson:      40,
		OwnerLLC:         25,
		OwnerTrust:       20,
		AmountIdeal:      25,
		AmountInRange:    15,
		AgeMidWindow:     10,
		AgeInWindow:      5,
		CompleteMailing:  10,
		SellerFinanceDoc: 15,
		Absentee:         15,
	}
}

// Factor is one contribution to a record's score, kept in evaluation
// order so the breakdown reads the same way the score was built.
type Factor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Scorer turns a record's signals into a 0-100 score with a breakdown.
type Scorer struct {
	weights Weights
	now     func() time.Time
}

// Weights bundles the point profile with the range and window bounds the
// amount and age factors are judged against. When the ideal sub-range is
// left zero it derives as the middle half of [MinAmount, MaxAmount].
type Weights struct {
	Points ScoreWeights

	MinAmount float64
	MaxAmount float64

	IdealMinAmount float64
	IdealMaxAmount float64

	MinAgeYears int
	MaxAgeYears int
}

func (w Weights) idealRange() (float64, float64) {
	if w.IdealMaxAmount > w.IdealMinAmount && w.IdealMaxAmount > 0 {
		return w.IdealMinAmount, w.IdealMaxAmount
	}
	quarter := (w.MaxAmount - w.MinAmount) / 4
	return w.MinAmount + quarter, w.MaxAmount - quarter
}

// NewScorer builds a scorer. The clock is injectable for tests.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w, now: time.Now}
}

// Signals are the already-derived facts about a record that scoring
// consumes. Classification derives them once and shares them here.
type Signals struct {
	Owner           OwnerType
	Amount          *float64
	Date            *time.Time
	MailingComplete bool
	SellerFinance   bool
	Absentee        bool
}

// Score computes the clamped score and its factor breakdown.
func (s *Scorer) Score(sig Signals) (int, []Factor) {
	var factors []Factor
	add := func(name string, points int) {
		if points != 0 {
			factors = append(factors, Factor{Name: name, Points: points})
		}
	}
	p := s.weights.Points

	switch sig.Owner {
	case OwnerPerson:
		add("owner_person", p.OwnerPerson)
	case OwnerLLC:
		add("owner_llc", p.OwnerLLC)
	case OwnerTrust:
		add("owner_trust", p.OwnerTrust)
	}

	if sig.Amount != nil {
		idealLo, idealHi := s.weights.idealRange()
		switch {
		case *sig.Amount >= idealLo && *sig.Amount <= idealHi:
			add("amount_ideal", p.AmountIdeal)
		case *sig.Amount >= s.weights.MinAmount && *sig.Amount <= s.weights.MaxAmount:
			add("amount_in_range", p.AmountInRange)
		}
	}

	if sig.Date != nil {
		age := ageYears(*sig.Date, s.now())
		minAge, maxAge := float64(s.weights.MinAgeYears), float64(s.weights.MaxAgeYears)
		quarter := (maxAge - minAge) / 4
		switch {
		case age >= minAge+quarter && age <= maxAge-quarter:
			add("age_mid_window", p.AgeMidWindow)
		case age >= minAge && age <= maxAge:
			add("age_in_window", p.AgeInWindow)
		}
	}

	if sig.MailingComplete {
		add("complete_mailing", p.CompleteMailing)
	}
	if sig.SellerFinance {
		add("seller_finance_doc", p.SellerFinanceDoc)
	}
	if sig.Absentee {
		add("absentee_owner", p.Absentee)
	}

	total := 0
	for _, f := range factors {
		total += f.Points
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total, factors
}

// ageYears is the elapsed time from date to now in fractional years.
func ageYears(date, now time.Time) float64 {
	return now.Sub(date).Hours() / (24 * 365.25)
}

// SignalsFor derives scoring signals from a record and its owner type.
func SignalsFor(rec *record.Record, owner OwnerType, sellerFinance bool) Signals {
	return Signals{
		Owner:           owner,
		Amount:          rec.Amount,
		Date:            rec.Date,
		MailingComplete: rec.MailingAddress.Complete(),
		SellerFinance:   sellerFinance,
		Absentee:        record.Absentee(rec.PropertyAddress, rec.MailingAddress),
	}
}
