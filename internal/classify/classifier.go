package classify

import (
	"fmt"
	"strings"

	"github.com/note-leads/internal/record"
)

// Disposition is the three-way classification outcome.
type Disposition string

const (
	DispositionLead    Disposition = "LEAD"
	DispositionReview  Disposition = "REVIEW"
	DispositionDiscard Disposition = "DISCARD"
)

// Result is the full classification outcome for one record. Rule names
// the chain entry that fired, for trace output and rule-level tests.
type Result struct {
	Disposition Disposition
	Owner       OwnerType
	Score       int
	Rule        string
	Reason      string
	WhyFlagged  string
	Factors     []Factor
}

// Options carries the thresholds and keyword lists both rule chains
// consume. Keyword lists are open sets supplied by configuration, never
// baked into the rules.
type Options struct {
	Weights Weights

	BankKeywords          []string
	GovernmentKeywords    []string
	SellerFinanceKeywords []string
	ReleaseKeywords       []string

	// OnlyAbsentee discards owner-occupied parcels in the property chain.
	OnlyAbsentee bool
}

// evaluation is the per-row state shared by every rule in a chain. Derived
// once so each rule stays a cheap predicate.
type evaluation struct {
	rec           *record.Record
	name          string
	owner         OwnerType
	sellerFinance bool
	release       bool
	age           *float64
}

// rule is one (predicate, outcome) pair. A nil result means the rule did
// not fire and evaluation moves to the next rule in the chain.
type rule struct {
	name string
	eval func(e *evaluation) *Result
}

// Classifier runs a fixed, ordered rule chain over normalized records.
// DISCARD rules come first, then REVIEW, with LEAD as the fallthrough, so
// precedence is visible in the chain itself.
type Classifier struct {
	opts   Options
	owners *OwnerClassifier
	scorer *Scorer
	chain  []rule
}

// NewRecorderClassifier builds the chain for county-recorder (deed) rows,
// where the name under test is the lender.
func NewRecorderClassifier(opts Options) *Classifier {
	c := &Classifier{
		opts:   opts,
		owners: NewOwnerClassifier(opts.BankKeywords, opts.GovernmentKeywords, false),
		scorer: NewScorer(opts.Weights),
	}
	c.chain = c.recorderChain()
	return c
}

// NewPropertyClassifier builds the chain for property-tax (appraisal) rows,
// where the name under test is the owner and government detection applies.
func NewPropertyClassifier(opts Options) *Classifier {
	c := &Classifier{
		opts:   opts,
		owners: NewOwnerClassifier(opts.BankKeywords, opts.GovernmentKeywords, true),
		scorer: NewScorer(opts.Weights),
	}
	c.chain = c.propertyChain()
	return c
}

// Classify runs the chain. Every record receives exactly one disposition;
// there is no error return because coercion gaps were already absorbed
// into absent fields upstream.
func (c *Classifier) Classify(rec *record.Record) Result {
	e := &evaluation{rec: rec, name: rec.Name()}
	e.owner = c.owners.Classify(e.name)
	e.sellerFinance = matchesAny(rec.DocType, c.opts.SellerFinanceKeywords)
	e.release = matchesAny(rec.DocType, c.opts.ReleaseKeywords)
	if rec.Date != nil {
		age := ageYears(*rec.Date, c.scorer.now())
		e.age = &age
	}

	for _, r := range c.chain {
		if res := r.eval(e); res != nil {
			res.Rule = r.name
			res.Owner = e.owner
			if res.Disposition != DispositionDiscard {
				c.score(e, res)
			}
			return *res
		}
	}

	res := Result{
		Disposition: DispositionLead,
		Owner:       e.owner,
		Rule:        "lead",
		Reason:      "meets all lead criteria",
	}
	c.score(e, &res)
	return res
}

func (c *Classifier) score(e *evaluation, res *Result) {
	score, factors := c.scorer.Score(SignalsFor(e.rec, e.owner, e.sellerFinance))
	res.Score = score
	res.Factors = factors
	res.WhyFlagged = summarize(factors, e.rec.Notes)
}

// summarize joins factor names and coercion notes into the why_flagged
// text, in evaluation order, capped at five entries.
func summarize(factors []Factor, notes []string) string {
	parts := make([]string, 0, len(factors)+len(notes))
	for _, f := range factors {
		parts = append(parts, strings.ReplaceAll(f.Name, "_", " "))
	}
	parts = append(parts, notes...)
	if len(parts) > 5 {
		parts = parts[:5]
	}
	return strings.Join(parts, " + ")
}

func (c *Classifier) recorderChain() []rule {
	w := c.opts.Weights
	return []rule{
		{name: "institutional lender", eval: func(e *evaluation) *Result {
			if e.owner == OwnerBank || e.owner == OwnerGovernment {
				return discard("institutional lender: " + e.name)
			}
			return nil
		}},
		{name: "release document", eval: func(e *evaluation) *Result {
			if e.release && !e.sellerFinance {
				return discard("release/satisfaction document: " + e.rec.DocType)
			}
			return nil
		}},
		{name: "no usable data", eval: func(e *evaluation) *Result {
			if e.name == "" && e.rec.Amount == nil {
				return discard("missing lender name and loan amount")
			}
			return nil
		}},
		{name: "too old", eval: func(e *evaluation) *Result {
			if e.age != nil && *e.age > float64(w.MaxAgeYears) {
				return discard(fmt.Sprintf("recording too old (%.1f years, max %d)", *e.age, w.MaxAgeYears))
			}
			return nil
		}},
		{name: "invalid amount", eval: func(e *evaluation) *Result {
			if e.rec.Amount != nil && *e.rec.Amount <= 0 {
				return discard(fmt.Sprintf("invalid loan amount: %.2f", *e.rec.Amount))
			}
			return nil
		}},
		{name: "missing amount", eval: func(e *evaluation) *Result {
			if e.rec.Amount == nil {
				return review("missing loan amount")
			}
			return nil
		}},
		{name: "amount out of range", eval: func(e *evaluation) *Result {
			switch {
			case *e.rec.Amount < w.MinAmount:
				return review(fmt.Sprintf("loan amount below minimum (%.0f < %.0f)", *e.rec.Amount, w.MinAmount))
			case *e.rec.Amount > w.MaxAmount:
				return review(fmt.Sprintf("loan amount above maximum (%.0f > %.0f)", *e.rec.Amount, w.MaxAmount))
			}
			return nil
		}},
		{name: "entity without seller-finance doc", eval: func(e *evaluation) *Result {
			entity := e.owner == OwnerLLC || e.owner == OwnerTrust || e.owner == OwnerUnknown
			if entity && !e.sellerFinance {
				return review(fmt.Sprintf("%s lender without seller-finance document type", strings.ToLower(string(e.owner))))
			}
			return nil
		}},
		{name: "missing name", eval: func(e *evaluation) *Result {
			if e.name == "" {
				return review("missing lender name")
			}
			return nil
		}},
		{name: "missing date", eval: func(e *evaluation) *Result {
			if e.age == nil {
				return review("missing or unparseable recording date")
			}
			return nil
		}},
		{name: "too recent", eval: func(e *evaluation) *Result {
			if *e.age < float64(w.MinAgeYears) {
				return review(fmt.Sprintf("recording too recent (%.1f years, min %d)", *e.age, w.MinAgeYears))
			}
			return nil
		}},
		{name: "incomplete mailing", eval: func(e *evaluation) *Result {
			if !e.rec.MailingAddress.Complete() && !e.rec.PropertyAddress.Complete() {
				return review("no complete address for outreach")
			}
			return nil
		}},
	}
}

func (c *Classifier) propertyChain() []rule {
	w := c.opts.Weights
	return []rule{
		{name: "institutional owner", eval: func(e *evaluation) *Result {
			if e.owner == OwnerBank || e.owner == OwnerGovernment {
				return discard("institutional lender/owner: " + e.name)
			}
			return nil
		}},
		{name: "missing owner", eval: func(e *evaluation) *Result {
			if e.name == "" {
				return discard("missing owner name")
			}
			return nil
		}},
		{name: "owner occupied", eval: func(e *evaluation) *Result {
			if c.opts.OnlyAbsentee && !record.Absentee(e.rec.PropertyAddress, e.rec.MailingAddress) {
				return discard("owner occupied (absentee-only run)")
			}
			return nil
		}},
		{name: "invalid value", eval: func(e *evaluation) *Result {
			if e.rec.Amount != nil && *e.rec.Amount <= 0 {
				return discard(fmt.Sprintf("invalid total value: %.2f", *e.rec.Amount))
			}
			return nil
		}},
		{name: "missing value", eval: func(e *evaluation) *Result {
			if e.rec.Amount == nil {
				return review("missing total value")
			}
			return nil
		}},
		{name: "value out of range", eval: func(e *evaluation) *Result {
			switch {
			case *e.rec.Amount < w.MinAmount:
				return review(fmt.Sprintf("value below minimum (%.0f < %.0f)", *e.rec.Amount, w.MinAmount))
			case *e.rec.Amount > w.MaxAmount:
				return review(fmt.Sprintf("value above maximum (%.0f > %.0f)", *e.rec.Amount, w.MaxAmount))
			}
			return nil
		}},
		{name: "incomplete mailing", eval: func(e *evaluation) *Result {
			if !e.rec.MailingAddress.Complete() {
				return review("incomplete mailing address")
			}
			return nil
		}},
	}
}

func discard(reason string) *Result {
	return &Result{Disposition: DispositionDiscard, Reason: reason}
}

func review(reason string) *Result {
	return &Result{Disposition: DispositionReview, Reason: reason}
}

// matchesAny reports whether any keyword occurs in the uppercased text.
func matchesAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	upper := strings.ToUpper(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}
