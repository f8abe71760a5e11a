// Package pipeline wires schema resolution, normalization, classification
// and partitioned output into the two batch runs: recorder (deed) leads
// and property-tax targets. Runs are strictly sequential, one row at a
// time, so memory stays flat regardless of input size.
package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/note-leads/internal/classify"
	"github.com/note-leads/internal/config"
	"github.com/note-leads/internal/debug"
	"github.com/note-leads/internal/enrich"
	"github.com/note-leads/internal/identity"
	"github.com/note-leads/internal/output"
	"github.com/note-leads/internal/record"
	"github.com/note-leads/internal/schema"
)

// MappingFileName is the per-run column mapping audit artifact. Editing
// it and re-supplying it via the mapping option bypasses resolution.
const MappingFileName = "column_mapping.json"

// RecorderOptions configure one recorder-file run.
type RecorderOptions struct {
	InputPath   string
	OutputDir   string
	MappingPath string // optional pre-approved mapping, bypasses the resolver
	EnrichPath  string // optional cleaned appraisal export for enrichment
	Trace       bool
}

func recorderClassifyOptions(cfg *config.Config) classify.Options {
	return classify.Options{
		Weights: classify.Weights{
			Points:         classify.DefaultWeights(),
			MinAmount:      cfg.MinLoanAmount,
			MaxAmount:      cfg.MaxLoanAmount,
			IdealMinAmount: cfg.IdealMinAmount,
			IdealMaxAmount: cfg.IdealMaxAmount,
			MinAgeYears:    int(cfg.MinAgeYears),
			MaxAgeYears:    int(cfg.MaxAgeYears),
		},
		BankKeywords:          cfg.BankKeywords,
		GovernmentKeywords:    cfg.GovernmentKeywords,
		SellerFinanceKeywords: cfg.SellerFinanceKeywords,
		ReleaseKeywords:       cfg.ReleaseKeywords,
	}
}

// RunRecorder classifies a county-recorder export into the email-ready,
// mail-ready, review and discard partitions.
func RunRecorder(cfg *config.Config, opts RecorderOptions) (*Summary, error) {
	done := debug.Timing(opts.Trace, "recorder run")
	defer done()

	in, err := os.Open(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	mapping, err := resolveMapping(schema.RecorderFields(), header, cfg, opts.MappingPath, opts.Trace)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	// Surfaced before the required-field check so a failed resolution
	// still leaves the mapping on disk for inspection.
	if err := mapping.Save(filepath.Join(opts.OutputDir, MappingFileName)); err != nil {
		return nil, err
	}
	if len(mapping.MissingRequired) > 0 {
		return nil, fmt.Errorf("cannot map required fields %v from header %v", mapping.MissingRequired, header)
	}

	joiner, err := enrich.LoadJoiner(opts.EnrichPath)
	if err != nil {
		return nil, err
	}
	if joiner.Len() > 0 {
		fmt.Printf("Loaded %d enrichment records from %s\n", joiner.Len(), opts.EnrichPath)
	}

	writer, err := output.NewPartitionedWriter(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	triage := output.TriageColumns(header)
	for _, p := range []struct {
		name   string
		header []string
	}{
		{output.PartitionEmailReady, output.EmailColumns},
		{output.PartitionMailReady, output.MailColumns},
		{output.PartitionReview, triage},
		{output.PartitionDiscarded, triage},
	} {
		if err := writer.Open(p.name, p.header); err != nil {
			return nil, err
		}
	}

	normalizer := record.NewNormalizer(mapping, header)
	classifier := classify.NewRecorderClassifier(recorderClassifyOptions(cfg))
	summary := newSummary("recorder", opts.InputPath)
	sourceFile := filepath.Base(opts.InputPath)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", summary.TotalRows+1, err)
		}
		summary.TotalRows++

		rec := normalizer.Normalize(row)
		if joiner.Apply(rec) {
			summary.Enriched++
		}
		res := classifier.Classify(rec)
		summary.OwnerTypes[string(res.Owner)]++
		debug.Output(opts.Trace, "row %d: %s via %q", summary.TotalRows, res.Disposition, res.Rule)

		switch res.Disposition {
		case classify.DispositionLead:
			summary.Leads++
			leadID := recorderLeadID(rec)
			email := emailRow(rec, res, leadID, sourceFile)
			if err := writer.Write(output.PartitionEmailReady, email); err != nil {
				return nil, err
			}
			if err := writer.Write(output.PartitionMailReady, mailRow(email, rec)); err != nil {
				return nil, err
			}
		case classify.DispositionReview:
			summary.Review++
			if err := writer.WriteRaw(output.PartitionReview, triageRow(row, len(header), res.Reason)); err != nil {
				return nil, err
			}
		case classify.DispositionDiscard:
			summary.Discarded++
			if err := writer.WriteRaw(output.PartitionDiscarded, triageRow(row, len(header), res.Reason)); err != nil {
				return nil, err
			}
		}

		if cfg.ProgressInterval > 0 && summary.TotalRows%cfg.ProgressInterval == 0 {
			fmt.Printf("  processed %d rows\n", summary.TotalRows)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	summary.finish()
	if err := summary.Save(opts.OutputDir); err != nil {
		return nil, err
	}
	return summary, nil
}

// recorderLeadID keys a deed record for enrichment round-trips. Only the
// mailing zip participates; an absent zip stays absent so the digest never
// varies with non-key fields.
func recorderLeadID(rec *record.Record) string {
	return identity.Key{
		Name:   rec.Name(),
		Zip:    rec.MailingAddress.Zip,
		Amount: rec.Amount,
		Date:   rec.Date,
	}.LeadID()
}

// triageRow pads or trims a raw row to the header width and appends the
// classification reason.
func triageRow(row []string, width int, reason string) []string {
	out := make([]string, width+1)
	copy(out, row)
	out[width] = reason
	return out
}

// resolveMapping loads a pre-approved mapping when given, otherwise runs
// the resolver against the header.
func resolveMapping(fields []schema.Field, header []string, cfg *config.Config, mappingPath string, trace bool) (*schema.Mapping, error) {
	if mappingPath != "" {
		m, err := schema.LoadMapping(mappingPath)
		if err != nil {
			return nil, err
		}
		// Hand-edited mappings get the validation the resolver would have
		// done itself.
		for name := range m.Fields {
			if _, ok := schema.FieldByName(fields, name); !ok {
				return nil, fmt.Errorf("mapping %s binds unknown field %q", mappingPath, name)
			}
		}
		for _, name := range schema.RequiredNames(fields) {
			if _, ok := m.Fields[name]; !ok {
				m.MissingRequired = append(m.MissingRequired, name)
			}
		}
		fmt.Printf("Using column mapping from %s\n", mappingPath)
		return m, nil
	}
	resolver := schema.NewResolver(fields, cfg.FuzzyThreshold)
	resolver.SetTrace(trace)
	return resolver.Resolve(header), nil
}
