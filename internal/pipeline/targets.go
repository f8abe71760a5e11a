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
	"github.com/note-leads/internal/identity"
	"github.com/note-leads/internal/output"
	"github.com/note-leads/internal/record"
	"github.com/note-leads/internal/schema"
)

// TargetsOptions configure one property-tax run.
type TargetsOptions struct {
	InputPath   string
	OutputDir   string
	MappingPath string
	Trace       bool
}

func propertyClassifyOptions(cfg *config.Config) classify.Options {
	return classify.Options{
		Weights: classify.Weights{
			Points:      classify.DefaultWeights(),
			MinAmount:   cfg.MinValue,
			MaxAmount:   cfg.MaxValue,
			MinAgeYears: int(cfg.MinAgeYears),
			MaxAgeYears: int(cfg.MaxAgeYears),
		},
		BankKeywords:          cfg.BankKeywords,
		GovernmentKeywords:    cfg.GovernmentKeywords,
		SellerFinanceKeywords: cfg.SellerFinanceKeywords,
		ReleaseKeywords:       cfg.ReleaseKeywords,
		OnlyAbsentee:          cfg.OnlyAbsentee,
	}
}

// RunTargets classifies a property-tax export into target, review and
// discard partitions, plus value-bucket partitions when bucketing is
// enabled. Buckets open lazily so only populated ones exist on disk.
func RunTargets(cfg *config.Config, opts TargetsOptions) (*Summary, error) {
	done := debug.Timing(opts.Trace, "targets run")
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

	mapping, err := resolveMapping(schema.PropertyFields(), header, cfg, opts.MappingPath, opts.Trace)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := mapping.Save(filepath.Join(opts.OutputDir, MappingFileName)); err != nil {
		return nil, err
	}
	if len(mapping.MissingRequired) > 0 {
		return nil, fmt.Errorf("cannot map required fields %v from header %v", mapping.MissingRequired, header)
	}

	writer, err := output.NewPartitionedWriter(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	for _, name := range []string{output.PartitionTargets, output.PartitionTargetsReview, output.PartitionTargetsDiscard} {
		if err := writer.Open(name, output.PropertyColumns); err != nil {
			return nil, err
		}
	}

	normalizer := record.NewNormalizer(mapping, header)
	classifier := classify.NewPropertyClassifier(propertyClassifyOptions(cfg))
	summary := newSummary("property-targets", opts.InputPath)

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
		res := classifier.Classify(rec)
		summary.OwnerTypes[string(res.Owner)]++
		debug.Output(opts.Trace, "row %d: %s via %q", summary.TotalRows, res.Disposition, res.Rule)

		out := propertyRow(rec, res, propertyLeadID(rec))

		switch res.Disposition {
		case classify.DispositionLead:
			summary.Leads++
			if err := writer.Write(output.PartitionTargets, out); err != nil {
				return nil, err
			}
			if cfg.EnableBucketing && rec.Amount != nil {
				bucket := output.BucketPartition(output.BucketLabel(*rec.Amount, cfg.BucketWidth))
				if err := writer.Partition(bucket, output.PropertyColumns); err != nil {
					return nil, err
				}
				if err := writer.Write(bucket, out); err != nil {
					return nil, err
				}
			}
		case classify.DispositionReview:
			summary.Review++
			out["why_flagged"] = res.Reason
			if err := writer.Write(output.PartitionTargetsReview, out); err != nil {
				return nil, err
			}
		case classify.DispositionDiscard:
			summary.Discarded++
			out["why_flagged"] = res.Reason
			if err := writer.Write(output.PartitionTargetsDiscard, out); err != nil {
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

// propertyLeadID keys a parcel record. There is no recording date on tax
// rolls, so the date component stays absent.
func propertyLeadID(rec *record.Record) string {
	return identity.Key{
		Name:   rec.Name(),
		Zip:    rec.MailingAddress.Zip,
		Amount: rec.Amount,
	}.LeadID()
}
