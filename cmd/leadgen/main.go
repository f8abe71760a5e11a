package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/note-leads/internal/config"
	"github.com/note-leads/internal/enrich"
	"github.com/note-leads/internal/export"
	"github.com/note-leads/internal/pipeline"
	"github.com/note-leads/internal/schema"
	"github.com/note-leads/internal/web"
)

var (
	// Loaded once before any subcommand runs.
	cfg *config.Config

	trace bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leadgen",
		Short: "Seller-finance note lead generation",
		Long:  `Classifies county recorder and property tax exports into outreach-ready lead lists`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			return err
		},
	}
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "enable debug tracing")

	rootCmd.AddCommand(createMapColumnsCmd())
	rootCmd.AddCommand(createFilterCmd())
	rootCmd.AddCommand(createTargetsCmd())
	rootCmd.AddCommand(createParseExportCmd())
	rootCmd.AddCommand(createMergeEnrichmentCmd())
	rootCmd.AddCommand(createServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createMapColumnsCmd creates the dry-run header resolution command.
func createMapColumnsCmd() *cobra.Command {
	var fieldSet string
	var outPath string

	cmd := &cobra.Command{
		Use:   "map-columns [input.csv]",
		Short: "Resolve a file's header against the canonical field set",
		Long:  `Resolves the header without processing any rows, so the mapping can be inspected or hand-edited before a full run`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fields := schema.RecorderFields()
			if fieldSet == "property" {
				fields = schema.PropertyFields()
			}

			header, err := readHeader(args[0])
			if err != nil {
				log.Fatalf("Failed to read header: %v", err)
			}

			resolver := schema.NewResolver(fields, cfg.FuzzyThreshold)
			resolver.SetTrace(trace)
			mapping := resolver.Resolve(header)

			fmt.Printf("Resolved %d of %d columns from %s\n", len(mapping.Fields), len(fields), args[0])
			for name, fm := range mapping.Fields {
				fmt.Printf("  %-20s <- %q (%s)\n", name, fm.Column, fm.Method)
			}
			if !mapping.Complete() {
				fmt.Printf("Missing required fields: %v\n", mapping.MissingRequired)
			}

			if err := mapping.Save(outPath); err != nil {
				log.Fatalf("Failed to save mapping: %v", err)
			}
			fmt.Printf("Mapping written to %s\n", outPath)
		},
	}

	cmd.Flags().StringVar(&fieldSet, "fields", "recorder", "field set to resolve against (recorder or property)")
	cmd.Flags().StringVar(&outPath, "out", "output/column_mapping.json", "where to write the mapping")
	return cmd
}

// createFilterCmd creates the recorder classification command.
func createFilterCmd() *cobra.Command {
	var outDir string
	var mappingPath string
	var enrichPath string

	cmd := &cobra.Command{
		Use:   "filter [recorder.csv]",
		Short: "Classify a county recorder export into note leads",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := pipeline.RunRecorder(cfg, pipeline.RecorderOptions{
				InputPath:   args[0],
				OutputDir:   outDir,
				MappingPath: mappingPath,
				EnrichPath:  enrichPath,
				Trace:       trace,
			})
			if err != nil {
				log.Fatalf("Filter run failed: %v", err)
			}
			summary.Print()
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "output", "output directory")
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "pre-approved column mapping (bypasses resolution)")
	cmd.Flags().StringVar(&enrichPath, "tcad", "", "cleaned appraisal export for enrichment")
	return cmd
}

// createTargetsCmd creates the property-target classification command.
func createTargetsCmd() *cobra.Command {
	var outDir string
	var mappingPath string

	cmd := &cobra.Command{
		Use:   "targets [prop_clean.csv]",
		Short: "Classify a property tax export into outreach targets",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := pipeline.RunTargets(cfg, pipeline.TargetsOptions{
				InputPath:   args[0],
				OutputDir:   outDir,
				MappingPath: mappingPath,
				Trace:       trace,
			})
			if err != nil {
				log.Fatalf("Targets run failed: %v", err)
			}
			summary.Print()
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "output", "output directory")
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "pre-approved column mapping (bypasses resolution)")
	return cmd
}

// createParseExportCmd creates the fixed-width appraisal export parser command.
func createParseExportCmd() *cobra.Command {
	var outDir string
	var isZip bool

	cmd := &cobra.Command{
		Use:   "parse-export [export.zip|PROP.TXT]",
		Short: "Parse a fixed-width appraisal export into prop_clean.csv",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cleanPath := filepath.Join(outDir, "prop_clean.csv")
			errorPath := filepath.Join(outDir, "prop_errors.csv")

			var counts export.Counts
			var err error
			if isZip || filepath.Ext(args[0]) == ".zip" {
				counts, err = export.ParseZip(args[0], cleanPath, errorPath, trace)
			} else {
				counts, err = export.ParseFile(args[0], cleanPath, errorPath, trace)
			}
			if err != nil {
				log.Fatalf("Parse failed: %v", err)
			}

			fmt.Println()
			fmt.Println("=== Parse Summary ===")
			fmt.Printf("Total lines:   %d\n", counts.TotalLines)
			fmt.Printf("Clean records: %d -> %s\n", counts.Clean, cleanPath)
			fmt.Printf("Error records: %d -> %s\n", counts.Errors, errorPath)
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "output", "output directory")
	cmd.Flags().BoolVar(&isZip, "zip", false, "treat input as a ZIP archive")
	return cmd
}

// createMergeEnrichmentCmd creates the contact-results merge command.
func createMergeEnrichmentCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "merge-enrichment [leads.csv] [results.csv]",
		Short: "Merge third-party contact results back into a leads file by lead_id",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if outPath == "" {
				base := filepath.Base(args[0])
				outPath = filepath.Join(filepath.Dir(args[0]), "enriched_"+base)
			}

			counts, err := enrich.MergeResults(args[0], args[1], outPath)
			if err != nil {
				log.Fatalf("Merge failed: %v", err)
			}

			fmt.Println()
			fmt.Println("=== Merge Summary ===")
			fmt.Printf("Total rows: %d\n", counts.TotalRows)
			fmt.Printf("Matched:    %d\n", counts.Matched)
			fmt.Printf("Unmatched:  %d\n", counts.Unmatched)
			fmt.Printf("With email: %d\n", counts.WithEmail)
			fmt.Printf("With phone: %d\n", counts.WithPhone)
			fmt.Printf("Written to %s\n", outPath)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "merged output path (default: enriched_<input> beside the leads file)")
	return cmd
}

// createServeCmd creates the review server command.
func createServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [output-dir]",
		Short: "Serve a read-only review API over a run's output directory",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			server, err := web.NewServer(args[0], addr)
			if err != nil {
				log.Fatalf("Failed to create server: %v", err)
			}
			if err := server.Start(); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}

// readHeader reads just the first row of a CSV file.
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.Read()
}
