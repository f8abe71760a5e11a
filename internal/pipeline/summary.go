package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Summary is the audit artifact for one pipeline run, written alongside
// the output partitions. Counts are advisory; the partitions themselves
// are the authoritative record.
type Summary struct {
	RunID     string    `json:"run_id"`
	Pipeline  string    `json:"pipeline"`
	InputFile string    `json:"input_file"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`

	TotalRows int `json:"total_rows"`
	Leads     int `json:"leads"`
	Review    int `json:"review"`
	Discarded int `json:"discarded"`
	Enriched  int `json:"enriched,omitempty"`

	OwnerTypes map[string]int `json:"owner_types"`
}

func newSummary(pipeline, inputFile string) *Summary {
	return &Summary{
		RunID:      uuid.New().String(),
		Pipeline:   pipeline,
		InputFile:  filepath.Base(inputFile),
		StartedAt:  time.Now().UTC(),
		OwnerTypes: make(map[string]int),
	}
}

func (s *Summary) finish() {
	s.Duration = time.Since(s.StartedAt).Round(time.Millisecond).String()
}

// Save writes the summary as run_summary.json in the output directory.
func (s *Summary) Save(dir string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	path := filepath.Join(dir, "run_summary.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

// Print writes the human-readable run report to stdout.
func (s *Summary) Print() {
	fmt.Println()
	fmt.Println("=== Run Summary ===")
	fmt.Printf("Run ID:      %s\n", s.RunID)
	fmt.Printf("Pipeline:    %s\n", s.Pipeline)
	fmt.Printf("Input:       %s\n", s.InputFile)
	fmt.Printf("Duration:    %s\n", s.Duration)
	fmt.Println()
	fmt.Printf("Total rows:  %d\n", s.TotalRows)
	fmt.Printf("Leads:       %d\n", s.Leads)
	fmt.Printf("Review:      %d\n", s.Review)
	fmt.Printf("Discarded:   %d\n", s.Discarded)
	if s.Enriched > 0 {
		fmt.Printf("Enriched:    %d\n", s.Enriched)
	}
	if len(s.OwnerTypes) > 0 {
		fmt.Println()
		fmt.Println("=== Owner Types ===")
		names := make([]string, 0, len(s.OwnerTypes))
		for name := range s.OwnerTypes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-12s %d\n", name, s.OwnerTypes[name])
		}
	}
}
