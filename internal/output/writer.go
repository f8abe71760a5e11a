package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Row is one output record keyed by column name. Columns absent from the
// partition's header are ignored; header columns absent from the row
// write as blank.
type Row map[string]string

// stream is one partition's open file. Rows are flushed as they are
// written so an interrupted run leaves every partition valid up to its
// last completed row.
type stream struct {
	file   *os.File
	writer *csv.Writer
	header []string
}

func (s *stream) write(row Row) error {
	record := make([]string, len(s.header))
	for i, col := range s.header {
		record[i] = row[col]
	}
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *stream) writeRaw(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// PartitionedWriter manages the output directory for one pipeline run.
// Partitions open eagerly via Open or lazily via Partition; either way a
// partition is created at most once and owns its file until Close.
type PartitionedWriter struct {
	dir     string
	streams map[string]*stream
}

// NewPartitionedWriter creates the output directory and an empty writer.
func NewPartitionedWriter(dir string) (*PartitionedWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &PartitionedWriter{dir: dir, streams: make(map[string]*stream)}, nil
}

// Dir returns the output directory.
func (w *PartitionedWriter) Dir() string { return w.dir }

// Open creates a partition and writes its header. Opening an existing
// partition is an error; each partition has exactly one owner.
func (w *PartitionedWriter) Open(name string, header []string) error {
	if _, exists := w.streams[name]; exists {
		return fmt.Errorf("partition %s already open", name)
	}
	path := filepath.Join(w.dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create partition %s: %w", name, err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header for %s: %w", name, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush header for %s: %w", name, err)
	}
	w.streams[name] = &stream{file: f, writer: cw, header: header}
	return nil
}

// Partition returns the named partition, opening it on first use. Lazy
// opening keeps bucket partitions from littering the output directory
// with empty files.
func (w *PartitionedWriter) Partition(name string, header []string) error {
	if _, exists := w.streams[name]; exists {
		return nil
	}
	return w.Open(name, header)
}

// Write appends one row to an open partition.
func (w *PartitionedWriter) Write(name string, row Row) error {
	s, ok := w.streams[name]
	if !ok {
		return fmt.Errorf("partition %s not open", name)
	}
	if err := s.write(row); err != nil {
		return fmt.Errorf("write to partition %s: %w", name, err)
	}
	return nil
}

// WriteRaw appends a positional record, used by the triage partitions
// that carry the source file's original columns.
func (w *PartitionedWriter) WriteRaw(name string, record []string) error {
	s, ok := w.streams[name]
	if !ok {
		return fmt.Errorf("partition %s not open", name)
	}
	if err := s.writeRaw(record); err != nil {
		return fmt.Errorf("write to partition %s: %w", name, err)
	}
	return nil
}

// Close flushes and closes every partition, returning the first error.
func (w *PartitionedWriter) Close() error {
	var firstErr error
	for name, s := range w.streams {
		s.writer.Flush()
		if err := s.writer.Error(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flush partition %s: %w", name, err)
		}
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close partition %s: %w", name, err)
		}
	}
	w.streams = make(map[string]*stream)
	return firstErr
}
