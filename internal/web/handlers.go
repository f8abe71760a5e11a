package web

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// defaultRowLimit caps partition reads; review queues can run to millions
// of rows and this API is for spot checks, not bulk export.
const defaultRowLimit = 100

const maxRowLimit = 10000

// Handler serves the run artifacts from an output directory.
type Handler struct {
	OutputDir string
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSummary returns run_summary.json verbatim.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.serveJSONFile(w, "run_summary.json")
}

// GetMapping returns the column mapping audit artifact verbatim.
func (h *Handler) GetMapping(w http.ResponseWriter, r *http.Request) {
	h.serveJSONFile(w, "column_mapping.json")
}

// PartitionInfo describes one output partition.
type PartitionInfo struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Rows      int    `json:"rows"`
}

// ListPartitions enumerates the run's CSV partitions with row counts.
func (h *Handler) ListPartitions(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.OutputDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	partitions := make([]PartitionInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		rows, err := countRows(filepath.Join(h.OutputDir, entry.Name()))
		if err != nil {
			continue
		}
		partitions = append(partitions, PartitionInfo{
			Name:      strings.TrimSuffix(entry.Name(), ".csv"),
			SizeBytes: info.Size(),
			Rows:      rows,
		})
	}
	writeJSON(w, http.StatusOK, partitions)
}

// PartitionPage is a bounded slice of one partition's rows.
type PartitionPage struct {
	Partition string              `json:"partition"`
	Columns   []string            `json:"columns"`
	Rows      []map[string]string `json:"rows"`
	Truncated bool                `json:"truncated"`
}

// GetPartition returns up to limit rows of a named partition.
func (h *Handler) GetPartition(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	h.servePartition(w, r, name)
}

// GetReviewQueue is a shortcut for the recorder review partition.
func (h *Handler) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	h.servePartition(w, r, "review_queue")
}

func (h *Handler) servePartition(w http.ResponseWriter, r *http.Request, name string) {
	// Partition names never contain separators; reject traversal.
	if name == "" || strings.ContainsAny(name, "/\\.") {
		writeError(w, http.StatusBadRequest, "invalid partition name")
		return
	}
	limit := defaultRowLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRowLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxRowLimit))
			return
		}
		limit = n
	}

	f, err := os.Open(filepath.Join(h.OutputDir, name+".csv"))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "no such partition: "+name)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read partition header: "+err.Error())
		return
	}

	page := PartitionPage{Partition: name, Columns: header, Rows: make([]map[string]string, 0, limit)}
	for len(page.Rows) < limit {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "read partition row: "+err.Error())
			return
		}
		m := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		page.Rows = append(page.Rows, m)
	}
	if _, err := reader.Read(); err == nil {
		page.Truncated = true
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) serveJSONFile(w http.ResponseWriter, name string) {
	data, err := os.ReadFile(filepath.Join(h.OutputDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, name+" not found in output directory")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func countRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	n := -1 // do not count the header
	for {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		n++
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
