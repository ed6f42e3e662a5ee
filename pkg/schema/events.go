// pkg/schema/events.go
package schema

// InvertJob asks a worker to invert a single staged image.
type InvertJob struct {
	ID         string `json:"id"`
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path,omitempty"`
	HappenedAt int64  `json:"happened_at"`
}

// ItemStatus is the terminal state of one work item.
type ItemStatus string

const (
	StatusProcessed ItemStatus = "processed"
	StatusSkipped   ItemStatus = "skipped"
	StatusFailed    ItemStatus = "failed"
)

// JobRecord is the audit trail for one item that entered processing.
// Skipped items never start a job and carry no record.
type JobRecord struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Input  string `json:"input"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// InvertResult describes the outcome for one input file.
type InvertResult struct {
	ID          string     `json:"id"`
	InputPath   string     `json:"input_path"`
	OutputPath  string     `json:"output_path,omitempty"`
	Width       int        `json:"width,omitempty"`
	Height      int        `json:"height,omitempty"`
	InputBytes  int64      `json:"input_bytes,omitempty"`
	OutputBytes int64      `json:"output_bytes,omitempty"`
	Status      ItemStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	DurationMs  int64      `json:"duration_ms"`
	Job         *JobRecord `json:"job,omitempty"`
}

// RunDone summarizes a completed batch run.
type RunDone struct {
	RunID      string         `json:"run_id"`
	Total      int            `json:"total"`
	Processed  int            `json:"processed"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	ElapsedMs  int64          `json:"elapsed_ms"`
	Results    []InvertResult `json:"results,omitempty"`
	HappenedAt int64          `json:"happened_at"`
}

// ManifestEntry records one packaged output file.
type ManifestEntry struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// RunManifest is written alongside the dist archive.
type RunManifest struct {
	RunID     string          `json:"run_id"`
	CreatedAt string          `json:"created_at"`
	Entries   []ManifestEntry `json:"entries"`
	Jobs      []JobRecord     `json:"jobs,omitempty"`
}
