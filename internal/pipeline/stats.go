package pipeline

import (
	"time"

	"github.com/pixbatch/image-inverter/pkg/schema"
)

// RunStats tracks aggregate counters and per-item results across one
// batch run.
type RunStats struct {
	RunID            string
	Total            int
	Processed        int
	Skipped          int
	Failed           int
	TotalInputBytes  int64
	TotalOutputBytes int64
	Elapsed          time.Duration
	Results          []schema.InvertResult
}

// Done converts the stats into the wire-level run summary.
func (s *RunStats) Done() schema.RunDone {
	return schema.RunDone{
		RunID:      s.RunID,
		Total:      s.Total,
		Processed:  s.Processed,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
		ElapsedMs:  s.Elapsed.Milliseconds(),
		Results:    s.Results,
		HappenedAt: time.Now().Unix(),
	}
}
