// internal/process/job.go
package process

import "github.com/pixbatch/image-inverter/pkg/schema"

// JobStatus represents the lifecycle state of one work item.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Job captures the minimal metadata the runner tracks per item for
// auditing purposes.
type Job struct {
	ID     string
	Kind   string
	Input  string
	Status JobStatus
	Error  string
}

func NewJob(kind, id, input string) *Job {
	return &Job{
		ID:     id,
		Kind:   kind,
		Input:  input,
		Status: JobStatusPending,
	}
}

func MarkRunning(j *Job)   { j.Status = JobStatusRunning }
func MarkSucceeded(j *Job) { j.Status = JobStatusSucceeded }
func MarkFailed(j *Job, err error) {
	j.Status = JobStatusFailed
	if err != nil {
		j.Error = err.Error()
	}
}

// Record converts the job into its wire-level audit record, embedded in
// item results and the run manifest.
func (j *Job) Record() schema.JobRecord {
	return schema.JobRecord{
		ID:     j.ID,
		Kind:   j.Kind,
		Input:  j.Input,
		Status: string(j.Status),
		Error:  j.Error,
	}
}
