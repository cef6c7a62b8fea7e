package domain

import "time"

// BuildInfo records the last known dependency state of a task between build
// sessions: the hash of the report bytes that were integrated and the
// outcome of that integration.
type BuildInfo struct {
	TaskName   string    `json:"task_name,omitzero"`
	ReportHash string    `json:"report_hash,omitzero"`
	Result     string    `json:"result,omitzero"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}
