package models

// SweepResult aggregates one full run of the expiration-notification sweep.
// Errors holds one human-readable string per failed user; Success is false
// only for run-level failures, not per-user ones.
type SweepResult struct {
	Success        bool     `json:"success"`
	EmailsSent     int      `json:"emailsSent"`
	ErrorCount     int      `json:"errorCount"`
	Errors         []string `json:"errors"`
	ProcessedUsers int      `json:"processedUsers"`
	Message        string   `json:"message"`
}
