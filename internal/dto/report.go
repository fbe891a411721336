package dto

// CreateReportRequest asks for an expiry report export.
type CreateReportRequest struct {
	Format string `json:"format" binding:"required,oneof=csv pdf"`
}

// ReportJobResponse describes the state of an export job. DownloadURL is set
// only once the job has completed.
type ReportJobResponse struct {
	ID          string `json:"id"`
	Format      string `json:"format"`
	Status      string `json:"status"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"createdAt"`
}
