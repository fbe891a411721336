package dto

// ContactRequest is a support-form submission. The service re-validates it
// because submissions can also arrive from non-HTTP entry points.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100" validate:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=255" validate:"required,email,max=255"`
	Subject string `json:"subject" binding:"required,max=200" validate:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000" validate:"required,max=5000"`
}
