package dto

// CreateDocumentRequest is the payload for registering a new document.
// ExpiryDate accepts either RFC 3339 or a bare YYYY-MM-DD date.
type CreateDocumentRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	ExpiryDate  string `json:"expiryDate" binding:"omitempty,max=64"`
	Reminders   *bool  `json:"reminders"`
}

// UpdateDocumentRequest carries partial document updates. Nil fields are
// left untouched.
type UpdateDocumentRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ExpiryDate  *string `json:"expiryDate" binding:"omitempty,max=64"`
	Reminders   *bool   `json:"reminders"`
}

// DocumentResponse is the outward document representation.
type DocumentResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	ExpiryDate      string   `json:"expiryDate,omitempty"`
	Reminders       bool     `json:"reminders"`
	FileURLs        []string `json:"fileUrls"`
	IsExpired       *bool    `json:"isExpired,omitempty"`
	DaysUntilExpiry *int     `json:"daysUntilExpiry,omitempty"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

// UploadURLRequest asks for a presigned upload slot for a document file.
type UploadURLRequest struct {
	FileName string `json:"fileName" binding:"required,max=255"`
}

// UploadURLResponse returns the presigned PUT URL and the object name the
// client should confirm after uploading.
type UploadURLResponse struct {
	UploadURL  string `json:"uploadUrl"`
	ObjectName string `json:"objectName"`
}

// AttachFileRequest confirms a completed upload so the object is linked to
// the document.
type AttachFileRequest struct {
	ObjectName string `json:"objectName" binding:"required,max=512"`
}

// DownloadURLResponse returns a presigned GET URL for a stored file.
type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}
