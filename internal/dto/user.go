package dto

// SyncUserRequest updates the caller's profile from the client. Identity
// fields come from the verified token, not the body.
type SyncUserRequest struct {
	Name  string `json:"name" binding:"max=100"`
	Phone string `json:"phone" binding:"max=32"`
}

// UserResponse is the outward user representation.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt"`
}
