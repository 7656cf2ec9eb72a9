package models

// Identity is the verified caller identity derived from a bearer token.
// UserID is the token subject and is the ownership key for every record.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}
