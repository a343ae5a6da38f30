package domain

// Identity is the verified caller of a request
type Identity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider"` // "firebase", "jwt" or "bypass"
}
