package auth

import "time"

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Identity is the authenticated caller of a request. Handlers read it from
// the request and pass it on explicitly.
type Identity struct {
	AdminID string `json:"admin_id"`
	Role    string `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a Admin) Identity() Identity {
	return Identity{AdminID: a.ID, Role: a.Role}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
