package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	Secret          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
}

// User represents a persisted account.
type User struct {
	ID           int64
	Email        string
	Username     string
	DisplayName  string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// NewUser is the insert payload for Repository.Create.
type NewUser struct {
	Email        string
	Username     string
	DisplayName  string
	PasswordHash string
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the signed tokens.
type LoginResponse struct {
	User         UserView `json:"user"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
}

// UserView trims sensitive fields.
type UserView struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	UserID    int64
	Email     string
	TokenType string
	ExpiresAt time.Time
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
