package models

import "time"

// UserToken is one creator's OAuth credential set. Expiries are stored as
// absolute timestamps computed when the grant response arrives.
type UserToken struct {
	OpenID           string    `json:"open_id" db:"open_id" validate:"required"`
	AccessToken      string    `json:"access_token" db:"access_token" validate:"required"`
	RefreshToken     string    `json:"refresh_token" db:"refresh_token" validate:"omitempty"`
	ExpiresAt        time.Time `json:"expires_at" db:"expires_at" validate:"omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at" db:"refresh_expires_at" validate:"omitempty"`
	Scope            string    `json:"scope" db:"scope" validate:"omitempty"`
	TokenType        string    `json:"token_type" db:"token_type" validate:"omitempty"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at" validate:"omitempty"`
}

// Valid reports whether the access token is still usable margin from now.
func (t *UserToken) Valid(margin time.Duration) bool {
	return t.AccessToken != "" && time.Now().Add(margin).Before(t.ExpiresAt)
}

// CanRefresh reports whether the refresh grant is still open.
func (t *UserToken) CanRefresh() bool {
	return t.RefreshToken != "" && time.Now().Before(t.RefreshExpiresAt)
}
