package models

import "time"

// TokenResponse is the credential pair handed to a principal after
// register/login. The access token is a signed JWT; the refresh token is an
// opaque secret whose hash lives in the cache layer until revoked or expired.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	TenantID     string    `json:"tenant_id,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest is the exchange payload for a new token pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}
