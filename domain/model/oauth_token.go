package model

import "time"

// OAuthToken holds a user's YouTube OAuth credentials. A user without a row
// here has no remote client and their bulk actions run in fallback mode.
type OAuthToken struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Platform     string     `json:"platform"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Scopes       string     `json:"scopes"`
	TokenType    *string    `json:"token_type"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
