package domain

import "time"

// TokenPair is issued at login and refresh. The two tokens are signed with
// independent secrets so leaking one does not compromise the other.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims is the decoded payload of an access or refresh token.
type Claims struct {
	UserID    string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
