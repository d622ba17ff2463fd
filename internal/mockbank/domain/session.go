package domain

import "time"

// Session is one signed-in device. The refresh token is only ever stored as
// its fingerprint and is replaced on every refresh.
type Session struct {
	ID               int64
	UserID           string
	RefreshHash      string
	DeviceName       string
	IPAddress        string
	LastActive       time.Time
	RefreshExpiresAt time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
}

// Active reports whether the session can still be used at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.RefreshExpiresAt)
}

// TokenPair is what login and refresh hand back to the member.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry
}
