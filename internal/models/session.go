package models

import "time"

// Session lifetime constants. A session is renewed (slid forward by
// SessionLifetime from the moment of use) whenever it is validated with
// less than SessionRenewWindow remaining before expiry.
const (
	SessionLifetime    = 24 * time.Hour
	SessionRenewWindow = 72 * time.Hour
)

type Session struct {
	Token     string    `json:"token" gorm:"primaryKey;size:64"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NeedsRenewal reports whether validation at the given instant should slide
// the expiry forward. Expired sessions never renew.
func (s *Session) NeedsRenewal(now time.Time) bool {
	if s.Expired(now) {
		return false
	}
	return s.ExpiresAt.Sub(now) < SessionRenewWindow
}
