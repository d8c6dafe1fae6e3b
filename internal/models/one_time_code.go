package models

import "time"

// OneTimeCode stores the short-lived verification code sent after signup.
//
// The unique index on Email means a replacement is a single upsert rather
// than a delete-then-insert, so at most one active code can exist per email
// even under concurrent signup/resend requests.
type OneTimeCode struct {
	BaseModel

	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Code      string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}
