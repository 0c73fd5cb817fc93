package domain

import "time"

// Verification is the pending one-time code proving control of a user's email.
// A user owns at most one row (ux_verifications_user).
type Verification struct {
	ID        VerificationID `gorm:"type:uuid;primaryKey" db:"id"`
	Code      string         `gorm:"type:text;not null;uniqueIndex:ux_verifications_code" db:"code"`
	UserID    UserID         `gorm:"type:uuid;not null;uniqueIndex:ux_verifications_user" db:"user_id"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" db:"-"`
	CreatedAt time.Time      `gorm:"not null" db:"created_at"`
}

func (Verification) TableName() string { return "verifications" }
