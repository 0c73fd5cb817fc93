package domain

import "time"

const (
	AuditAccountCreated = "account.created"
	AuditEmailChanged   = "account.email_changed"
	AuditPasswordChange = "account.password_changed"
	AuditEmailVerified  = "account.email_verified"
	AuditAccountDeleted = "account.deleted"
)

type AuditLog struct {
	ID        AuditID   `gorm:"type:uuid;primaryKey" db:"id"`
	UserID    *UserID   `gorm:"type:uuid;index" db:"user_id"`
	Action    string    `gorm:"type:text;not null" db:"action"`
	Metadata  []byte    `gorm:"type:jsonb" db:"metadata"` // jsonb
	IP        string    `gorm:"type:text" db:"ip"`
	UserAgent string    `gorm:"type:text" db:"user_agent"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
