package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type VerificationID = uuid.UUID
type AuditID = uuid.UUID
