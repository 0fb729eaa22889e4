package entity

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"
	VerificationExpired  = "expired"
)

// LocationVerification is the ephemeral token record behind a geofenced
// clock-in. Created pending, consumed exactly once, never revived.
type LocationVerification struct {
	bun.BaseModel `bun:"table:location_verifications"`

	BasicEntity
	Token     string    `json:"-" bun:"token"`
	WorkerID  int       `json:"worker_id" bun:"worker_id"`
	CompanyID int       `json:"company_id" bun:"company_id"`
	Platform  string    `json:"platform" bun:"platform"`
	Status    string    `json:"status" bun:"status"`
	ExpiresAt time.Time `json:"expires_at" bun:"expires_at"`
}

// Expired checks the TTL at read time. Expired rows are rejected even when no
// sweeper has touched them yet.
func (v LocationVerification) Expired(now time.Time) bool {
	return v.ExpiresAt.Before(now)
}
