package entity

import (
	"github.com/uptrace/bun"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"

	MessageStatusReceived = "received"
	MessageStatusSent     = "sent"
	MessageStatusFailed   = "failed"
)

// MessageLog is the append-only record of every message that crossed the
// gateway. Rows are written once and never updated by this service.
type MessageLog struct {
	bun.BaseModel `bun:"table:message_logs"`

	BasicEntity
	CompanyID   *int    `json:"company_id" bun:"company_id"`
	WorkerID    *int    `json:"worker_id" bun:"worker_id"`
	Direction   string  `json:"direction" bun:"direction"`
	Platform    string  `json:"platform" bun:"platform"`
	MessageType string  `json:"message_type" bun:"message_type"`
	ToAddress   *string `json:"to_address" bun:"to_address"`
	FromAddress *string `json:"from_address" bun:"from_address"`
	Body        string  `json:"body" bun:"body"`
	Status      string  `json:"status" bun:"status"`
	ExternalID  *string `json:"external_id" bun:"external_id"`
}
