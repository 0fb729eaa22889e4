package entity

import (
	"github.com/uptrace/bun"
)

const (
	PlatformSms       = "sms"
	PlatformWhatsapp  = "whatsapp"
	PlatformTelegram  = "telegram"
	PlatformMessenger = "messenger"
)

type Worker struct {
	bun.BaseModel `bun:"table:workers"`

	BasicEntity
	CompanyID   int     `json:"company_id" bun:"company_id"`
	FirstName   *string `json:"first_name" bun:"first_name"`
	LastName    *string `json:"last_name" bun:"last_name"`
	Phone       *string `json:"phone" bun:"phone"`
	WhatsappID  *string `json:"whatsapp_id" bun:"whatsapp_id"`
	TelegramID  *string `json:"telegram_id" bun:"telegram_id"`
	MessengerID *string `json:"messenger_id" bun:"messenger_id"`

	// PreferredCommunication is one of sms|whatsapp|telegram|messenger.
	PreferredCommunication *string `json:"preferred_communication" bun:"preferred_communication"`
	Active                 *bool   `json:"active" bun:"active"`
}

// Name returns the worker's first name for message personalization, falling
// back to a neutral greeting when the admin left it empty.
func (w Worker) Name() string {
	if w.FirstName != nil && *w.FirstName != "" {
		return *w.FirstName
	}
	return "there"
}
