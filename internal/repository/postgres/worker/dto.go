package worker

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
}

type GetListResponse struct {
	ID                     int     `json:"id"`
	FirstName              *string `json:"first_name"`
	LastName               *string `json:"last_name"`
	Phone                  *string `json:"phone"`
	TelegramID             *string `json:"telegram_id"`
	MessengerID            *string `json:"messenger_id"`
	WhatsappID             *string `json:"whatsapp_id"`
	PreferredCommunication *string `json:"preferred_communication"`
	Active                 *bool   `json:"active"`
}

type CreateRequest struct {
	FirstName              *string `json:"first_name" form:"first_name" validate:"required"`
	LastName               *string `json:"last_name" form:"last_name"`
	Phone                  *string `json:"phone" form:"phone"`
	WhatsappID             *string `json:"whatsapp_id" form:"whatsapp_id"`
	TelegramID             *string `json:"telegram_id" form:"telegram_id"`
	MessengerID            *string `json:"messenger_id" form:"messenger_id"`
	PreferredCommunication *string `json:"preferred_communication" form:"preferred_communication"`
}

type UpdateRequest struct {
	ID                     int     `json:"id" form:"id"`
	FirstName              *string `json:"first_name" form:"first_name"`
	LastName               *string `json:"last_name" form:"last_name"`
	Phone                  *string `json:"phone" form:"phone"`
	WhatsappID             *string `json:"whatsapp_id" form:"whatsapp_id"`
	TelegramID             *string `json:"telegram_id" form:"telegram_id"`
	MessengerID            *string `json:"messenger_id" form:"messenger_id"`
	PreferredCommunication *string `json:"preferred_communication" form:"preferred_communication"`
	Active                 *bool   `json:"active" form:"active"`
}
