package webhook

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/entity"

	"github.com/sirupsen/logrus"
)

type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`

	Message *struct {
		MessageID int64 `json:"message_id"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`

	CallbackQuery *struct {
		ID   string `json:"id"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Message *struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
		Data string `json:"data"`
	} `json:"callback_query"`
}

// Telegram handles Bot API updates: plain messages and inline button
// callbacks. Replies go out through the gateway since Telegram webhooks
// have no synchronous reply body we rely on.
func (uc Controller) Telegram(c *web.Context) error {
	var update telegramUpdate
	if err := c.BindFunc(&update); err != nil {
		return c.RespondError(err)
	}

	var chatID, text, externalID string

	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message != nil {
			chatID = strconv.FormatInt(cb.Message.Chat.ID, 10)
		} else {
			chatID = strconv.FormatInt(cb.From.ID, 10)
		}
		text = payloadToText(cb.Data)
		externalID = "cb:" + cb.ID

		// Ack in the background so a slow Bot API call never delays the 200.
		if uc.telegram != nil {
			go func(id string) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := uc.telegram.AnswerCallbackQuery(ctx, id); err != nil {
					logrus.WithError(err).Warn("answering telegram callback")
				}
			}(cb.ID)
		}

	case update.Message != nil:
		chatID = strconv.FormatInt(update.Message.Chat.ID, 10)
		text = update.Message.Text
		externalID = strconv.FormatInt(update.UpdateID, 10)

	default:
		return c.Respond(map[string]interface{}{"status": true}, http.StatusOK)
	}

	// The /start command doubles as onboarding: greet with the usage help.
	if strings.HasPrefix(text, "/start") || text == "/help" {
		text = "help"
	}

	if uc.dedup.Seen(c.Ctx, entity.PlatformTelegram, externalID) {
		return c.Respond(map[string]interface{}{"status": true}, http.StatusOK)
	}

	reply, w := uc.handleInbound(c.Ctx, entity.PlatformTelegram, chatID, text, externalID)
	uc.gateway.Reply(c.Ctx, w, entity.PlatformTelegram, chatID, reply)

	return c.Respond(map[string]interface{}{"status": true}, http.StatusOK)
}
