package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/entity"

	"github.com/pkg/errors"
)

type messengerEvent struct {
	Entry []struct {
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Message *struct {
				Mid        string `json:"mid"`
				Text       string `json:"text"`
				QuickReply *struct {
					Payload string `json:"payload"`
				} `json:"quick_reply"`
			} `json:"message"`
			Postback *struct {
				Payload string `json:"payload"`
			} `json:"postback"`
		} `json:"messaging"`
	} `json:"entry"`
}

// MessengerVerify answers Meta's one-time GET subscription handshake.
func (uc Controller) MessengerVerify(c *web.Context) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")

	if mode != "subscribe" || token != uc.config.MessengerVerifyToken {
		return c.RespondError(web.NewRequestError(errors.New("verify token mismatch"), http.StatusForbidden))
	}

	return c.RespondString(http.StatusOK, "text/plain", c.Query("hub.challenge"))
}

// Messenger handles Meta's POST webhook. Events arrive batched; each one is
// processed independently so a bad event never blocks its batch.
func (uc Controller) Messenger(c *web.Context) error {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "reading body"), http.StatusBadRequest))
	}

	if uc.config.MessengerAppSecret != "" && !validMetaSignature(uc.config.MessengerAppSecret, raw, c.GetHeader("X-Hub-Signature-256")) {
		return c.RespondError(web.NewRequestError(errors.New("invalid meta signature"), http.StatusForbidden))
	}

	var event messengerEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "decoding event"), http.StatusBadRequest))
	}

	for _, entry := range event.Entry {
		for _, m := range entry.Messaging {
			var text, externalID string

			switch {
			case m.Message != nil && m.Message.QuickReply != nil:
				text = payloadToText(m.Message.QuickReply.Payload)
				externalID = m.Message.Mid
			case m.Message != nil:
				text = m.Message.Text
				externalID = m.Message.Mid
			case m.Postback != nil:
				text = payloadToText(m.Postback.Payload)
			default:
				continue
			}

			if uc.dedup.Seen(c.Ctx, entity.PlatformMessenger, externalID) {
				continue
			}

			reply, w := uc.handleInbound(c.Ctx, entity.PlatformMessenger, m.Sender.ID, text, externalID)
			uc.gateway.Reply(c.Ctx, w, entity.PlatformMessenger, m.Sender.ID, reply)
		}
	}

	return c.RespondString(http.StatusOK, "text/plain", "EVENT_RECEIVED")
}

func validMetaSignature(appSecret string, body []byte, header string) bool {
	signature := strings.TrimPrefix(header, "sha256=")

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
