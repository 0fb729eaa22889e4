package webhook

import (
	"bytes"
	"encoding/xml"
	"net/http"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/entity"

	"github.com/pkg/errors"
	twilioClient "github.com/twilio/twilio-go/client"
)

const emptyTwiml = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// Sms handles Twilio's inbound SMS webhook. The reply rides back in the
// TwiML response body, so Twilio delivers it without a second API call.
func (uc Controller) Sms(c *web.Context) error {
	return uc.twilioInbound(c, entity.PlatformSms)
}

// Whatsapp handles Twilio's WhatsApp webhook. Same form encoding as SMS,
// plus an optional ButtonPayload for interactive replies.
func (uc Controller) Whatsapp(c *web.Context) error {
	return uc.twilioInbound(c, entity.PlatformWhatsapp)
}

func (uc Controller) twilioInbound(c *web.Context, platform string) error {
	if err := c.Request.ParseForm(); err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "parsing form"), http.StatusBadRequest))
	}

	if uc.config.TwilioAuthToken != "" && !uc.validTwilioSignature(c) {
		return c.RespondError(web.NewRequestError(errors.New("invalid twilio signature"), http.StatusForbidden))
	}

	from := c.Request.PostFormValue("From")
	body := c.Request.PostFormValue("Body")
	sid := c.Request.PostFormValue("MessageSid")

	if platform == entity.PlatformWhatsapp {
		if payload := c.Request.PostFormValue("ButtonPayload"); payload != "" {
			body = payloadToText(payload)
		}
	}

	if uc.dedup.Seen(c.Ctx, platform, sid) {
		return c.RespondString(http.StatusOK, "text/xml", emptyTwiml)
	}

	reply, w := uc.handleInbound(c.Ctx, platform, from, body, sid)

	// Twilio delivers the TwiML body itself, so the outbound leg is logged
	// here rather than by a provider send.
	uc.gateway.LogOutbound(c.Ctx, w, platform, from, reply, entity.MessageStatusSent, "")

	return c.RespondString(http.StatusOK, "text/xml", twiml(reply))
}

func (uc Controller) validTwilioSignature(c *web.Context) bool {
	params := map[string]string{}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	url := "https://" + c.Request.Host + c.Request.RequestURI
	validator := twilioClient.NewRequestValidator(uc.config.TwilioAuthToken)

	return validator.Validate(url, params, c.GetHeader("X-Twilio-Signature"))
}

func twiml(message string) string {
	var escaped bytes.Buffer
	xml.EscapeText(&escaped, []byte(message))

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response><Message>`)
	b.Write(escaped.Bytes())
	b.WriteString(`</Message></Response>`)
	return b.String()
}
