package messenger

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSms sends plain SMS through the Twilio messaging API.
type TwilioSms struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSms(accountSID, authToken, from string) *TwilioSms {
	return &TwilioSms{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (t *TwilioSms) Send(ctx context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", errors.Wrap(err, "sending sms via twilio")
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}

// TwilioWhatsapp sends WhatsApp messages through the same Twilio API with the
// whatsapp: address prefix.
type TwilioWhatsapp struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioWhatsapp(accountSID, authToken, from string) *TwilioWhatsapp {
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}
	return &TwilioWhatsapp{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (t *TwilioWhatsapp) Send(ctx context.Context, to, body string) (string, error) {
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", errors.Wrap(err, "sending whatsapp via twilio")
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}
