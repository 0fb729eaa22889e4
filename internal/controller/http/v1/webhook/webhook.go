// Package webhook receives inbound messages from the channel providers,
// funnels them through the command pipeline and answers in each provider's
// native format.
package webhook

import (
	"context"
	"strings"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres"
	"timeclock/backend/internal/service/command"
	"timeclock/backend/internal/service/messenger"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config carries the per-provider webhook credentials. Empty values disable
// the corresponding signature check, which only local setups should do.
type Config struct {
	TwilioAuthToken      string
	MessengerAppSecret   string
	MessengerVerifyToken string
}

type Controller struct {
	gateway  Gateway
	shift    Shift
	dedup    Deduper
	telegram CallbackAcker
	config   Config
}

func NewController(gateway Gateway, shift Shift, dedup Deduper, telegram CallbackAcker, config Config) *Controller {
	return &Controller{
		gateway:  gateway,
		shift:    shift,
		dedup:    dedup,
		telegram: telegram,
		config:   config,
	}
}

// handleInbound is the shared pipeline behind every channel webhook: resolve
// the sender, log the message, run the command. The returned worker is nil
// for unregistered senders.
func (uc Controller) handleInbound(ctx context.Context, platform, from, body, externalID string) (string, *entity.Worker) {
	w, err := uc.gateway.ResolveInbound(ctx, platform, from)
	if errors.Is(err, postgres.ErrNotFound) {
		uc.gateway.LogInbound(ctx, nil, platform, from, body, externalID)
		return messenger.NotRegisteredReply, nil
	}
	if err != nil {
		logrus.WithError(err).WithField("platform", platform).Error("resolving inbound sender")
		return "Something went wrong. Please try again.", nil
	}

	uc.gateway.LogInbound(ctx, &w, platform, from, body, externalID)

	cmd, _ := command.Parse(body)
	result := uc.shift.Process(ctx, w, cmd, platform, false)

	return result.Message, &w
}

// payloadToText maps structured button payloads to the shared command
// vocabulary before parsing.
func payloadToText(payload string) string {
	switch strings.ToUpper(strings.TrimSpace(payload)) {
	case "CLOCK_IN":
		return "1"
	case "CLOCK_OUT":
		return "2"
	case "LUNCH":
		return "3"
	case "HELP", "GET_STARTED":
		return "help"
	}
	return payload
}
