// Package messenger is the outbound gateway and identity resolver for all
// messaging channels. One dispatcher fronts the per-channel providers and
// applies the delivery fallback policy.
package messenger

import (
	"context"
	"strings"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NotRegisteredReply is the terminal reply for senders with no worker record.
const NotRegisteredReply = "This number isn't registered with a company. Please contact your employer to get set up."

// Provider delivers one message over one channel and returns the provider's
// message id when it exposes one.
type Provider interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type WorkerStore interface {
	GetByPhone(ctx context.Context, phone string) (entity.Worker, error)
	GetByWhatsappID(ctx context.Context, id string) (entity.Worker, error)
	GetByTelegramID(ctx context.Context, id string) (entity.Worker, error)
	GetByMessengerID(ctx context.Context, id string) (entity.Worker, error)
}

type LogStore interface {
	Create(ctx context.Context, detail *entity.MessageLog) error
}

// Addresses are our own per-channel identities, recorded as the counterparty
// on logged messages.
type Addresses struct {
	SmsNumber           string
	WhatsappNumber      string
	TelegramBotUsername string
	MessengerPageID     string
}

type Service struct {
	workers   WorkerStore
	logs      LogStore
	providers map[string]Provider
	addresses Addresses
}

func NewService(workers WorkerStore, logs LogStore, addresses Addresses) *Service {
	return &Service{
		workers:   workers,
		logs:      logs,
		providers: map[string]Provider{},
		addresses: addresses,
	}
}

// Register wires the provider for one platform. A platform with no provider
// is skipped during fallback instead of failing the whole send.
func (s *Service) Register(platform string, p Provider) {
	s.providers[platform] = p
}

// NormalizePhone strips whitespace and channel prefixes so the same number
// matches regardless of which provider formatted it.
func NormalizePhone(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "whatsapp:")

	var b strings.Builder
	for i, r := range cleaned {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveInbound maps a sender address on a platform to the worker record.
// Phone-based channels are normalized first; chat-id channels match verbatim.
func (s *Service) ResolveInbound(ctx context.Context, platform, address string) (entity.Worker, error) {
	switch platform {
	case entity.PlatformSms:
		return s.workers.GetByPhone(ctx, NormalizePhone(address))
	case entity.PlatformWhatsapp:
		w, err := s.workers.GetByWhatsappID(ctx, NormalizePhone(address))
		if errors.Is(err, postgres.ErrNotFound) {
			// Workers onboarded by phone only still get matched on WhatsApp.
			return s.workers.GetByPhone(ctx, NormalizePhone(address))
		}
		return w, err
	case entity.PlatformTelegram:
		return s.workers.GetByTelegramID(ctx, address)
	case entity.PlatformMessenger:
		return s.workers.GetByMessengerID(ctx, address)
	default:
		return entity.Worker{}, errors.Errorf("unknown platform: %s", platform)
	}
}

// LogInbound appends the received message to the audit log. Best effort.
func (s *Service) LogInbound(ctx context.Context, w *entity.Worker, platform, from, body, externalID string) {
	detail := entity.MessageLog{
		Direction:   entity.DirectionInbound,
		Platform:    platform,
		MessageType: "text",
		FromAddress: &from,
		Body:        body,
		Status:      entity.MessageStatusReceived,
	}
	if to := s.ownAddress(platform); to != "" {
		detail.ToAddress = &to
	}
	if externalID != "" {
		detail.ExternalID = &externalID
	}
	if w != nil {
		detail.CompanyID = &w.CompanyID
		detail.WorkerID = &w.ID
	}

	if err := s.logs.Create(ctx, &detail); err != nil {
		logrus.WithError(err).WithField("platform", platform).Error("logging inbound message")
	}
}

// LogOutbound appends a sent or failed delivery attempt. Best effort.
func (s *Service) LogOutbound(ctx context.Context, w *entity.Worker, platform, to, body, status, externalID string) {
	detail := entity.MessageLog{
		Direction:   entity.DirectionOutbound,
		Platform:    platform,
		MessageType: "text",
		ToAddress:   &to,
		Body:        body,
		Status:      status,
	}
	if from := s.ownAddress(platform); from != "" {
		detail.FromAddress = &from
	}
	if externalID != "" {
		detail.ExternalID = &externalID
	}
	if w != nil {
		detail.CompanyID = &w.CompanyID
		detail.WorkerID = &w.ID
	}

	if err := s.logs.Create(ctx, &detail); err != nil {
		logrus.WithError(err).WithField("platform", platform).Error("logging outbound message")
	}
}

// SendToWorker delivers a message with the channel fallback policy:
// Telegram whenever the worker has a chat id (it is free), otherwise the
// worker's preferred channel, and a final "[BACKUP]" SMS when the first
// attempt fails and SMS wasn't already tried.
func (s *Service) SendToWorker(ctx context.Context, w entity.Worker, body string) {
	platform, to := s.primaryChannel(w)
	if platform == "" {
		logrus.WithField("worker_id", w.ID).Warn("worker has no reachable channel")
		return
	}

	if s.attempt(ctx, &w, platform, to, body) {
		return
	}

	pref := derefString(w.PreferredCommunication)
	if pref != "" && pref != platform {
		if addr, ok := s.channelAddress(w, pref); ok && s.attempt(ctx, &w, pref, addr, body) {
			return
		}
	}

	if platform != entity.PlatformSms && pref != entity.PlatformSms && w.Phone != nil && *w.Phone != "" {
		s.attempt(ctx, &w, entity.PlatformSms, *w.Phone, "[BACKUP] "+body)
	}
}

// Reply sends on the same channel an inbound message arrived on, with no
// fallback. Used by webhook handlers for channels without a synchronous
// reply body. w is nil for unregistered senders.
func (s *Service) Reply(ctx context.Context, w *entity.Worker, platform, to, body string) {
	s.attempt(ctx, w, platform, to, body)
}

func (s *Service) attempt(ctx context.Context, w *entity.Worker, platform, to, body string) bool {
	provider, ok := s.providers[platform]
	if !ok {
		logrus.WithField("platform", platform).Warn("no provider registered")
		return false
	}

	externalID, err := provider.Send(ctx, to, body)
	if err != nil {
		fields := logrus.Fields{"platform": platform}
		if w != nil {
			fields["worker_id"] = w.ID
		}
		logrus.WithError(err).WithFields(fields).Error("sending message")
		s.LogOutbound(ctx, w, platform, to, body, entity.MessageStatusFailed, "")
		return false
	}

	s.LogOutbound(ctx, w, platform, to, body, entity.MessageStatusSent, externalID)
	return true
}

func (s *Service) primaryChannel(w entity.Worker) (string, string) {
	if w.TelegramID != nil && *w.TelegramID != "" {
		return entity.PlatformTelegram, *w.TelegramID
	}
	if pref := derefString(w.PreferredCommunication); pref != "" {
		if addr, ok := s.channelAddress(w, pref); ok {
			return pref, addr
		}
	}
	if w.Phone != nil && *w.Phone != "" {
		return entity.PlatformSms, *w.Phone
	}
	return "", ""
}

func (s *Service) channelAddress(w entity.Worker, platform string) (string, bool) {
	switch platform {
	case entity.PlatformSms:
		if w.Phone != nil && *w.Phone != "" {
			return *w.Phone, true
		}
	case entity.PlatformWhatsapp:
		if w.WhatsappID != nil && *w.WhatsappID != "" {
			return *w.WhatsappID, true
		}
		if w.Phone != nil && *w.Phone != "" {
			return *w.Phone, true
		}
	case entity.PlatformTelegram:
		if w.TelegramID != nil && *w.TelegramID != "" {
			return *w.TelegramID, true
		}
	case entity.PlatformMessenger:
		if w.MessengerID != nil && *w.MessengerID != "" {
			return *w.MessengerID, true
		}
	}
	return "", false
}

func (s *Service) ownAddress(platform string) string {
	switch platform {
	case entity.PlatformSms:
		return s.addresses.SmsNumber
	case entity.PlatformWhatsapp:
		return s.addresses.WhatsappNumber
	case entity.PlatformTelegram:
		return s.addresses.TelegramBotUsername
	case entity.PlatformMessenger:
		return s.addresses.MessengerPageID
	}
	return ""
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
