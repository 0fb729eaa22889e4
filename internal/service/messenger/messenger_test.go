package messenger

import (
	"context"
	"testing"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkerStore struct {
	byPhone     map[string]entity.Worker
	byWhatsapp  map[string]entity.Worker
	byTelegram  map[string]entity.Worker
	byMessenger map[string]entity.Worker
}

func lookup(m map[string]entity.Worker, key string) (entity.Worker, error) {
	w, ok := m[key]
	if !ok {
		return entity.Worker{}, postgres.ErrNotFound
	}
	return w, nil
}

func (f *fakeWorkerStore) GetByPhone(ctx context.Context, phone string) (entity.Worker, error) {
	return lookup(f.byPhone, phone)
}

func (f *fakeWorkerStore) GetByWhatsappID(ctx context.Context, id string) (entity.Worker, error) {
	return lookup(f.byWhatsapp, id)
}

func (f *fakeWorkerStore) GetByTelegramID(ctx context.Context, id string) (entity.Worker, error) {
	return lookup(f.byTelegram, id)
}

func (f *fakeWorkerStore) GetByMessengerID(ctx context.Context, id string) (entity.Worker, error) {
	return lookup(f.byMessenger, id)
}

type fakeLogStore struct {
	rows []entity.MessageLog
}

func (f *fakeLogStore) Create(ctx context.Context, detail *entity.MessageLog) error {
	f.rows = append(f.rows, *detail)
	return nil
}

type fakeProvider struct {
	fail  bool
	sends []struct{ to, body string }
}

func (f *fakeProvider) Send(ctx context.Context, to, body string) (string, error) {
	f.sends = append(f.sends, struct{ to, body string }{to, body})
	if f.fail {
		return "", errors.New("provider down")
	}
	return "ext-1", nil
}

func str(s string) *string { return &s }

func testWorker() entity.Worker {
	w := entity.Worker{
		CompanyID:              7,
		FirstName:              str("Maria"),
		Phone:                  str("+15551234567"),
		TelegramID:             str("900100"),
		PreferredCommunication: str(entity.PlatformSms),
	}
	w.ID = 42
	return w
}

func newTestService(logs *fakeLogStore) *Service {
	return NewService(&fakeWorkerStore{}, logs, Addresses{
		SmsNumber:           "+15550001111",
		WhatsappNumber:      "+15550002222",
		TelegramBotUsername: "timeclockbot",
		MessengerPageID:     "123456",
	})
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+15551234567", NormalizePhone(" +1 555 123 4567 "))
	assert.Equal(t, "+15551234567", NormalizePhone("whatsapp:+15551234567"))
	assert.Equal(t, "+15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "15551234567", NormalizePhone("1-555-123-4567"))
}

func TestSendToWorkerPrefersTelegramOverStatedPreference(t *testing.T) {
	logs := &fakeLogStore{}
	s := newTestService(logs)
	telegram := &fakeProvider{}
	sms := &fakeProvider{}
	s.Register(entity.PlatformTelegram, telegram)
	s.Register(entity.PlatformSms, sms)

	s.SendToWorker(context.Background(), testWorker(), "You're clocked in at 2:30 PM.")

	require.Len(t, telegram.sends, 1)
	assert.Equal(t, "900100", telegram.sends[0].to)
	assert.Empty(t, sms.sends)
	require.Len(t, logs.rows, 1)
	assert.Equal(t, entity.PlatformTelegram, logs.rows[0].Platform)
	assert.Equal(t, entity.MessageStatusSent, logs.rows[0].Status)
}

func TestSendToWorkerFallsBackToPreferredChannel(t *testing.T) {
	logs := &fakeLogStore{}
	s := newTestService(logs)
	telegram := &fakeProvider{fail: true}
	whatsapp := &fakeProvider{}
	s.Register(entity.PlatformTelegram, telegram)
	s.Register(entity.PlatformWhatsapp, whatsapp)

	w := testWorker()
	w.PreferredCommunication = str(entity.PlatformWhatsapp)
	w.WhatsappID = str("+15551234567")

	s.SendToWorker(context.Background(), w, "Enjoy your lunch!")

	require.Len(t, telegram.sends, 1)
	require.Len(t, whatsapp.sends, 1)
	assert.Equal(t, "Enjoy your lunch!", whatsapp.sends[0].body)
	require.Len(t, logs.rows, 2)
	assert.Equal(t, entity.MessageStatusFailed, logs.rows[0].Status)
	assert.Equal(t, entity.MessageStatusSent, logs.rows[1].Status)
}

func TestSendToWorkerBackupSmsIsPrefixed(t *testing.T) {
	logs := &fakeLogStore{}
	s := newTestService(logs)
	telegram := &fakeProvider{fail: true}
	sms := &fakeProvider{}
	s.Register(entity.PlatformTelegram, telegram)
	s.Register(entity.PlatformSms, sms)

	w := testWorker()
	w.PreferredCommunication = str(entity.PlatformTelegram)

	s.SendToWorker(context.Background(), w, "You're clocked out.")

	require.Len(t, sms.sends, 1)
	assert.Equal(t, "+15551234567", sms.sends[0].to)
	assert.Equal(t, "[BACKUP] You're clocked out.", sms.sends[0].body)
}

func TestSendToWorkerNoBackupWhenSmsWasPrimary(t *testing.T) {
	logs := &fakeLogStore{}
	s := newTestService(logs)
	sms := &fakeProvider{fail: true}
	s.Register(entity.PlatformSms, sms)

	w := testWorker()
	w.TelegramID = nil

	s.SendToWorker(context.Background(), w, "hello")

	assert.Len(t, sms.sends, 1, "a failed SMS must not trigger a second SMS")
}

func TestResolveInboundWhatsappFallsBackToPhone(t *testing.T) {
	w := testWorker()
	workers := &fakeWorkerStore{
		byPhone:    map[string]entity.Worker{"+15551234567": w},
		byWhatsapp: map[string]entity.Worker{},
	}
	s := NewService(workers, &fakeLogStore{}, Addresses{})

	got, err := s.ResolveInbound(context.Background(), entity.PlatformWhatsapp, "whatsapp:+1 555 123 4567")

	require.NoError(t, err)
	assert.Equal(t, 42, got.ID)
}

func TestResolveInboundUnknownSender(t *testing.T) {
	s := NewService(&fakeWorkerStore{byPhone: map[string]entity.Worker{}}, &fakeLogStore{}, Addresses{})

	_, err := s.ResolveInbound(context.Background(), entity.PlatformSms, "+19998887777")

	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestLogInboundWithoutWorker(t *testing.T) {
	logs := &fakeLogStore{}
	s := newTestService(logs)

	s.LogInbound(context.Background(), nil, entity.PlatformSms, "+19998887777", "1", "SM123")

	require.Len(t, logs.rows, 1)
	row := logs.rows[0]
	assert.Equal(t, entity.DirectionInbound, row.Direction)
	assert.Equal(t, entity.MessageStatusReceived, row.Status)
	assert.Nil(t, row.WorkerID)
	assert.Equal(t, "SM123", *row.ExternalID)
	assert.Equal(t, "+15550001111", *row.ToAddress)
}
