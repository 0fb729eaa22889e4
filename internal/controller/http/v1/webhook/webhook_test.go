package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres"
	"timeclock/backend/internal/service/command"
	"timeclock/backend/internal/service/messenger"
	"timeclock/backend/internal/service/shift"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	workers  map[string]entity.Worker
	inbound  []entity.MessageLog
	outbound []entity.MessageLog
	replies  []string
}

func (f *fakeGateway) ResolveInbound(ctx context.Context, platform, address string) (entity.Worker, error) {
	w, ok := f.workers[platform+":"+address]
	if !ok {
		return entity.Worker{}, postgres.ErrNotFound
	}
	return w, nil
}

func (f *fakeGateway) LogInbound(ctx context.Context, w *entity.Worker, platform, from, body, externalID string) {
	row := entity.MessageLog{Platform: platform, Body: body, Direction: entity.DirectionInbound}
	if w != nil {
		row.WorkerID = &w.ID
	}
	f.inbound = append(f.inbound, row)
}

func (f *fakeGateway) LogOutbound(ctx context.Context, w *entity.Worker, platform, to, body, status, externalID string) {
	f.outbound = append(f.outbound, entity.MessageLog{Platform: platform, Body: body, Status: status, Direction: entity.DirectionOutbound})
}

func (f *fakeGateway) Reply(ctx context.Context, w *entity.Worker, platform, to, body string) {
	f.replies = append(f.replies, body)
}

type fakeShift struct {
	calls []command.Command
}

func (f *fakeShift) Process(ctx context.Context, w entity.Worker, cmd command.Command, platform string, bypassGeofence bool) shift.ProcessResult {
	f.calls = append(f.calls, cmd)
	return shift.ProcessResult{Success: true, Message: "ok"}
}

type fakeDedup struct {
	seen map[string]bool
}

func (f *fakeDedup) Seen(ctx context.Context, platform, messageID string) bool {
	return f.seen[platform+":"+messageID]
}

func registeredWorker() entity.Worker {
	w := entity.Worker{CompanyID: 7}
	w.ID = 42
	return w
}

func TestHandleInboundRunsCommand(t *testing.T) {
	gateway := &fakeGateway{workers: map[string]entity.Worker{"sms:+15551234567": registeredWorker()}}
	sh := &fakeShift{}
	uc := NewController(gateway, sh, &fakeDedup{}, nil, Config{})

	reply, w := uc.handleInbound(context.Background(), entity.PlatformSms, "+15551234567", "1", "SM1")

	assert.Equal(t, "ok", reply)
	require.NotNil(t, w)
	assert.Equal(t, 42, w.ID)
	assert.Equal(t, []command.Command{command.ClockIn}, sh.calls)
	require.Len(t, gateway.inbound, 1)
	assert.Equal(t, 42, *gateway.inbound[0].WorkerID)
}

func TestHandleInboundUnregisteredSenderStillLogged(t *testing.T) {
	gateway := &fakeGateway{workers: map[string]entity.Worker{}}
	sh := &fakeShift{}
	uc := NewController(gateway, sh, &fakeDedup{}, nil, Config{})

	reply, w := uc.handleInbound(context.Background(), entity.PlatformSms, "+19998887777", "1", "SM1")

	assert.Equal(t, messenger.NotRegisteredReply, reply)
	assert.Nil(t, w)
	assert.Empty(t, sh.calls, "no command must run for unknown senders")
	require.Len(t, gateway.inbound, 1)
	assert.Nil(t, gateway.inbound[0].WorkerID)
}

func TestPayloadToText(t *testing.T) {
	assert.Equal(t, "1", payloadToText("CLOCK_IN"))
	assert.Equal(t, "2", payloadToText("clock_out"))
	assert.Equal(t, "3", payloadToText(" LUNCH "))
	assert.Equal(t, "help", payloadToText("HELP"))
	assert.Equal(t, "help", payloadToText("GET_STARTED"))
	assert.Equal(t, "whatever", payloadToText("whatever"))
}

func TestTwimlEscapesReply(t *testing.T) {
	got := twiml(`You worked 8 hours & 5 minutes <today>`)

	assert.Contains(t, got, "&amp;")
	assert.Contains(t, got, "&lt;today&gt;")
	assert.Contains(t, got, "<Response><Message>")
}

func TestValidMetaSignature(t *testing.T) {
	secret := "app-secret"
	body := []byte(`{"entry":[]}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	header := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.True(t, validMetaSignature(secret, body, header))
	assert.False(t, validMetaSignature(secret, body, "sha256=deadbeef"))
	assert.False(t, validMetaSignature("other", body, header))
}
