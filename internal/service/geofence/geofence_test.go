package geofence

import (
	"context"
	"net/http"
	"testing"
	"time"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres"
	"timeclock/backend/internal/service/command"
	"timeclock/backend/internal/service/shift"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerificationStore struct {
	records    map[string]entity.LocationVerification
	statusSets map[int]string
}

func (f *fakeVerificationStore) GetByToken(ctx context.Context, token string) (entity.LocationVerification, error) {
	rec, ok := f.records[token]
	if !ok {
		return entity.LocationVerification{}, postgres.ErrNotFound
	}
	return rec, nil
}

func (f *fakeVerificationStore) SetStatus(ctx context.Context, id int, status string) error {
	if f.statusSets == nil {
		f.statusSets = map[int]string{}
	}
	f.statusSets[id] = status
	return nil
}

type fakeCompanyStore struct {
	company entity.Company
}

func (f *fakeCompanyStore) GetById(ctx context.Context, id int) (entity.Company, error) {
	return f.company, nil
}

type fakeWorkerStore struct {
	worker entity.Worker
}

func (f *fakeWorkerStore) GetById(ctx context.Context, id int) (entity.Worker, error) {
	return f.worker, nil
}

type fakeClocker struct {
	calls  int
	bypass bool
	result shift.ProcessResult
}

func (f *fakeClocker) Process(ctx context.Context, w entity.Worker, cmd command.Command, platform string, bypassGeofence bool) shift.ProcessResult {
	f.calls++
	f.bypass = bypassGeofence
	return f.result
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) SendToWorker(ctx context.Context, w entity.Worker, body string) {
	f.sent = append(f.sent, body)
}

var testNow = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

func pendingVerification(token string) entity.LocationVerification {
	v := entity.LocationVerification{
		Token:     token,
		WorkerID:  42,
		CompanyID: 7,
		Platform:  entity.PlatformTelegram,
		Status:    entity.VerificationPending,
		ExpiresAt: testNow.Add(5 * time.Minute),
	}
	v.ID = 11
	return v
}

func geofencedCompany(radius *float64) entity.Company {
	lat, lng := 40.0, -74.0
	return entity.Company{Latitude: &lat, Longitude: &lng, GeofenceRadius: radius}
}

func newTestService(verifications *fakeVerificationStore, companies *fakeCompanyStore, clocker *fakeClocker, notifier *fakeNotifier) *Service {
	s := NewService(verifications, companies, &fakeWorkerStore{worker: entity.Worker{CompanyID: 7}}, clocker, notifier, Links{
		TelegramBotUsername: "timeclockbot",
		MessengerPageID:     "123456",
		SmsNumber:           "+15550001111",
		WhatsappNumber:      "whatsapp:+15550002222",
	})
	s.Now = func() time.Time { return testNow }
	return s
}

func TestDistanceZeroAtSamePoint(t *testing.T) {
	assert.InDelta(t, 0, Distance(40.0, -74.0, 40.0, -74.0), 0.0001)
}

func TestDistanceKnownPair(t *testing.T) {
	// One degree of latitude is roughly 111 km.
	d := Distance(40.0, -74.0, 41.0, -74.0)
	assert.InDelta(t, 111195, d, 200)
}

func TestVerifyInvalidToken(t *testing.T) {
	s := newTestService(&fakeVerificationStore{records: map[string]entity.LocationVerification{}},
		&fakeCompanyStore{company: geofencedCompany(nil)}, &fakeClocker{}, &fakeNotifier{})

	_, err := s.Verify(context.Background(), "nope", 40.0, -74.0)

	require.Error(t, err)
	webErr, ok := web.IsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, webErr.Status)
}

func TestVerifyExpiredTokenRejectedEvenWhenOnSite(t *testing.T) {
	v := pendingVerification("tok")
	v.ExpiresAt = testNow.Add(-time.Minute)
	store := &fakeVerificationStore{records: map[string]entity.LocationVerification{"tok": v}}
	clocker := &fakeClocker{result: shift.ProcessResult{Success: true}}
	s := newTestService(store, &fakeCompanyStore{company: geofencedCompany(nil)}, clocker, &fakeNotifier{})

	_, err := s.Verify(context.Background(), "tok", 40.0, -74.0)

	require.Error(t, err)
	webErr, _ := web.IsRequestError(err)
	assert.Equal(t, http.StatusGone, webErr.Status)
	assert.Zero(t, clocker.calls)
}

func TestVerifyUsedTokenRejected(t *testing.T) {
	v := pendingVerification("tok")
	v.Status = entity.VerificationVerified
	store := &fakeVerificationStore{records: map[string]entity.LocationVerification{"tok": v}}
	s := newTestService(store, &fakeCompanyStore{company: geofencedCompany(nil)}, &fakeClocker{}, &fakeNotifier{})

	_, err := s.Verify(context.Background(), "tok", 40.0, -74.0)

	require.Error(t, err)
	webErr, _ := web.IsRequestError(err)
	assert.Equal(t, http.StatusConflict, webErr.Status)
	assert.Contains(t, webErr.Err.Error(), "already used")
}

func TestVerifyMisconfiguredCompanyFailsClosed(t *testing.T) {
	store := &fakeVerificationStore{records: map[string]entity.LocationVerification{"tok": pendingVerification("tok")}}
	s := newTestService(store, &fakeCompanyStore{company: entity.Company{}}, &fakeClocker{}, &fakeNotifier{})

	_, err := s.Verify(context.Background(), "tok", 40.0, -74.0)

	require.Error(t, err)
	webErr, _ := web.IsRequestError(err)
	assert.Equal(t, http.StatusInternalServerError, webErr.Status)
}

func TestVerifyTooFarLeavesTokenRetryable(t *testing.T) {
	radius := 50.0
	store := &fakeVerificationStore{records: map[string]entity.LocationVerification{"tok": pendingVerification("tok")}}
	clocker := &fakeClocker{result: shift.ProcessResult{Success: true}}
	s := newTestService(store, &fakeCompanyStore{company: geofencedCompany(&radius)}, clocker, &fakeNotifier{})

	// ~1.1 km north of the job site.
	result, err := s.Verify(context.Background(), "tok", 40.01, -74.0)

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.OverageMeters)
	assert.InDelta(t, 1062, *result.OverageMeters, 10)
	assert.Zero(t, clocker.calls)
	assert.Empty(t, store.statusSets, "token must stay pending")
}

func TestVerifySuccess(t *testing.T) {
	store := &fakeVerificationStore{records: map[string]entity.LocationVerification{"tok": pendingVerification("tok")}}
	clocker := &fakeClocker{result: shift.ProcessResult{Success: true, Message: "You're clocked in at 2:30 PM."}}
	notifier := &fakeNotifier{}
	s := newTestService(store, &fakeCompanyStore{company: geofencedCompany(nil)}, clocker, notifier)

	result, err := s.Verify(context.Background(), "tok", 40.0, -74.0)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, clocker.bypass, "clock-in must bypass the geofence re-check")
	assert.Equal(t, entity.VerificationVerified, store.statusSets[11])
	assert.Equal(t, []string{"You're clocked in at 2:30 PM."}, notifier.sent)
	assert.Equal(t, "https://t.me/timeclockbot", result.ReturnLink)
}

func TestVerifyDefaultRadiusApplied(t *testing.T) {
	store := &fakeVerificationStore{records: map[string]entity.LocationVerification{"tok": pendingVerification("tok")}}
	clocker := &fakeClocker{result: shift.ProcessResult{Success: true}}
	s := newTestService(store, &fakeCompanyStore{company: geofencedCompany(nil)}, clocker, &fakeNotifier{})

	// ~110 m away: outside the 50 m default but inside any lax radius.
	result, err := s.Verify(context.Background(), "tok", 40.001, -74.0)

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.OverageMeters)
	assert.InDelta(t, 61, *result.OverageMeters, 5)
}
