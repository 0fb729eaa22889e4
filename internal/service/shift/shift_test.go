package shift

import (
	"context"
	"testing"
	"time"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/service/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntryStore struct {
	today   *entity.TimeEntry
	created []*entity.TimeEntry
	failAll bool
}

func (f *fakeEntryStore) GetTodayEntry(ctx context.Context, workerID, companyID int, workDay string) (*entity.TimeEntry, error) {
	if f.failAll {
		return nil, assert.AnError
	}
	return f.today, nil
}

func (f *fakeEntryStore) Create(ctx context.Context, detail *entity.TimeEntry) error {
	if f.failAll {
		return assert.AnError
	}
	detail.ID = len(f.created) + 1
	f.created = append(f.created, detail)
	return nil
}

func (f *fakeEntryStore) SetLunchOut(ctx context.Context, id int, t time.Time) error {
	f.today.LunchOut = &t
	return nil
}

func (f *fakeEntryStore) SetLunchIn(ctx context.Context, id int, t time.Time) error {
	f.today.LunchIn = &t
	return nil
}

func (f *fakeEntryStore) SetClockOut(ctx context.Context, id int, t time.Time) error {
	f.today.ClockOut = &t
	return nil
}

type fakeCompanyStore struct {
	company entity.Company
}

func (f *fakeCompanyStore) GetById(ctx context.Context, id int) (entity.Company, error) {
	return f.company, nil
}

type fakeVerificationStore struct {
	created []*entity.LocationVerification
}

func (f *fakeVerificationStore) Create(ctx context.Context, detail *entity.LocationVerification) error {
	detail.ID = len(f.created) + 1
	f.created = append(f.created, detail)
	return nil
}

func newTestService(entries *fakeEntryStore, companies *fakeCompanyStore, verifications *fakeVerificationStore) *Service {
	s := NewService(entries, companies, verifications, "https://clock.example.com")
	s.Now = func() time.Time {
		return time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	}
	return s
}

func testWorker() entity.Worker {
	first := "Maria"
	w := entity.Worker{CompanyID: 7, FirstName: &first}
	w.ID = 42
	return w
}

func openEntry(clockIn time.Time) *entity.TimeEntry {
	e := &entity.TimeEntry{WorkerID: 42, CompanyID: 7, WorkDay: "2025-06-02", ClockIn: clockIn}
	e.ID = 5
	return e
}

func TestDeriveState(t *testing.T) {
	now := time.Now()

	assert.Equal(t, NotClockedIn, Derive(nil))

	e := openEntry(now)
	assert.Equal(t, ClockedIn, Derive(e))

	e.LunchOut = &now
	assert.Equal(t, OnLunch, Derive(e))

	e.LunchIn = &now
	assert.Equal(t, LunchDone, Derive(e))

	e.ClockOut = &now
	assert.Equal(t, NotClockedIn, Derive(e))
}

func TestClockInCreatesEntry(t *testing.T) {
	entries := &fakeEntryStore{}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.ClockIn, entity.PlatformSms, false)

	require.True(t, result.Success)
	require.Len(t, entries.created, 1)
	assert.Equal(t, "2025-06-02", entries.created[0].WorkDay)
	assert.Equal(t, entity.PlatformSms, *entries.created[0].Source)
	assert.Contains(t, result.Message, "2:30 PM")
	assert.Contains(t, result.Message, "Maria")
}

func TestClockInWhileClockedInDoesNotCreateSecondEntry(t *testing.T) {
	entries := &fakeEntryStore{today: openEntry(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.ClockIn, entity.PlatformSms, false)

	assert.False(t, result.Success)
	assert.Empty(t, entries.created)
	assert.Contains(t, result.Message, "already clocked in")
}

func TestClockOutComputesElapsed(t *testing.T) {
	entries := &fakeEntryStore{today: openEntry(time.Date(2025, 6, 2, 6, 15, 0, 0, time.UTC))}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.ClockOut, entity.PlatformTelegram, false)

	require.True(t, result.Success)
	require.NotNil(t, entries.today.ClockOut)
	assert.Contains(t, result.Message, "8 hours 15 minutes")
}

func TestClockOutWithoutOpenShift(t *testing.T) {
	entries := &fakeEntryStore{}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.ClockOut, entity.PlatformSms, false)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "haven't clocked in")
}

func TestClockOutWhileOnLunchClosesShift(t *testing.T) {
	lunchOut := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	entry := openEntry(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	entry.LunchOut = &lunchOut
	entries := &fakeEntryStore{today: entry}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.ClockOut, entity.PlatformSms, false)

	require.True(t, result.Success)
	assert.NotNil(t, entries.today.ClockOut)
	assert.Nil(t, entries.today.LunchIn)
}

func TestLunchToggle(t *testing.T) {
	entry := openEntry(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	entries := &fakeEntryStore{today: entry}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})
	ctx := context.Background()

	first := s.Process(ctx, testWorker(), command.Lunch, entity.PlatformSms, false)
	require.True(t, first.Success)
	require.NotNil(t, entry.LunchOut)
	assert.Contains(t, first.Message, "Lunch started")

	lunchOut := time.Date(2025, 6, 2, 13, 48, 0, 0, time.UTC)
	entry.LunchOut = &lunchOut

	second := s.Process(ctx, testWorker(), command.Lunch, entity.PlatformSms, false)
	require.True(t, second.Success)
	require.NotNil(t, entry.LunchIn)
	assert.Equal(t, lunchOut, *entry.LunchOut)
	assert.Contains(t, second.Message, "42 minutes")
}

func TestThirdLunchRejected(t *testing.T) {
	lunchOut := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	lunchIn := time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC)
	entry := openEntry(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	entry.LunchOut = &lunchOut
	entry.LunchIn = &lunchIn
	entries := &fakeEntryStore{today: entry}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.Lunch, entity.PlatformSms, false)

	assert.False(t, result.Success)
	assert.Equal(t, lunchOut, *entry.LunchOut)
	assert.Equal(t, lunchIn, *entry.LunchIn)
	assert.Contains(t, result.Message, "already taken lunch")
}

func TestLunchBeforeClockIn(t *testing.T) {
	entries := &fakeEntryStore{}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.Lunch, entity.PlatformSms, false)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Clock in first")
}

func TestGeofencedClockInIssuesToken(t *testing.T) {
	lat, lng := 40.0, -74.0
	entries := &fakeEntryStore{}
	verifications := &fakeVerificationStore{}
	companies := &fakeCompanyStore{company: entity.Company{Latitude: &lat, Longitude: &lng}}
	s := newTestService(entries, companies, verifications)

	result := s.Process(context.Background(), testWorker(), command.ClockIn, entity.PlatformTelegram, false)

	require.True(t, result.Success)
	assert.Empty(t, entries.created, "no entry before verification")
	require.Len(t, verifications.created, 1)

	v := verifications.created[0]
	assert.Equal(t, entity.VerificationPending, v.Status)
	assert.Equal(t, entity.PlatformTelegram, v.Platform)
	assert.Len(t, v.Token, 64)
	assert.Equal(t, s.Now().Add(10*time.Minute), v.ExpiresAt)
	assert.Contains(t, result.Message, "https://clock.example.com/verify/"+v.Token)
}

func TestGeofencedClockInBypassed(t *testing.T) {
	lat, lng := 40.0, -74.0
	entries := &fakeEntryStore{}
	verifications := &fakeVerificationStore{}
	companies := &fakeCompanyStore{company: entity.Company{Latitude: &lat, Longitude: &lng}}
	s := newTestService(entries, companies, verifications)

	result := s.Process(context.Background(), testWorker(), command.ClockIn, entity.PlatformTelegram, true)

	require.True(t, result.Success)
	assert.Len(t, entries.created, 1)
	assert.Empty(t, verifications.created)
}

func TestHelpDoesNotTouchState(t *testing.T) {
	entries := &fakeEntryStore{}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.Help, entity.PlatformMessenger, false)

	require.True(t, result.Success)
	assert.Empty(t, entries.created)
	assert.Contains(t, result.Message, "Maria")
}

func TestStoreFailureIsRetryable(t *testing.T) {
	entries := &fakeEntryStore{failAll: true}
	s := newTestService(entries, &fakeCompanyStore{}, &fakeVerificationStore{})

	result := s.Process(context.Background(), testWorker(), command.ClockIn, entity.PlatformSms, false)

	assert.False(t, result.Success)
	assert.Equal(t, genericError.Message, result.Message)
}
