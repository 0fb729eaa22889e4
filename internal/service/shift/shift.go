// Package shift decides what an inbound time command does to the worker's
// day: the state transition, the persisted mutation and the reply text.
package shift

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/service/command"

	"github.com/sirupsen/logrus"
)

// verificationTTL bounds how long a geofence link stays usable.
const verificationTTL = 10 * time.Minute

type EntryStore interface {
	GetTodayEntry(ctx context.Context, workerID, companyID int, workDay string) (*entity.TimeEntry, error)
	Create(ctx context.Context, detail *entity.TimeEntry) error
	SetLunchOut(ctx context.Context, id int, t time.Time) error
	SetLunchIn(ctx context.Context, id int, t time.Time) error
	SetClockOut(ctx context.Context, id int, t time.Time) error
}

type CompanyStore interface {
	GetById(ctx context.Context, id int) (entity.Company, error)
}

type VerificationStore interface {
	Create(ctx context.Context, detail *entity.LocationVerification) error
}

// ProcessResult is what every command handling path returns. Message is plain
// text relayed verbatim by the gateway; formatting is a channel concern.
type ProcessResult struct {
	Success bool
	Message string
}

type Service struct {
	entries       EntryStore
	companies     CompanyStore
	verifications VerificationStore
	baseURL       string

	// Now is swapped out by tests to pin the clock.
	Now func() time.Time
}

func NewService(entries EntryStore, companies CompanyStore, verifications VerificationStore, baseURL string) *Service {
	return &Service{
		entries:       entries,
		companies:     companies,
		verifications: verifications,
		baseURL:       baseURL,
		Now:           time.Now,
	}
}

var genericError = ProcessResult{Success: false, Message: "Something went wrong. Please try again."}

// Process runs one command against the worker's current day. bypassGeofence
// is set by the verification flow once location has been proven; every other
// caller passes false.
func (s *Service) Process(ctx context.Context, w entity.Worker, cmd command.Command, platform string, bypassGeofence bool) ProcessResult {
	now := s.Now().UTC()
	workDay := now.Format("2006-01-02")

	entry, err := s.entries.GetTodayEntry(ctx, w.ID, w.CompanyID, workDay)
	if err != nil {
		logrus.WithError(err).WithField("worker_id", w.ID).Error("loading today's entry")
		return genericError
	}

	state := Derive(entry)

	switch cmd {
	case command.Help:
		return ProcessResult{
			Success: true,
			Message: fmt.Sprintf("Hi %s! Text 1 or IN to clock in, 2 or OUT to clock out, 3 or LUNCH to start and end lunch. Text HELP to see this again.", w.Name()),
		}

	case command.ClockIn:
		return s.clockIn(ctx, w, state, platform, now, workDay, bypassGeofence)

	case command.ClockOut:
		return s.clockOut(ctx, w, entry, state, now)

	case command.Lunch:
		return s.lunch(ctx, w, entry, state, now)
	}

	return ProcessResult{
		Success: false,
		Message: fmt.Sprintf("Sorry %s, I didn't understand that. Text HELP for the list of commands.", w.Name()),
	}
}

func (s *Service) clockIn(ctx context.Context, w entity.Worker, state State, platform string, now time.Time, workDay string, bypassGeofence bool) ProcessResult {
	if state != NotClockedIn {
		return ProcessResult{
			Success: false,
			Message: fmt.Sprintf("You're already clocked in, %s. Text 2 to clock out or 3 for lunch.", w.Name()),
		}
	}

	if !bypassGeofence {
		company, err := s.companies.GetById(ctx, w.CompanyID)
		if err != nil {
			logrus.WithError(err).WithField("company_id", w.CompanyID).Error("loading company")
			return genericError
		}

		if company.Geofenced() {
			return s.issueVerification(ctx, w, platform, now)
		}
	}

	source := platform
	detail := entity.TimeEntry{
		WorkerID:  w.ID,
		CompanyID: w.CompanyID,
		WorkDay:   workDay,
		ClockIn:   now,
		Source:    &source,
	}
	if err := s.entries.Create(ctx, &detail); err != nil {
		logrus.WithError(err).WithField("worker_id", w.ID).Error("creating time entry")
		return genericError
	}

	return ProcessResult{
		Success: true,
		Message: fmt.Sprintf("You're clocked in at %s. Have a good shift, %s!", formatClock(now), w.Name()),
	}
}

func (s *Service) clockOut(ctx context.Context, w entity.Worker, entry *entity.TimeEntry, state State, now time.Time) ProcessResult {
	if state == NotClockedIn {
		return ProcessResult{
			Success: false,
			Message: fmt.Sprintf("You haven't clocked in yet, %s. Text 1 to clock in.", w.Name()),
		}
	}

	// A clock-out while on lunch closes the shift with lunch_in left open;
	// admins see it on the dashboard and correct it.
	if err := s.entries.SetClockOut(ctx, entry.ID, now); err != nil {
		logrus.WithError(err).WithField("entry_id", entry.ID).Error("setting clock out")
		return genericError
	}

	// The confirmation shows raw clock-out minus clock-in; lunch deductions
	// belong to payroll, not this reply.
	return ProcessResult{
		Success: true,
		Message: fmt.Sprintf("You're clocked out at %s. You worked %s today.", formatClock(now), formatElapsed(now.Sub(entry.ClockIn))),
	}
}

func (s *Service) lunch(ctx context.Context, w entity.Worker, entry *entity.TimeEntry, state State, now time.Time) ProcessResult {
	switch state {
	case NotClockedIn:
		return ProcessResult{
			Success: false,
			Message: fmt.Sprintf("Clock in first before taking lunch, %s. Text 1 to clock in.", w.Name()),
		}

	case ClockedIn:
		if err := s.entries.SetLunchOut(ctx, entry.ID, now); err != nil {
			logrus.WithError(err).WithField("entry_id", entry.ID).Error("setting lunch out")
			return genericError
		}
		return ProcessResult{
			Success: true,
			Message: fmt.Sprintf("Lunch started at %s. Text 3 again when you're back.", formatClock(now)),
		}

	case OnLunch:
		if err := s.entries.SetLunchIn(ctx, entry.ID, now); err != nil {
			logrus.WithError(err).WithField("entry_id", entry.ID).Error("setting lunch in")
			return genericError
		}
		minutes := int(math.Round(now.Sub(*entry.LunchOut).Minutes()))
		return ProcessResult{
			Success: true,
			Message: fmt.Sprintf("Welcome back, %s! Your lunch was %d minutes.", w.Name(), minutes),
		}

	default: // LunchDone
		return ProcessResult{
			Success: false,
			Message: fmt.Sprintf("You've already taken lunch today, %s.", w.Name()),
		}
	}
}

func (s *Service) issueVerification(ctx context.Context, w entity.Worker, platform string, now time.Time) ProcessResult {
	detail := entity.LocationVerification{
		Token:     newToken(),
		WorkerID:  w.ID,
		CompanyID: w.CompanyID,
		Platform:  platform,
		Status:    entity.VerificationPending,
		ExpiresAt: now.Add(verificationTTL),
	}
	if err := s.verifications.Create(ctx, &detail); err != nil {
		logrus.WithError(err).WithField("worker_id", w.ID).Error("creating location verification")
		return genericError
	}

	return ProcessResult{
		Success: true,
		Message: fmt.Sprintf("Hi %s! Your company requires location verification to clock in. Open this link on your phone within 10 minutes: %s/verify/%s",
			w.Name(), s.baseURL, detail.Token),
	}
}

// newToken returns a 256-bit random hex token for verification links.
func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func formatClock(t time.Time) string {
	return t.Format("3:04 PM")
}

// formatElapsed renders a duration as whole hours plus rounded minutes.
func formatElapsed(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(math.Round(d.Minutes())) - hours*60
	if minutes == 60 {
		hours++
		minutes = 0
	}
	if hours == 0 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	return fmt.Sprintf("%d hours %d minutes", hours, minutes)
}
