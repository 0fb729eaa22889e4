// Package geofence completes a pending geofenced clock-in once the worker
// proves their location through the verification link.
package geofence

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres"
	"timeclock/backend/internal/service/command"
	"timeclock/backend/internal/service/shift"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultRadius in meters applies when a company configured a job site but no
// explicit geofence radius.
const DefaultRadius = 50.0

type VerificationStore interface {
	GetByToken(ctx context.Context, token string) (entity.LocationVerification, error)
	SetStatus(ctx context.Context, id int, status string) error
}

type CompanyStore interface {
	GetById(ctx context.Context, id int) (entity.Company, error)
}

type WorkerStore interface {
	GetById(ctx context.Context, id int) (entity.Worker, error)
}

// Clocker is the slice of the shift service the verification flow needs.
type Clocker interface {
	Process(ctx context.Context, w entity.Worker, cmd command.Command, platform string, bypassGeofence bool) shift.ProcessResult
}

// Notifier delivers the clock-in confirmation back over messaging. Best
// effort: a send failure never undoes the completed clock-in.
type Notifier interface {
	SendToWorker(ctx context.Context, w entity.Worker, body string)
}

// Links holds the per-channel addresses used to build "return to your app"
// deep links after verification.
type Links struct {
	TelegramBotUsername string
	MessengerPageID     string
	SmsNumber           string
	WhatsappNumber      string
}

type Result struct {
	Success    bool
	Message    string
	ReturnLink string

	// OverageMeters is set only on a distance rejection.
	OverageMeters *int
}

type Service struct {
	verifications VerificationStore
	companies     CompanyStore
	workers       WorkerStore
	clocker       Clocker
	notifier      Notifier
	links         Links

	Now func() time.Time
}

func NewService(verifications VerificationStore, companies CompanyStore, workers WorkerStore, clocker Clocker, notifier Notifier, links Links) *Service {
	return &Service{
		verifications: verifications,
		companies:     companies,
		workers:       workers,
		clocker:       clocker,
		notifier:      notifier,
		links:         links,
		Now:           time.Now,
	}
}

// Verify checks the token and the supplied coordinates and, when both pass,
// performs the deferred clock-in. A distance rejection leaves the token
// pending so the worker can walk closer and retry the same link until it
// expires.
func (s *Service) Verify(ctx context.Context, token string, lat, lng float64) (Result, error) {
	detail, err := s.verifications.GetByToken(ctx, token)
	if errors.Is(err, postgres.ErrNotFound) {
		return Result{}, web.NewRequestError(errors.New("invalid token"), http.StatusNotFound)
	}
	if err != nil {
		return Result{}, web.NewRequestError(errors.Wrap(err, "loading verification"), http.StatusInternalServerError)
	}

	if detail.Expired(s.Now()) {
		return Result{}, web.NewRequestError(errors.New("link expired, request a new one by texting 1 again"), http.StatusGone)
	}

	if detail.Status != entity.VerificationPending {
		return Result{}, web.NewRequestError(errors.New("link already used"), http.StatusConflict)
	}

	company, err := s.companies.GetById(ctx, detail.CompanyID)
	if err != nil {
		return Result{}, web.NewRequestError(errors.Wrap(err, "loading company"), http.StatusInternalServerError)
	}

	// A verification token without a job site means the company row was
	// edited after the token was issued. Fail closed rather than allow an
	// unconstrained clock-in.
	if !company.Geofenced() {
		return Result{}, web.NewRequestError(errors.New("company job site is not configured"), http.StatusInternalServerError)
	}

	radius := DefaultRadius
	if company.GeofenceRadius != nil && *company.GeofenceRadius > 0 {
		radius = *company.GeofenceRadius
	}

	distance := Distance(lat, lng, *company.Latitude, *company.Longitude)
	if distance > radius {
		overage := int(math.Round(distance - radius))
		return Result{
			Success:       false,
			Message:       "You're not close enough to the job site yet. Walk closer and open the link again.",
			OverageMeters: &overage,
			ReturnLink:    s.returnLink(detail.Platform),
		}, nil
	}

	w, err := s.workers.GetById(ctx, detail.WorkerID)
	if err != nil {
		return Result{}, web.NewRequestError(errors.Wrap(err, "loading worker"), http.StatusInternalServerError)
	}

	processed := s.clocker.Process(ctx, w, command.ClockIn, detail.Platform, true)
	if !processed.Success {
		return Result{}, web.NewRequestError(errors.New(processed.Message), http.StatusConflict)
	}

	if err := s.verifications.SetStatus(ctx, detail.ID, entity.VerificationVerified); err != nil {
		// The clock-in already happened; a second consume attempt will be
		// refused by the status guard, so only log here.
		logrus.WithError(err).WithField("verification_id", detail.ID).Error("marking verification verified")
	}

	s.notifier.SendToWorker(ctx, w, processed.Message)

	return Result{
		Success:    true,
		Message:    processed.Message,
		ReturnLink: s.returnLink(detail.Platform),
	}, nil
}

func (s *Service) returnLink(platform string) string {
	switch platform {
	case entity.PlatformTelegram:
		return "https://t.me/" + s.links.TelegramBotUsername
	case entity.PlatformMessenger:
		return "https://m.me/" + s.links.MessengerPageID
	case entity.PlatformWhatsapp:
		return "https://wa.me/" + strings.TrimLeft(strings.TrimPrefix(s.links.WhatsappNumber, "whatsapp:"), "+")
	default:
		return "sms:" + s.links.SmsNumber
	}
}

// Distance computes the great-circle distance in meters between two points
// using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	R := 6371.0 // Earth's radius in kilometers
	φ1 := lat1 * math.Pi / 180.0
	φ2 := lat2 * math.Pi / 180.0
	Δφ := (lat2 - lat1) * math.Pi / 180.0
	Δλ := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c * 1000 // meters
}
