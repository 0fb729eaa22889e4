package router

import (
	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/auth"
	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/middleware"
	"timeclock/backend/internal/pkg/config"
	"timeclock/backend/internal/pkg/dedup"
	"timeclock/backend/internal/pkg/repository/postgresql"

	"timeclock/backend/internal/repository/postgres/company"
	"timeclock/backend/internal/repository/postgres/messagelog"
	"timeclock/backend/internal/repository/postgres/timeentry"
	"timeclock/backend/internal/repository/postgres/user"
	"timeclock/backend/internal/repository/postgres/verification"
	"timeclock/backend/internal/repository/postgres/worker"

	"timeclock/backend/internal/service/geofence"
	"timeclock/backend/internal/service/messenger"
	"timeclock/backend/internal/service/shift"

	auth_controller "timeclock/backend/internal/controller/http/v1/auth"
	company_controller "timeclock/backend/internal/controller/http/v1/company"
	timeentry_controller "timeclock/backend/internal/controller/http/v1/timeentry"
	verification_controller "timeclock/backend/internal/controller/http/v1/verification"
	webhook_controller "timeclock/backend/internal/controller/http/v1/webhook"
	worker_controller "timeclock/backend/internal/controller/http/v1/worker"

	"github.com/redis/go-redis/v9"
)

type Router struct {
	*web.App
	postgresDB *postgresql.Database
	redisDB    *redis.Client
	port       string
	auth       *auth.Auth
	cfg        *config.Config
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	redisDB *redis.Client,
	port string,
	auth *auth.Auth,
	cfg *config.Config,
) *Router {
	return &Router{
		app,
		postgresDB,
		redisDB,
		port,
		auth,
		cfg,
	}
}

func (r Router) Init() error {

	r.HandleMethodNotAllowed = true
	r.Use(middleware.CorsMiddleware())

	// - postgresql
	userPostgres := user.NewRepository(r.postgresDB)
	workerPostgres := worker.NewRepository(r.postgresDB)
	companyPostgres := company.NewRepository(r.postgresDB)
	timeEntryPostgres := timeentry.NewRepository(r.postgresDB)
	verificationPostgres := verification.NewRepository(r.postgresDB)
	messageLogPostgres := messagelog.NewRepository(r.postgresDB)

	// - messaging gateway
	gateway := messenger.NewService(workerPostgres, messageLogPostgres, messenger.Addresses{
		SmsNumber:           r.cfg.TwilioSmsFrom,
		WhatsappNumber:      r.cfg.TwilioWhatsappFrom,
		TelegramBotUsername: r.cfg.TelegramBotUsername,
		MessengerPageID:     r.cfg.MessengerPageID,
	})

	if r.cfg.TwilioAccountSID != "" {
		gateway.Register(entity.PlatformSms, messenger.NewTwilioSms(r.cfg.TwilioAccountSID, r.cfg.TwilioAuthToken, r.cfg.TwilioSmsFrom))
		gateway.Register(entity.PlatformWhatsapp, messenger.NewTwilioWhatsapp(r.cfg.TwilioAccountSID, r.cfg.TwilioAuthToken, r.cfg.TwilioWhatsappFrom))
	}

	var telegramClient *messenger.Telegram
	if r.cfg.TelegramBotToken != "" {
		telegramClient = messenger.NewTelegram(r.cfg.TelegramBotToken)
		gateway.Register(entity.PlatformTelegram, telegramClient)
	}

	if r.cfg.MessengerPageToken != "" {
		gateway.Register(entity.PlatformMessenger, messenger.NewFacebook(r.cfg.MessengerPageToken))
	}

	// - services
	shiftService := shift.NewService(timeEntryPostgres, companyPostgres, verificationPostgres, r.cfg.BaseUrl)
	geofenceService := geofence.NewService(verificationPostgres, companyPostgres, workerPostgres, shiftService, gateway, geofence.Links{
		TelegramBotUsername: r.cfg.TelegramBotUsername,
		MessengerPageID:     r.cfg.MessengerPageID,
		SmsNumber:           r.cfg.TwilioSmsFrom,
		WhatsappNumber:      r.cfg.TwilioWhatsappFrom,
	})

	deduper := dedup.NewDeduper(r.redisDB)

	// controller
	authController := auth_controller.NewController(userPostgres, r.auth)
	workerController := worker_controller.NewController(workerPostgres)
	timeEntryController := timeentry_controller.NewController(timeEntryPostgres)
	companyController := company_controller.NewController(companyPostgres)
	verificationController := verification_controller.NewController(geofenceService, r.cfg.BaseUrl)

	var acker webhook_controller.CallbackAcker
	if telegramClient != nil {
		acker = telegramClient
	}
	webhookController := webhook_controller.NewController(gateway, shiftService, deduper, acker, webhook_controller.Config{
		TwilioAuthToken:      r.cfg.TwilioAuthToken,
		MessengerAppSecret:   r.cfg.MessengerAppSecret,
		MessengerVerifyToken: r.cfg.MessengerVerifyToken,
	})

	// #webhook
	r.Post("/webhook/sms", webhookController.Sms)
	r.Post("/webhook/whatsapp", webhookController.Whatsapp)
	r.Post("/webhook/telegram", webhookController.Telegram)
	r.Get("/webhook/messenger", webhookController.MessengerVerify)
	r.Post("/webhook/messenger", webhookController.Messenger)

	// #verification
	r.Post("/verify/:token", verificationController.Verify)
	r.Get("/verify/:token/qr", verificationController.Qr)

	// #auth
	r.Post("/api/v1/sign-in", authController.SignIn)
	r.Post("/api/v1/refresh-token", authController.RefreshToken)

	// #worker
	r.Get("/api/v1/worker/list", workerController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleDashboard))
	r.Get("/api/v1/worker/:id", workerController.GetDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/worker/create", workerController.Create, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Patch("/api/v1/worker/:id", workerController.UpdateColumns, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/worker/:id", workerController.Delete, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #time_entry
	r.Get("/api/v1/time_entry/list", timeEntryController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleDashboard))
	r.Get("/api/v1/time_entry/:id", timeEntryController.GetDetailById, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/time_entry/:id/correct", timeEntryController.Correct, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #company
	r.Get("/api/v1/company/info", companyController.GetInfo, middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleDashboard))
	r.Put("/api/v1/company/:id", companyController.UpdateAll, middleware.Authenticate(r.auth, auth.RoleAdmin))

	return r.Run(r.port)
}
