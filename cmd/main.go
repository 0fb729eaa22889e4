package main

import (
	"fmt"
	"os"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/auth"
	"timeclock/backend/internal/commands"
	"timeclock/backend/internal/pkg/config"
	"timeclock/backend/internal/pkg/repository/postgresql"
	"timeclock/backend/internal/router"

	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("startup failed")
	}
}

func run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	var flags struct {
		Web struct {
			Port string `conf:"default::8080"`
		}
		Migrate bool `conf:"default:true"`
	}

	if err := conf.Parse(os.Args[1:], "TIMECLOCK", &flags); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage("TIMECLOCK", &flags)
			if err != nil {
				return errors.Wrap(err, "generating usage")
			}
			fmt.Println(usage)
			return nil
		}
		return errors.Wrap(err, "parsing runtime flags")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUsername, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, sslMode)

	postgresDB := postgresql.NewDB(dsn)
	defer postgresDB.Close()

	redisDB := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisDB.Close()

	if flags.Migrate {
		commands.MigrateUP(postgresDB)
	}

	a := auth.NewAuth(cfg.JWTKey)

	r := router.NewRouter(web.NewApp(), postgresDB, redisDB, flags.Web.Port, a, cfg)

	logrus.WithField("port", flags.Web.Port).Info("starting api")
	return r.Init()
}
