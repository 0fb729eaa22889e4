package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBUsername string `yaml:"db_username"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBName     string `yaml:"db_name"`
	DisableTLS bool   `yaml:"disable_tls"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	// BaseUrl is the public https origin used to build verification links.
	BaseUrl string `yaml:"base_url"`
	JWTKey  string `yaml:"jwt_key"`

	TwilioAccountSID   string `yaml:"twilio_account_sid"`
	TwilioAuthToken    string `yaml:"twilio_auth_token"`
	TwilioSmsFrom      string `yaml:"twilio_sms_from"`
	TwilioWhatsappFrom string `yaml:"twilio_whatsapp_from"`

	TelegramBotToken    string `yaml:"telegram_bot_token"`
	TelegramBotUsername string `yaml:"telegram_bot_username"`

	MessengerPageToken   string `yaml:"messenger_page_token"`
	MessengerPageID      string `yaml:"messenger_page_id"`
	MessengerAppSecret   string `yaml:"messenger_app_secret"`
	MessengerVerifyToken string `yaml:"messenger_verify_token"`

	// DefaultGeofenceRadius in meters, applied when a company has a job site
	// but no radius configured.
	DefaultGeofenceRadius float64 `yaml:"default_geofence_radius"`
}

func NewConfig() (*Config, error) {
	var c Config

	yamlFile, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		return nil, err
	}

	if c.DBUsername == "" || c.DBPassword == "" || c.DBHost == "" || c.DBName == "" {
		return nil, errors.New("missing required database configuration")
	}
	if c.BaseUrl == "" {
		return nil, errors.New("missing base_url configuration")
	}

	if c.DefaultGeofenceRadius == 0 {
		c.DefaultGeofenceRadius = 50
	}

	return &c, nil
}
