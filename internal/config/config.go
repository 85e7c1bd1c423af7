package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv       string        `mapstructure:"APP_ENV"`
	ServerPort   string        `mapstructure:"SERVER_PORT"`
	DatabaseURL  string        `mapstructure:"DATABASE_URL"`
	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	JWTTTL       time.Duration `mapstructure:"JWT_TTL"`
	ClientOrigin string        `mapstructure:"CLIENT_ORIGIN"`
	CookieSecure bool          `mapstructure:"COOKIE_SECURE"`

	StripeAPIKey        string `mapstructure:"STRIPE_API_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	Currency            string `mapstructure:"CURRENCY"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	OptionsCacheTTL time.Duration `mapstructure:"OPTIONS_CACHE_TTL"`

	AWSRegion string `mapstructure:"AWS_REGION"`
	MailFrom  string `mapstructure:"MAIL_FROM"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	// ColisMaxPerEnvoi bounds the number of parcels in one shipment.
	ColisMaxPerEnvoi int `mapstructure:"COLIS_MAX_PER_ENVOI"`
}

var defaults = map[string]any{
	"APP_ENV":               "local",
	"SERVER_PORT":           "8080",
	"DATABASE_URL":          "",
	"JWT_SECRET":            "",
	"JWT_TTL":               24 * time.Hour,
	"CLIENT_ORIGIN":         "http://localhost:3000",
	"COOKIE_SECURE":         false,
	"STRIPE_API_KEY":        "",
	"STRIPE_WEBHOOK_SECRET": "",
	"CURRENCY":              "eur",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"OPTIONS_CACHE_TTL":     10 * time.Minute,
	"AWS_REGION":            "eu-west-1",
	"MAIL_FROM":             "",
	"KAFKA_BROKERS":         "",
	"KAFKA_TOPIC":           "colisapp.envois",
	"COLIS_MAX_PER_ENVOI":   10,
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Unmarshal only sees keys viper knows about, so every key gets a default.
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("no .env file found, using environment only")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ColisMaxPerEnvoi < 1 {
		cfg.ColisMaxPerEnvoi = 1
	}

	return &cfg, nil
}

// KafkaBrokerList splits KAFKA_BROKERS on commas.
func (c *Config) KafkaBrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
