package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/Skotchmaster/sweet_shop/pkg/config"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DBDriver    string
	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	CookieSecure     bool

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CORSOrigins  []string
	NotifyBuffer int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "sweetshop")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("ACCESS_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TTL", 7*24*time.Hour)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("KAFKA_TOPIC", "sweet_events")
	v.SetDefault("ES_INDEX", "sweets")
	v.SetDefault("NOTIFY_BUFFER", 256)
}

func Load(v *viper.Viper) Config {
	setDefaults(v)

	return Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		ServerPort:  v.GetInt("SERVER_PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		DBDriver:    v.GetString("DB_DRIVER"),
		DatabaseURL: v.GetString("DATABASE_URL"),

		JWTAccessSecret:  []byte(v.GetString("JWT_SECRET")),
		JWTRefreshSecret: []byte(v.GetString("JWT_REFRESH_SECRET")),
		AccessTTL:        v.GetDuration("ACCESS_TTL"),
		RefreshTTL:       v.GetDuration("REFRESH_TTL"),
		CookieSecure:     v.GetBool("COOKIE_SECURE"),

		KafkaBrokers: pkgconfig.CSV(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),

		ESURL:      v.GetString("ES_URL"),
		ESUser:     v.GetString("ES_USER"),
		ESPassword: v.GetString("ES_PASSWORD"),
		ESIndex:    v.GetString("ES_INDEX"),

		CORSOrigins:  pkgconfig.CSV(v.GetString("CORS_ORIGINS")),
		NotifyBuffer: v.GetInt("NOTIFY_BUFFER"),
	}
}

// Validate checks the settings the API server cannot start without.
func (c Config) Validate() error {
	return pkgconfig.Require(
		pkgconfig.NonEmpty(c.DatabaseURL, "DATABASE_URL"),
		pkgconfig.NonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET"),
		pkgconfig.NonEmptyBytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET"),
	)
}
