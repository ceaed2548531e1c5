package app

import (
	"time"

	"github.com/yungbote/careerbridge-backend/internal/platform/envutil"
)

type Config struct {
	LogMode     string
	Environment string
	Version     string
	ServiceName string

	Port            string
	ShutdownTimeout time.Duration
	MetricsAddr     string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	AppBaseURL string
}

func LoadConfig() Config {
	return Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "careerbridge-api"),

		Port:            envutil.String("PORT", "8080"),
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15),
		MetricsAddr:     envutil.String("METRICS_ADDR", ":9090"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", 3600),

		AppBaseURL: envutil.String("APP_BASE_URL", "http://localhost:3000"),
	}
}

func (c Config) Addr() string {
	return ":" + c.Port
}
