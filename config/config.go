package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

type ServerConfig struct {
	Port           string
	Env            string
	BaseURL        string
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns DATABASE_URL when set, otherwise builds a postgres keyword DSN.
func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type MailConfig struct {
	Provider     string // smtp | resend | noop
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ResendAPIKey string
}

type CloudinaryConfig struct {
	URL string
}

type GoogleConfig struct {
	ClientID string
}

type MapboxConfig struct {
	AccessToken string
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type BookingConfig struct {
	MaxNights       int
	PaymentTimeout  time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

type CronConfig struct {
	Enabled      bool
	Secret       string
	CancelSpec   string
	ReminderSpec string
	CompleteSpec string
}

type LogConfig struct {
	Level string
}

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Mail       MailConfig
	Cloudinary CloudinaryConfig
	Google     GoogleConfig
	Mapbox     MapboxConfig
	Upload     UploadConfig
	Booking    BookingConfig
	Cron       CronConfig
	Log        LogConfig
}

// LoadEnv loads variables from the given .env files. A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the whole configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8083"),
			Env:            getEnv("APP_ENV", "development"),
			BaseURL:        getEnv("APP_BASE_URL", "http://localhost:3000"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		DB: DBConfig{
			DSN:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "staycation"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", ""),
			ExpiresIn: getEnvAsDuration("JWT_EXPIRES_IN", 24*time.Hour),
		},
		Mail: MailConfig{
			Provider:     strings.ToLower(getEnv("MAIL_PROVIDER", "noop")),
			From:         getEnv("MAIL_FROM", "Staycation <no-reply@staycation.local>"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		},
		Cloudinary: CloudinaryConfig{
			URL: getEnv("CLOUDINARY_URL", ""),
		},
		Google: GoogleConfig{
			ClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
		Mapbox: MapboxConfig{
			AccessToken: getEnv("MAPBOX_ACCESS_TOKEN", ""),
		},
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 1<<20)),
		},
		Booking: BookingConfig{
			MaxNights:       getEnvAsInt("BOOKING_MAX_NIGHTS", 30),
			PaymentTimeout:  getEnvAsDuration("BOOKING_PAYMENT_TIMEOUT", time.Hour),
			VerificationTTL: getEnvAsDuration("VERIFICATION_TOKEN_TTL", time.Hour),
			ResetTTL:        getEnvAsDuration("RESET_TOKEN_TTL", time.Hour),
		},
		Cron: CronConfig{
			Enabled:      getEnvAsBool("CRON_ENABLED", false),
			Secret:       getEnv("CRON_SECRET", ""),
			CancelSpec:   getEnv("CRON_CANCEL_SPEC", "@every 5m"),
			ReminderSpec: getEnv("CRON_REMINDER_SPEC", "0 9 * * *"),
			CompleteSpec: getEnv("CRON_COMPLETE_SPEC", "0 1 * * *"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.JWT.Secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWT.Secret = "dev-secret-change-me"
	}
	if cfg.JWT.ExpiresIn < 2*time.Hour || cfg.JWT.ExpiresIn > 7*24*time.Hour {
		return nil, fmt.Errorf("JWT_EXPIRES_IN must be between 2h and 168h, got %s", cfg.JWT.ExpiresIn)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Fields returns the non-secret part of the configuration for startup logs.
func (c *Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("port", c.Server.Port),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.Name),
		zap.Bool("redis", c.Redis.Addr != ""),
		zap.Bool("cloudinary", c.Cloudinary.URL != ""),
		zap.String("mail_provider", c.Mail.Provider),
		zap.Bool("cron", c.Cron.Enabled),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch getEnv(key, "") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
