package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	LogLevel       slog.Level
	DatabaseURL    string
	MigrationsPath string
	SkipMigrations bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	SessionCookieName string

	// AppBaseURL is the public site origin used for redirects and email links.
	AppBaseURL string

	// External OAuth Providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	SMTPHost       string
	SMTPPort       int
	SMTPEmail      string
	SMTPPassword   string
	MailSenderName string

	EscrowAPIURL string
	EscrowAPIKey string

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string

	RedisURL           string
	CORSAllowedOrigins []string
	PosthogAPIKey      string
}

const (
	defaultJWTSecret    = "a-very-secret-key-should-be-longer-and-random"
	defaultEscrowAPIURL = "https://escrow-rosy.vercel.app/api/v1/escrow"
)

// RegisterFlags declares the command line flags LoadConfig understands.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("port", "", "HTTP listen port (overrides PORT)")
	flags.Bool("skip-migrations", false, "do not apply database migrations at startup")
}

// LoadConfig loads configuration from command line flags, environment variables
// and a .env file if present. flags may be nil.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("SKIP_MIGRATIONS", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "720h")
	v.SetDefault("JWT_ISSUER", "storefront")
	v.SetDefault("SESSION_COOKIE_NAME", "storefront_session")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_SENDER_NAME", "Storefront")
	v.SetDefault("ESCROW_API_URL", defaultEscrowAPIURL)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlag("PORT", flags.Lookup("port")); err != nil {
			return nil, err
		}
		if err := v.BindPFlag("SKIP_MIGRATIONS", flags.Lookup("skip-migrations")); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		LogLevel:           parseLogLevel(v.GetString("LOG_LEVEL")),
		DatabaseURL:        v.GetString("PGSQL_URL"),
		MigrationsPath:     v.GetString("MIGRATIONS_PATH"),
		SkipMigrations:     v.GetBool("SKIP_MIGRATIONS"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		SessionCookieName:  v.GetString("SESSION_COOKIE_NAME"),
		AppBaseURL:         strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		SMTPHost:           v.GetString("SMTP_HOST"),
		SMTPPort:           v.GetInt("SMTP_PORT"),
		SMTPEmail:          v.GetString("SMTP_EMAIL"),
		SMTPPassword:       v.GetString("SMTP_PASSWORD"),
		MailSenderName:     v.GetString("MAIL_SENDER_NAME"),
		EscrowAPIURL:       v.GetString("ESCROW_API_URL"),
		EscrowAPIKey:       v.GetString("ESCROW_API_KEY"),
		S3Bucket:           v.GetString("S3_BUCKET"),
		S3Region:           v.GetString("S3_REGION"),
		S3Endpoint:         v.GetString("S3_ENDPOINT"),
		S3AccessKeyID:      v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:  v.GetString("S3_SECRET_ACCESS_KEY"),
		S3PublicBaseURL:    strings.TrimRight(v.GetString("S3_PUBLIC_BASE_URL"), "/"),
		RedisURL:           v.GetString("REDIS_URL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		PosthogAPIKey:      v.GetString("POSTHOG_API_KEY"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT not set, using default", slog.String("port", cfg.Port))
	}

	// Load JWT Expiry Duration (e.g., "60m", "720h")
	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiry, err := time.ParseDuration(jwtExpiryStr)
	if err != nil || jwtExpiry <= 0 {
		jwtExpiry = 30 * 24 * time.Hour
		slog.Warn("Invalid JWT_EXPIRY_DURATION, using default",
			slog.String("value", jwtExpiryStr), slog.String("default", jwtExpiry.String()))
	}
	cfg.JWTExpiryDuration = jwtExpiry

	cfg.warnMissing()
	return cfg, nil
}

// warnMissing logs each optional integration that is not configured. The
// dependent feature fails when it is used rather than at startup.
func (c *Config) warnMissing() {
	if c.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set.")
	}
	if c.JWTSecret == defaultJWTSecret {
		slog.Warn("JWT_SECRET not set. Using default insecure key.")
	}
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" || c.GoogleRedirectURL == "" {
		slog.Warn("Google OAuth is not fully configured. Google sign-in will not function.")
	}
	if c.SMTPEmail == "" || c.SMTPPassword == "" {
		slog.Warn("SMTP_EMAIL or SMTP_PASSWORD not set. Emails will not be delivered.")
	}
	if c.EscrowAPIKey == "" {
		slog.Warn("ESCROW_API_KEY not set. Escrow creation will fail.")
	}
	if c.S3Bucket == "" {
		slog.Warn("S3_BUCKET not set. Image uploads will fail.")
	}
}

// GoogleOAuthEnabled reports whether all Google OAuth settings are present.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
