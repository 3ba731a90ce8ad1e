package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is read from the environment once at startup. A local .env file is
// loaded first without overriding variables that are already set.
type Config struct {
	Port          string
	GinMode       string
	DBDriver      string
	DBDSN         string
	DBAutoMigrate bool
	JWTSecret     []byte

	DefaultFromEmail string
	AdminEmail       string
	EmailBackend     string
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPass         string

	TemplatesDir   string
	StaticDir      string
	MediaDir       string
	TemplateReload bool
	AllowedOrigins []string
}

var cfg Config

func loadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env", "err", err)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	return Config{
		Port:          envOr("PORT", "8000"),
		GinMode:       os.Getenv("GIN_MODE"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", "portfolio.db"),
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:     []byte(secret),

		DefaultFromEmail: envOr("DEFAULT_FROM_EMAIL", "Portfolio <noreply@localhost>"),
		AdminEmail:       envOr("ADMIN_EMAIL", "admin@localhost"),
		EmailBackend:     envOr("EMAIL_BACKEND", "console"),
		SMTPHost:         envOr("SMTP_HOST", "localhost"),
		SMTPPort:         envOr("SMTP_PORT", "587"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),

		TemplatesDir:   envOr("TEMPLATES_DIR", "templates"),
		StaticDir:      envOr("STATIC_DIR", "static"),
		MediaDir:       envOr("MEDIA_DIR", "media"),
		TemplateReload: envBool("TEMPLATE_RELOAD", false),
		AllowedOrigins: envList("ALLOWED_ORIGINS"),
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def
	case "false", "0", "no", "off":
		return false
	default:
		return true
	}
}

func envList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
