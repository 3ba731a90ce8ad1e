package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolio/pkg/mailer"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_AUTO_MIGRATE", "JWT_SECRET", "EMAIL_BACKEND", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	c := loadConfig()
	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.True(t, c.DBAutoMigrate)
	assert.NotEmpty(t, c.JWTSecret)
	assert.Equal(t, "console", c.EmailBackend)
	assert.Empty(t, c.AllowedOrigins)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_AUTO_MIGRATE", "off")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("TEMPLATE_RELOAD", "1")
	c := loadConfig()
	assert.Equal(t, "9090", c.Port)
	assert.False(t, c.DBAutoMigrate)
	assert.True(t, c.TemplateReload)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
}

func TestNewMailerBackends(t *testing.T) {
	cfg = Config{EmailBackend: "smtp", SMTPHost: "mail.example.com", SMTPPort: "587"}
	m, err := newMailer()
	assert.NoError(t, err)
	assert.IsType(t, mailer.SMTP{}, m)

	cfg.EmailBackend = "pigeon"
	_, err = newMailer()
	assert.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	cfg = Config{AllowedOrigins: []string{"https://front.example"}}
	h := withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/home", nil)
	req.Header.Set("Origin", "https://front.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://front.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
