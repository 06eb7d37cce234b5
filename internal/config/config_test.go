package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "integration", cfg.Webpay.Environment)
	require.Equal(t, 15*time.Second, cfg.Webpay.Timeout)
	require.Equal(t, 50_000_000, cfg.App.MaxLinkAmount)

	// integration mode falls back to the public Transbank test credentials
	require.Equal(t, webpayIntegrationCommerceCode, cfg.Webpay.CommerceCode)
	require.Equal(t, webpayIntegrationAPIKey, cfg.Webpay.APIKey)
}

func TestLoad_ProductionNeverInheritsTestCredentials(t *testing.T) {
	t.Setenv("WEBPAY_ENVIRONMENT", "production")

	cfg := Load()
	require.Empty(t, cfg.Webpay.CommerceCode)
	require.Empty(t, cfg.Webpay.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MAX_LINK_AMOUNT", "1000000")
	t.Setenv("WEBPAY_TIMEOUT", "30s")
	t.Setenv("DB_PORT", "5433")

	cfg := Load()
	require.Equal(t, 1_000_000, cfg.App.MaxLinkAmount)
	require.Equal(t, 30*time.Second, cfg.Webpay.Timeout)
	require.Equal(t, 5433, cfg.Database.Port)
}

func TestDatabaseURL(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "linkpago", SSLMode: "disable"}
	require.Equal(t, "postgres://u:p@db:5432/linkpago?sslmode=disable", c.URL())
}

func TestIsHTTPS(t *testing.T) {
	require.True(t, AppConfig{URL: "https://pagos.cl"}.IsHTTPS())
	require.False(t, AppConfig{URL: "http://localhost:8080"}.IsHTTPS())
}
