package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("ALLOW_ORIGINS", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SIGN_LINK_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.FrontendURL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Signing.LinkTTL)
	assert.Equal(t, time.Hour, cfg.Signing.SweepInterval)
	assert.Equal(t, "Europe/Paris", cfg.Signing.DisplayTimezone)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_PORT", "")
	t.Setenv("FRONTEND_URL", "https://sign.example.com/")
	t.Setenv("ALLOW_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("SIGN_LINK_TTL", "48h")
	t.Setenv("GEO_TIMEOUT", "not-a-duration")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "https://sign.example.com", cfg.Server.FrontendURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 48*time.Hour, cfg.Signing.LinkTTL)
	assert.Equal(t, 3*time.Second, cfg.Geo.Timeout)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestAllowOriginsFallBackToFrontend(t *testing.T) {
	t.Setenv("ALLOW_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "https://sign.example.com/")

	assert.Equal(t, []string{"https://sign.example.com"}, parseAllowOrigins())
}

func TestDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", User: "u", Password: "p", DBName: "rental"}
	assert.Equal(t, "u:p@tcp(db:3306)/rental?charset=utf8mb4&parseTime=True&loc=UTC", mysql.DSN())

	socket := DatabaseConfig{Driver: "mysql", Host: "/cloudsql/proj:region:inst", User: "u", Password: "p", DBName: "rental"}
	assert.Equal(t, "u:p@unix(/cloudsql/proj:region:inst)/rental?charset=utf8mb4&parseTime=True&loc=UTC", socket.DSN())

	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", DBName: "rental", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=rental sslmode=disable", pg.DSN())
}
