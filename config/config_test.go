package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-compliance-backend/models"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("APP_URL", "https://compliance.test/")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://compliance.test", cfg.Server.AppURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, models.RuleTerminalActivity, cfg.Compliance.MatrixRule)
	assert.Equal(t, 72*time.Hour, cfg.ApprovalToken.TTL)
	assert.Equal(t, time.Minute, cfg.Server.RateLimitWindow)
	assert.False(t, cfg.Mail.Enabled)
}

func TestLoad_Rejects(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "s")
	t.Setenv("MATRIX_COMPLETENESS_RULE", "most_activities")
	_, err = Load("")
	assert.ErrorContains(t, err, "MATRIX_COMPLETENESS_RULE")
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s")
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PORT: \"9090\"\nMATRIX_COMPLETENESS_RULE: all_activities\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, models.RuleAllActivities, cfg.Compliance.MatrixRule)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", d.DSN())
}
