package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV_TYPE", "LOCAL")
	t.Setenv("SHEET_SCRIPT_URL", "https://script.example.com/exec")
	t.Setenv("ROSTER_CSV_URL", "https://sheet.example.com/roster.csv")
	t.Setenv("ADMIN_CREDENTIALS", "admin:admin123, desk:front")

	cfg := LoadConfig()

	assert.Equal(t, "LOCAL", cfg.EnvType)
	assert.Equal(t, "https://script.example.com/exec", cfg.SheetReadURL)
	assert.False(t, cfg.DBEnabled())
	assert.False(t, cfg.SheetConfirmWrites)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "@every 30m", cfg.RosterRefreshSpec)
	assert.Equal(t, map[string]string{"admin": "admin123", "desk": "front"}, cfg.AdminCredentials)
}

func TestLoadConfig_ServerPrefix(t *testing.T) {
	t.Setenv("ENV_TYPE", "SERVER")
	t.Setenv("SHEET_SCRIPT_URL", "https://script.example.com/exec")
	t.Setenv("SHEET_READ_URL", "https://script.example.com/exec?action=read")
	t.Setenv("ROSTER_CSV_URL", "https://sheet.example.com/roster.csv")
	t.Setenv("SERVER_DB_HOST", "db.internal")
	t.Setenv("SERVER_DB_NAME", "support")
	t.Setenv("SERVER_REDIS_HOST", "cache.internal")

	cfg := LoadConfig()

	require.True(t, cfg.DBEnabled())
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "cache.internal:6379", cfg.GetRedisAddr())
	assert.Equal(t, "https://script.example.com/exec?action=read", cfg.SheetReadURL)
}

func TestLoadConfig_MissingRequiredPanics(t *testing.T) {
	t.Setenv("SHEET_SCRIPT_URL", "")
	assert.Panics(t, func() { LoadConfig() })
}

func TestParseCredentials_SkipsMalformed(t *testing.T) {
	creds := ParseCredentials("ok:pw,:nouser,broken,,colon:in:pw")
	assert.Equal(t, map[string]string{"ok": "pw", "colon": "in:pw"}, creds)
}

func TestGetSheetURL(t *testing.T) {
	cfg := &Config{SpreadsheetID: "abc"}
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/edit", cfg.GetSheetURL())
	assert.Empty(t, (&Config{}).GetSheetURL())
}
