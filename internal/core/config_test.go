package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_DB_ENGINE", "")
	t.Setenv("APP_IMPORT_CSV_MODE", "")

	// Variáveis vazias existem, então getEnv devolve "", e não o fallback.
	cfg := FromEnv()
	assert.Equal(t, "", cfg.DBEngine)
	require.Error(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_DB_ENGINE", "PostgreSQL")
	t.Setenv("APP_DB_PORT", "6543")
	t.Setenv("APP_IMPORT_CSV_MODE", "STRICT")
	t.Setenv("APP_IMPORT_BATCH_SIZE", "50")
	t.Setenv("APP_IMPORT_SESSION_TTL", "60")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg := FromEnv()
	assert.Equal(t, "postgresql", cfg.DBEngine)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, CSVModeStrict, cfg.ImportCSVMode)
	assert.Equal(t, 50, cfg.ImportBatchSize)
	assert.Equal(t, time.Minute, cfg.ImportSessionTTL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownCSVMode(t *testing.T) {
	cfg := FromEnv()
	cfg.DBEngine = "sqlite"
	cfg.ImportCSVMode = "excel"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ImportCSVMode")
	assert.ErrorIs(t, err, appErrors.ErrConfiguration)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	var ve *appErrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "ImportCSVMode")
}

func TestValidateRejectsZeroBatch(t *testing.T) {
	cfg := FromEnv()
	cfg.DBEngine = "sqlite"
	cfg.ImportCSVMode = CSVModeCompat
	cfg.ImportBatchSize = 0

	require.Error(t, cfg.Validate())
}
