package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core"
)

func TestSetupLoggerWritesJSONFile(t *testing.T) {
	t.Cleanup(func() { UseLogger(nil) })
	dir := t.TempDir()
	cfg := &core.Config{AppName: "ROY zAPP Clientes", LogDir: dir, LogLevel: "DEBUG", LogMaxBytes: 1024, LogBackupCount: 1}

	require.NoError(t, SetupLogger(cfg))
	WithFields(logrus.Fields{"component": "teste"}).Info("mensagem de teste")

	raw, err := os.ReadFile(filepath.Join(dir, "roy_zapp_clientes.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"message":"mensagem de teste"`)
	assert.Contains(t, string(raw), `"component":"teste"`)
	assert.Equal(t, logrus.DebugLevel, current().GetLevel())
}

func TestFallbackBeforeSetup(t *testing.T) {
	UseLogger(nil)
	assert.Same(t, fallback, current())
	assert.NotPanics(t, func() { Infof("antes do setup: %d", 1) })
}
