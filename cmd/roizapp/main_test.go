package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/clientimport"
	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_DB_ENGINE", "sqlite")
	t.Setenv("APP_DB_NAME", filepath.Join(dir, "cli_test.db"))
	t.Setenv("APP_LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("APP_LOG_TO_CONSOLE", "false")
	t.Setenv("APP_EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("APP_IMPORT_CSV_MODE", "compat")
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env", filepath.Join(t.TempDir(), "sem.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestImportCommand(t *testing.T) {
	dir := setupEnv(t)
	csvPath := filepath.Join(dir, "clientes.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("nome;telefone\nAna;11977777777\nBia;\n"), 0o644))
	account := uuid.NewString()

	out, err := runCLI(t, "import", "--account", account, "--file", csvPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Colunas: name=0, phone=1")
	assert.Contains(t, out, "Linha 3: Telefone é obrigatório")
	assert.Contains(t, out, "Simulação")

	_, err = runCLI(t, "status", "--account", account)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	out, err = runCLI(t, "import", "--account", account, "--file", csvPath, "--actor", "ana", "--json",
		"--report", filepath.Join(dir, "previa.xlsx"))
	require.NoError(t, err)
	var result importResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Outcome)
	assert.Equal(t, 1, result.Outcome.ImportedCount)
	assert.Equal(t, 1, result.Outcome.FailedCount)
	assert.FileExists(t, result.Report)

	out, err = runCLI(t, "status", "--account", account)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "SUCCESS"`)
	assert.Contains(t, out, `"imported_by": "ana"`)
}

func TestImportCommandRejectsBadInput(t *testing.T) {
	dir := setupEnv(t)
	txtPath := filepath.Join(dir, "clientes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("nome;telefone\nAna;11977777777\n"), 0o644))

	_, err := runCLI(t, "import", "--account", "nao-e-uuid", "--file", txtPath)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = runCLI(t, "import", "--account", uuid.NewString(), "--file", txtPath)
	assert.ErrorIs(t, err, clientimport.ErrInvalidExtension)
	assert.Equal(t, exitValidation, exitCode(err))
}

func TestTemplateCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "modelo.csv")

	_, err := runCLI(t, "template", "--out", out)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	result, err := clientimport.Parse(string(raw), clientimport.ModeCompat)
	require.NoError(t, err)
	assert.Len(t, result.Records, len(clientimport.TemplateRows))

	_, err = runCLI(t, "template", "--out", filepath.Join(dir, "modelo.xlsx"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "modelo.xlsx"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitValidation, exitCode(clientimport.ErrNotEnoughLines))
	assert.Equal(t, exitDBWrite, exitCode(fmt.Errorf("x: %w", appErrors.ErrDataImport)))
	assert.Equal(t, exitDB, exitCode(appErrors.ErrDatabase))
	assert.Equal(t, exitUsage, exitCode(withCode(exitUsage, appErrors.ErrDatabase)))
	assert.Equal(t, exitFailure, exitCode(errors.New("qualquer")))
}

func TestWriteTemplateFileRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelo.csv")
	boom := errors.New("disco cheio")

	err := writeTemplateFile(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("Nome,Tel"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, path)

	err = writeTemplateFile(filepath.Join(t.TempDir(), "sem", "dir.csv"), clientimport.WriteTemplateCSV)
	assert.Equal(t, exitFailure, exitCode(err))

	require.NoError(t, writeTemplateFile(path, clientimport.WriteTemplateCSV))
	assert.FileExists(t, path)
}
