package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"gorm.io/gorm"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/clientimport"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core"
	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/repositories"
)

const sampleCSV = "Nome,Telefone,Email\n" +
	"Ana,+55 11 97777-7777,ana@x.com\n" +
	"Bob,,bob@x.com\n" +
	"Carla,(11) 96666-6666,carla-sem-arroba\n"

type testEnv struct {
	cfg     *core.Config
	db      *gorm.DB
	service ImportService
	audit   AuditLogService
}

func newTestEnv(t *testing.T, mutate func(cfg *core.Config)) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &core.Config{
		DBEngine:        "sqlite",
		DBName:          filepath.Join(dir, "services_test.db"),
		ExportDir:       filepath.Join(dir, "exports"),
		ImportCSVMode:   core.CSVModeCompat,
		ImportBatchSize: 2,
	}
	if mutate != nil {
		mutate(cfg)
	}
	db, err := data.InitializeDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = data.CloseDB(db) })

	audit := NewAuditLogService(repositories.NewGormAuditLogRepository(db))
	svc, err := NewImportService(cfg, audit,
		repositories.NewGormClientRepository(db, cfg.ImportBatchSize),
		repositories.NewGormImportMetadataRepository(db))
	require.NoError(t, err)
	return &testEnv{cfg: cfg, db: db, service: svc, audit: audit}
}

func TestImportServiceOpenAndConfirm(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	account := uuid.New()

	session, err := env.service.Open(ctx, "clientes.csv", []byte(sampleCSV), account)
	require.NoError(t, err)
	require.Len(t, session.Records, 3)
	summary := session.Summary()
	assert.Equal(t, 2, summary.Valid)
	assert.Equal(t, 1, summary.Invalid)

	outcome, err := env.service.Confirm(ctx, session, "ana.operadora")
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.ImportedCount)
	assert.Equal(t, 1, outcome.FailedCount)
	assert.Equal(t, []string{"Linha 3: Telefone é obrigatório"}, outcome.Errors)

	clients, total, err := env.service.ListClients(ctx, account, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, clients, 2)

	status, err := env.service.GetImportStatus(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusSuccess, status.Status)
	assert.Equal(t, "clientes.csv", *status.OriginalFilename)
	assert.Equal(t, 2, *status.ImportedCount)
	assert.Equal(t, "ana.operadora", *status.ImportedBy)

	logs, total, err := env.audit.GetAuditLogs(ctx, repositories.AuditLogFilter{AccountID: &account})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, AuditActionImportSuccess, logs[0].Action)
	assert.Equal(t, "ana.operadora", logs[0].Username)

	_, err = env.service.Confirm(ctx, session, "ana.operadora")
	assert.ErrorIs(t, err, clientimport.ErrSessionConsumed)
	_, total, err = env.service.ListClients(ctx, account, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "uma sessão consumida não grava de novo")
}

func TestImportServiceConfirmFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	require.NoError(t, env.db.Exec("CREATE UNIQUE INDEX ux_test_clients_phone ON clients(phone_e164)").Error)
	account := uuid.New()

	csv := "nome;telefone\nAna;11977777777\nAna de novo;11977777777\n"
	session, err := env.service.Open(ctx, "dup.csv", []byte(csv), account)
	require.NoError(t, err)

	outcome, err := env.service.Confirm(ctx, session, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDataImport)
	assert.Zero(t, outcome.ImportedCount)
	assert.Equal(t, 2, outcome.FailedCount)
	assert.Len(t, outcome.Errors, 1)

	status, err := env.service.GetImportStatus(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusFailed, status.Status)
	assert.Nil(t, status.ImportedBy)

	logs, _, err := env.audit.GetAuditLogs(ctx, repositories.AuditLogFilter{AccountID: &account})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, AuditActionImportFailed, logs[0].Action)
	assert.Equal(t, "ERROR", logs[0].Severity)
	assert.Equal(t, "system", logs[0].Username)

	assert.False(t, session.Importing())
	_, ok := session.Outcome()
	assert.False(t, ok)
}

func TestImportServiceRejectsFiles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, func(cfg *core.Config) { cfg.ImportMaxFileBytes = 64 })
	account := uuid.New()

	_, err := env.service.Open(ctx, "clientes.xlsx", []byte(sampleCSV), account)
	assert.ErrorIs(t, err, clientimport.ErrInvalidExtension)

	_, err = env.service.Open(ctx, "clientes.csv", []byte(sampleCSV), account)
	assert.ErrorIs(t, err, clientimport.ErrFileTooLarge)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = env.service.Open(ctx, "clientes.csv", []byte("nome,telefone\n"), account)
	assert.ErrorIs(t, err, clientimport.ErrNotEnoughLines)

	_, err = env.service.Open(ctx, "clientes.csv", []byte("nome,email\nAna,a@x.com\n"), account)
	assert.ErrorIs(t, err, clientimport.ErrMissingColumns)

	_, err = env.service.Open(ctx, "clientes.csv", []byte("nome,telefone\nAna,11977777777\n"), uuid.Nil)
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestImportServiceOpenFileDecodesLatin1(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	latin1, err := charmap.ISO8859_1.NewEncoder().String("Nome;Telefone;Número;Situação\nJosé;11977777777;12;ativo\n")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "latin1.csv")
	require.NoError(t, os.WriteFile(path, []byte(latin1), 0o644))

	session, err := env.service.OpenFile(ctx, path, uuid.New())
	require.NoError(t, err)
	require.Len(t, session.Records, 1)
	rec := session.Records[0]
	assert.Equal(t, "José", rec.FullName)
	require.NotNil(t, rec.StreetNumber)
	assert.Equal(t, "12", *rec.StreetNumber)
	require.NotNil(t, rec.Status)
	assert.Equal(t, clientimport.StatusActive, *rec.Status)

	_, err = env.service.OpenFile(ctx, filepath.Join(t.TempDir(), "nao-existe.csv"), uuid.New())
	assert.ErrorIs(t, err, appErrors.ErrResourceLoading)
}

func TestImportServiceOpenStripsBOM(t *testing.T) {
	env := newTestEnv(t, nil)
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Nome,Telefone\nAna,11977777777\n")...)

	session, err := env.service.Open(context.Background(), "bom.csv", content, uuid.New())
	require.NoError(t, err)
	require.Len(t, session.Records, 1)
	assert.True(t, session.Records[0].IsValid)
}

func TestImportServiceStrictMode(t *testing.T) {
	env := newTestEnv(t, func(cfg *core.Config) { cfg.ImportCSVMode = core.CSVModeStrict })

	content := "nome,telefone,observações\n\"Silva, Ana\",11977777777,\"cliente antiga\"\n"
	session, err := env.service.Open(context.Background(), "strict.csv", []byte(content), uuid.New())
	require.NoError(t, err)
	require.Len(t, session.Records, 1)
	assert.Equal(t, "Silva, Ana", session.Records[0].FullName)
}

func TestNewImportServiceRejectsUnknownMode(t *testing.T) {
	env := newTestEnv(t, nil)
	cfg := *env.cfg
	cfg.ImportCSVMode = "excel"

	_, err := NewImportService(&cfg, env.audit,
		repositories.NewGormClientRepository(env.db, 0),
		repositories.NewGormImportMetadataRepository(env.db))
	assert.ErrorIs(t, err, appErrors.ErrConfiguration)
}

func TestImportServiceExportReport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	csv := "nome,telefone,cpf,email\nAna,11977777777,123.456.789-09,ana@x.com\nBia,,,\n"
	session, err := env.service.Open(ctx, "clientes.csv", []byte(csv), uuid.New())
	require.NoError(t, err)

	path, err := env.service.ExportReport(session, "previa.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.cfg.ExportDir, "previa.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Prévia")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, reportHeaders, rows[0])
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "+11977777777", rows[1][2])
	assert.Equal(t, "****@****.***", rows[1][3])
	assert.Equal(t, "***.***.***-**", rows[1][4])
	assert.Equal(t, "Válido", rows[1][6])
	assert.Equal(t, "Inválido", rows[2][6])
	assert.Equal(t, "Telefone é obrigatório", rows[2][7])

	csvPath, err := env.service.ExportReport(session, "previa.csv")
	require.NoError(t, err)
	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Linha;Nome;Telefone")
	assert.NotContains(t, string(raw), "ana@x.com")
}

func TestImportServiceConfirmRejectsActor(t *testing.T) {
	env := newTestEnv(t, nil)
	session, err := env.service.Open(context.Background(), "clientes.csv", []byte(sampleCSV), uuid.New())
	require.NoError(t, err)

	_, err = env.service.Confirm(context.Background(), session, "ana operadora")
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
	assert.False(t, session.Importing())
	_, ok := session.Outcome()
	assert.False(t, ok, "a sessão continua disponível para nova confirmação")
}

func TestAuditLogServiceNormalizesEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	account := uuid.New()

	err := env.audit.LogAction(ctx, models.AuditLogEntry{
		Action:      "IMPORT_CLIENTS_SUCCESS",
		Description: "  importação\n\tconcluída ",
		Severity:    "desconhecida",
		AccountID:   &account,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, env.audit.LogAction(ctx, models.AuditLogEntry{Description: "x"}), appErrors.ErrInvalidInput)
	assert.ErrorIs(t, env.audit.LogAction(ctx, models.AuditLogEntry{Action: "X"}), appErrors.ErrInvalidInput)

	logs, total, err := env.audit.GetAuditLogs(ctx, repositories.AuditLogFilter{AccountID: &account})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "importação concluída", logs[0].Description)
	assert.Equal(t, "INFO", logs[0].Severity)
	assert.Equal(t, "system", logs[0].Username)
	assert.False(t, logs[0].Timestamp.IsZero())
}
