package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core"
	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &core.Config{DBEngine: "sqlite", DBName: filepath.Join(t.TempDir(), "repo_test.db")}
	db, err := data.InitializeDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = data.CloseDB(db) })
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestClientRepositoryBulkInsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewGormClientRepository(newTestDB(t), 2)
	account, other := uuid.New(), uuid.New()

	err := repo.BulkInsert(ctx, []models.ClientInsert{
		{AccountID: account, FullName: "Ana", PhoneE164: "+5511977777777", Emails: []string{"ana@x.com"}, Tags: []string{"vip", "novo"}},
		{AccountID: account, FullName: "Bia", PhoneE164: "+5511966666666", City: strPtr("Canoas")},
		{AccountID: account, FullName: "Caio", PhoneE164: "+5511955555555"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.BulkInsert(ctx, []models.ClientInsert{
		{AccountID: other, FullName: "Outro", PhoneE164: "+5511944444444"},
	}))

	clients, total, err := repo.ListByAccount(ctx, account, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, clients, 3)

	byName := map[string]*models.DBClient{}
	for _, c := range clients {
		assert.Equal(t, account, c.AccountID)
		byName[c.FullName] = c
	}
	assert.Equal(t, models.StringList{"ana@x.com"}, byName["Ana"].Emails)
	assert.Equal(t, models.StringList{"vip", "novo"}, byName["Ana"].Tags)
	assert.Nil(t, byName["Bia"].Emails)
	require.NotNil(t, byName["Bia"].City)
	assert.Equal(t, "Canoas", *byName["Bia"].City)

	page, total, err := repo.ListByAccount(ctx, account, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)

	empty, total, err := repo.ListByAccount(ctx, uuid.New(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, empty)
}

func TestClientRepositoryBulkInsertIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.Exec("CREATE UNIQUE INDEX ux_test_clients_phone ON clients(phone_e164)").Error)

	repo := NewGormClientRepository(db, 1)
	account := uuid.New()

	err := repo.BulkInsert(ctx, []models.ClientInsert{
		{AccountID: account, FullName: "Ana", PhoneE164: "+5511977777777"},
		{AccountID: account, FullName: "Bia", PhoneE164: "+5511966666666"},
		{AccountID: account, FullName: "Ana de novo", PhoneE164: "+5511977777777"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDatabase)

	_, total, err := repo.ListByAccount(ctx, account, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total, "a transação deve ter sido desfeita")
}

func TestClientRepositoryBulkInsertRejectsInput(t *testing.T) {
	repo := NewGormClientRepository(newTestDB(t), 0)

	assert.ErrorIs(t, repo.BulkInsert(context.Background(), nil), appErrors.ErrInvalidInput)
	assert.ErrorIs(t, repo.BulkInsert(context.Background(), []models.ClientInsert{{FullName: "Sem conta"}}), appErrors.ErrInvalidInput)
}

func TestImportMetadataRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormImportMetadataRepository(db)
	account := uuid.New()

	_, err := repo.GetByAccount(ctx, account)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = repo.Upsert(ctx, models.ImportMetadataUpsert{
		AccountID:        account,
		Status:           "success",
		OriginalFilename: strPtr("primeiro.csv"),
		ImportedCount:    intPtr(10),
		FailedCount:      intPtr(1),
		ImportedBy:       strPtr("ana"),
	})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, models.ImportMetadataUpsert{
		AccountID:        account,
		Status:           models.ImportStatusFailed,
		OriginalFilename: strPtr("segundo.csv"),
		ImportedCount:    intPtr(0),
		FailedCount:      intPtr(5),
		ImportedBy:       strPtr("  "),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.DBImportMetadata{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	meta, err := repo.GetByAccount(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusFailed, meta.Status)
	assert.Equal(t, "segundo.csv", *meta.OriginalFilename)
	assert.Equal(t, 5, *meta.FailedCount)
	assert.Nil(t, meta.ImportedBy)

	_, err = repo.Upsert(ctx, models.ImportMetadataUpsert{AccountID: account, Status: "talvez"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestAuditLogRepositoryCreateAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAuditLogRepository(newTestDB(t))
	account := uuid.New()

	for _, action := range []string{"IMPORT_CLIENTS_SUCCESS", "IMPORT_CLIENTS_FAILED", "IMPORT_CLIENTS_SUCCESS"} {
		_, err := repo.Create(ctx, models.AuditLogEntry{
			Action:      action,
			Description: "teste",
			Severity:    "info",
			Username:    "ana",
			AccountID:   &account,
			Metadata:    models.JSONMetadata{"filename": "clientes.csv"},
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, models.AuditLogEntry{Action: "OUTRA", Description: "x", Severity: "INFO", Username: "system"})
	require.NoError(t, err)

	entries, total, err := repo.GetFiltered(ctx, AuditLogFilter{AccountID: &account})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, entries, 3)
	assert.Equal(t, "INFO", entries[0].Severity)
	assert.Equal(t, "clientes.csv", entries[0].Metadata["filename"])

	entries, total, err = repo.GetFiltered(ctx, AuditLogFilter{AccountID: &account, Action: "import_clients_failed"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, entries, 1)
}
