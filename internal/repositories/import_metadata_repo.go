package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause" // Para Upsert (OnConflict)

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
)

// ImportMetadataRepository define as operações sobre os metadados de importação.
type ImportMetadataRepository interface {
	// GetByAccount busca os metadados da última importação da conta.
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.DBImportMetadata, error)

	// Upsert cria ou sobrescreve os metadados da conta.
	// LastUpdatedAt é sempre definido para o tempo atual (UTC).
	Upsert(ctx context.Context, upsertData models.ImportMetadataUpsert) (*models.DBImportMetadata, error)
}

// gormImportMetadataRepository é a implementação GORM de ImportMetadataRepository.
type gormImportMetadataRepository struct {
	db *gorm.DB
}

// NewGormImportMetadataRepository cria uma nova instância de gormImportMetadataRepository.
func NewGormImportMetadataRepository(db *gorm.DB) ImportMetadataRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormImportMetadataRepository")
	}
	return &gormImportMetadataRepository{db: db}
}

func (r *gormImportMetadataRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.DBImportMetadata, error) {
	if accountID == uuid.Nil {
		return nil, fmt.Errorf("%w: conta não pode ser vazia para GetByAccount", appErrors.ErrInvalidInput)
	}

	var metadata models.DBImportMetadata
	result := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&metadata)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: nenhuma importação registrada para a conta %s", appErrors.ErrNotFound, accountID)
		}
		appLogger.Errorf("Erro ao buscar metadados de importação da conta %s: %v", accountID, result.Error)
		return nil, appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDatabase, result.Error), "falha ao buscar metadados de importação (GORM)")
	}
	return &metadata, nil
}

func (r *gormImportMetadataRepository) Upsert(ctx context.Context, upsertData models.ImportMetadataUpsert) (*models.DBImportMetadata, error) {
	upsertData.Normalize()

	if upsertData.AccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: conta não pode ser vazia para upsert de metadados", appErrors.ErrInvalidInput)
	}
	if upsertData.Status != models.ImportStatusSuccess && upsertData.Status != models.ImportStatusFailed {
		return nil, fmt.Errorf("%w: status de importação inválido '%s'", appErrors.ErrInvalidInput, upsertData.Status)
	}

	metadataToPersist := models.DBImportMetadata{
		AccountID:        upsertData.AccountID,
		LastUpdatedAt:    time.Now().UTC(),
		Status:           upsertData.Status,
		OriginalFilename: upsertData.OriginalFilename,
		ImportedCount:    upsertData.ImportedCount,
		FailedCount:      upsertData.FailedCount,
		ImportedBy:       upsertData.ImportedBy,
	}

	// Conflito em account_id (uniqueIndex) vira UPDATE das colunas abaixo.
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_updated_at", "status", "original_filename", "imported_count", "failed_count", "imported_by",
		}),
	}).Create(&metadataToPersist)

	if result.Error != nil {
		appLogger.Errorf("Erro durante upsert de metadados da conta %s: %v", upsertData.AccountID, result.Error)
		return nil, appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDatabase, result.Error), "falha ao atualizar/criar metadados de importação (GORM)")
	}

	appLogger.Infof("Metadados de importação da conta %s atualizados (status %s).", upsertData.AccountID, upsertData.Status)
	return &metadataToPersist, nil
}
