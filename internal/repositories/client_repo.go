package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
)

const defaultBatchSize = 200

// ClientRepository define as operações sobre a tabela clients.
type ClientRepository interface {
	// BulkInsert grava todos os clientes numa única transação: ou entram todos ou nenhum.
	BulkInsert(ctx context.Context, clients []models.ClientInsert) error

	// ListByAccount lista os clientes da conta, mais recentes primeiro, com paginação.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*models.DBClient, int64, error)
}

// gormClientRepository é a implementação GORM de ClientRepository.
type gormClientRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewGormClientRepository cria o repositório. batchSize controla o tamanho de
// cada INSERT dentro da transação (CreateInBatches).
func NewGormClientRepository(db *gorm.DB, batchSize int) ClientRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormClientRepository")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &gormClientRepository{db: db, batchSize: batchSize}
}

func (r *gormClientRepository) BulkInsert(ctx context.Context, clients []models.ClientInsert) error {
	if len(clients) == 0 {
		return fmt.Errorf("%w: lista de clientes vazia", appErrors.ErrInvalidInput)
	}

	rows := make([]*models.DBClient, len(clients))
	for i, c := range clients {
		if c.AccountID == uuid.Nil {
			return fmt.Errorf("%w: cliente '%s' sem conta", appErrors.ErrInvalidInput, c.FullName)
		}
		rows[i] = c.ToDBClient()
	}

	err := data.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, r.batchSize).Error
	})
	if err != nil {
		appLogger.Errorf("Erro ao inserir %d clientes (conta %s): %v", len(rows), clients[0].AccountID, err)
		return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDatabase, err), "falha ao inserir clientes (GORM)")
	}

	appLogger.Infof("%d clientes inseridos para a conta %s.", len(rows), clients[0].AccountID)
	return nil
}

func (r *gormClientRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*models.DBClient, int64, error) {
	var (
		clients    []*models.DBClient
		totalCount int64
	)

	if err := r.db.WithContext(ctx).Model(&models.DBClient{}).Where("account_id = ?", accountID).Count(&totalCount).Error; err != nil {
		appLogger.Errorf("Erro ao contar clientes da conta %s: %v", accountID, err)
		return nil, 0, appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDatabase, err), "falha ao contar clientes (GORM)")
	}
	if totalCount == 0 {
		return []*models.DBClient{}, 0, nil
	}

	if limit <= 0 {
		limit = 100
	} else if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).
		Order("created_at DESC").Order("full_name ASC").Limit(limit).Offset(offset).Find(&clients).Error
	if err != nil {
		appLogger.Errorf("Erro ao listar clientes da conta %s: %v", accountID, err)
		return nil, 0, appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDatabase, err), "falha ao listar clientes (GORM)")
	}
	return clients, totalCount, nil
}
