package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
)

// AuditLogFilter restringe a busca de logs de auditoria. Campos vazios não filtram.
type AuditLogFilter struct {
	AccountID *uuid.UUID
	Action    string
	Severity  string
	Limit     int
	Offset    int
}

// AuditLogRepository define a interface para operações no repositório de logs de auditoria.
type AuditLogRepository interface {
	// Create insere uma nova entrada de log de auditoria.
	Create(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error)

	// GetFiltered busca logs com paginação, mais recentes primeiro.
	// Retorna também a contagem total de registros que correspondem ao filtro.
	GetFiltered(ctx context.Context, filter AuditLogFilter) ([]models.AuditLogEntry, int64, error)
}

// gormAuditLogRepository é a implementação GORM de AuditLogRepository.
type gormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository cria uma nova instância de gormAuditLogRepository.
func NewGormAuditLogRepository(db *gorm.DB) AuditLogRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormAuditLogRepository")
	}
	return &gormAuditLogRepository{db: db}
}

func (r *gormAuditLogRepository) Create(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Severity = strings.ToUpper(entry.Severity)

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		// Metadata pode ter dados sensíveis; fica fora da mensagem.
		appLogger.Errorf("Erro ao criar entrada de log de auditoria (Ação: %s, Usuário: %s, Severidade: %s): %v",
			entry.Action, entry.Username, entry.Severity, err)
		return nil, appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDatabase, err), "falha ao criar entrada de log no banco (GORM)")
	}
	return &entry, nil
}

func (r *gormAuditLogRepository) GetFiltered(ctx context.Context, filter AuditLogFilter) ([]models.AuditLogEntry, int64, error) {
	var (
		entries    []models.AuditLogEntry
		totalCount int64
	)

	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.AuditLogEntry{})
		if filter.AccountID != nil {
			q = q.Where("account_id = ?", *filter.AccountID)
		}
		if filter.Action != "" {
			q = q.Where("UPPER(action) = UPPER(?)", filter.Action)
		}
		if filter.Severity != "" {
			q = q.Where("UPPER(severity) = UPPER(?)", filter.Severity)
		}
		return q
	}

	if err := scoped().Count(&totalCount).Error; err != nil {
		appLogger.Errorf("Erro ao contar logs de auditoria filtrados: %v", err)
		return nil, 0, appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDatabase, err), "falha ao contar logs de auditoria (GORM)")
	}
	if totalCount == 0 {
		return []models.AuditLogEntry{}, 0, nil
	}

	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 {
		limit = 100
	} else if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	if err := scoped().Order("timestamp DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		appLogger.Errorf("Erro ao buscar logs de auditoria filtrados: %v", err)
		return nil, 0, appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDatabase, err), "falha ao buscar logs de auditoria (GORM)")
	}
	return entries, totalCount, nil
}
