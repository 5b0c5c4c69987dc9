package services

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/repositories"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/utils"
)

const (
	maxAuditDescription = 4000
	systemActor         = "system"
)

// AuditLogService define a interface para o serviço de log de auditoria.
type AuditLogService interface {
	// LogAction registra uma ação de auditoria. Sem Username, a ação é atribuída a "system".
	LogAction(ctx context.Context, entry models.AuditLogEntry) error

	// GetAuditLogs busca logs de auditoria com filtros e paginação.
	GetAuditLogs(ctx context.Context, filter repositories.AuditLogFilter) ([]models.AuditLogEntry, int64, error)
}

type auditLogServiceImpl struct {
	repo repositories.AuditLogRepository
}

// NewAuditLogService cria uma nova instância de AuditLogService.
func NewAuditLogService(repo repositories.AuditLogRepository) AuditLogService {
	if repo == nil {
		appLogger.Fatalf("AuditLogRepository não pode ser nil para NewAuditLogService")
	}
	return &auditLogServiceImpl{repo: repo}
}

func (s *auditLogServiceImpl) LogAction(ctx context.Context, entry models.AuditLogEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "ação do log de auditoria não pode ser vazia")
	}
	if strings.TrimSpace(entry.Description) == "" {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "descrição do log de auditoria não pode ser vazia")
	}

	entry.Description = utils.SanitizeInput(entry.Description)

	normalizedSeverity := strings.ToUpper(strings.TrimSpace(entry.Severity))
	if !models.ValidSeverities[normalizedSeverity] {
		appLogger.Warnf("Nível de severidade inválido '%s' fornecido para log. Usando 'INFO'. Ação: %s", entry.Severity, entry.Action)
		normalizedSeverity = "INFO"
	}
	entry.Severity = normalizedSeverity

	if strings.TrimSpace(entry.Username) == "" {
		entry.Username = systemActor
	}
	if entry.IPAddress != nil && strings.TrimSpace(*entry.IPAddress) == "" {
		entry.IPAddress = nil
	}

	if len(entry.Description) > maxAuditDescription {
		entry.Description = entry.Description[:maxAuditDescription-3] + "..."
		appLogger.Warnf("Descrição do log de auditoria truncada para %d caracteres. Ação: %s", maxAuditDescription, entry.Action)
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if _, err := s.repo.Create(ctx, entry); err != nil {
		return appErrors.WrapErrorf(err, "falha ao persistir log de auditoria (Ação: %s)", entry.Action)
	}
	return nil
}

func (s *auditLogServiceImpl) GetAuditLogs(ctx context.Context, filter repositories.AuditLogFilter) ([]models.AuditLogEntry, int64, error) {
	if filter.Limit > 1000 {
		appLogger.Warnf("Solicitação de GetAuditLogs com limite > 1000. Reduzido para 1000.")
	}
	logs, total, err := s.repo.GetFiltered(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.WrapErrorf(err, "falha ao buscar logs de auditoria do repositório")
	}
	return logs, total, nil
}
