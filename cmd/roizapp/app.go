package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/repositories"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/services"
)

// application reúne as dependências montadas a partir da configuração.
type application struct {
	cfg     *core.Config
	db      *gorm.DB
	audit   services.AuditLogService
	imports services.ImportService
}

// bootstrap carrega configuração, logger e banco, e monta os serviços.
// O chamador deve chamar close ao terminar.
func bootstrap(envPath string) (*application, error) {
	cfg, err := core.LoadConfig(envPath)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("erro ao carregar configuração: %w", err))
	}

	if err := appLogger.SetupLogger(cfg); err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("erro ao configurar logger: %w", err))
	}
	appLogger.Infof("Iniciando %s v%s...", cfg.AppName, cfg.AppVersion)
	appLogger.Debugf("Modo Debug: %t", cfg.AppDebug)

	db, err := data.InitializeDB(cfg)
	if err != nil {
		return nil, withCode(exitDB, fmt.Errorf("erro ao inicializar banco de dados: %w", err))
	}

	audit := services.NewAuditLogService(repositories.NewGormAuditLogRepository(db))
	imports, err := services.NewImportService(cfg, audit,
		repositories.NewGormClientRepository(db, cfg.ImportBatchSize),
		repositories.NewGormImportMetadataRepository(db))
	if err != nil {
		_ = data.CloseDB(db)
		return nil, withCode(exitUsage, err)
	}

	appLogger.Info("Todos os serviços foram inicializados.")
	return &application{cfg: cfg, db: db, audit: audit, imports: imports}, nil
}

func (a *application) close() {
	if err := data.CloseDB(a.db); err != nil {
		appLogger.Errorf("Erro ao fechar conexão com banco de dados: %v", err)
	}
}
