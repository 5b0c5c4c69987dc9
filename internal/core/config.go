package core

import (
	"errors"
	"fmt"
	"log" // Usado para logs iniciais, antes que o logger da aplicação esteja configurado
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
)

// Modos de leitura do CSV de importação.
const (
	CSVModeCompat = "compat" // divisão simples por ',' ou ';' (comportamento legado)
	CSVModeStrict = "strict" // tokenizador CSV real, respeita aspas
)

// Config armazena todas as configurações da aplicação.
type Config struct {
	AppName    string
	AppVersion string
	AppDebug   bool

	// Database
	DBEngine   string
	DBName     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string

	// Logging
	LogDir         string
	LogLevel       string
	LogMaxBytes    int
	LogBackupCount int
	LogToConsole   bool

	// Export
	ExportDir string

	// HTTP
	HTTPAddr string

	// Importação de clientes
	ImportCSVMode      string
	ImportMaxFileBytes int64 // 0 = sem limite
	ImportBatchSize    int
	ImportSessionTTL   time.Duration
}

// LoadConfig carrega as configurações do arquivo .env especificado ou encontrado na árvore de diretórios.
func LoadConfig(envPath string) (*Config, error) {
	foundEnvPath, err := findEnvFile(envPath)
	if err != nil {
		log.Printf("Aviso: arquivo .env em '%s' não encontrado: %v. Usando variáveis de ambiente existentes.", envPath, err)
	} else {
		log.Printf("Carregando configurações de: %s", foundEnvPath)
		if err := godotenv.Load(foundEnvPath); err != nil {
			log.Printf("Aviso: erro ao carregar arquivo .env de '%s': %v. Usando valores padrão.", foundEnvPath, err)
		}
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ensureDir(cfg.LogDir, true); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de log essencial '%s': %w", cfg.LogDir, err)
	}
	if cfg.DBEngine == "sqlite" {
		sqliteDir := filepath.Dir(cfg.DBName)
		if sqliteDir != "." && sqliteDir != string(filepath.Separator) {
			if err := ensureDir(sqliteDir, true); err != nil {
				return nil, fmt.Errorf("falha ao criar diretório para banco de dados SQLite '%s': %w", sqliteDir, err)
			}
		}
	}
	_ = ensureDir(cfg.ExportDir, false)

	log.Println("Configurações carregadas e validadas.")
	return cfg, nil
}

// FromEnv monta a Config apenas a partir das variáveis de ambiente já carregadas, sem tocar no disco.
func FromEnv() *Config {
	cfg := &Config{}

	cfg.AppName = getEnv("APP_NAME", "ROY zAPP Clientes")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0-go")
	cfg.AppDebug = getEnvAsBool("APP_DEBUG", false)

	cfg.DBEngine = strings.ToLower(getEnv("APP_DB_ENGINE", "sqlite"))
	cfg.DBName = getEnv("APP_DB_NAME", "roizapp_clientes.db")
	cfg.DBHost = getEnv("APP_DB_HOST", "localhost")
	cfg.DBPort = getEnvAsInt("APP_DB_PORT", 5432)
	cfg.DBUser = getEnv("APP_DB_USER", "user")
	cfg.DBPassword = getEnv("APP_DB_PASSWORD", "password")

	cfg.LogDir = getEnv("APP_LOG_DIR", "./app_logs")
	cfg.LogLevel = strings.ToUpper(getEnv("APP_LOG_LEVEL", "INFO"))
	cfg.LogMaxBytes = getEnvAsInt("APP_LOG_MAX_BYTES", 5*1024*1024) // 5MB
	cfg.LogBackupCount = getEnvAsInt("APP_LOG_BACKUP_COUNT", 7)
	cfg.LogToConsole = getEnvAsBool("APP_LOG_TO_CONSOLE", true)

	cfg.ExportDir = getEnv("APP_EXPORT_DIR", "./app_exports")
	cfg.HTTPAddr = getEnv("APP_HTTP_ADDR", ":8080")

	cfg.ImportCSVMode = strings.ToLower(getEnv("APP_IMPORT_CSV_MODE", CSVModeCompat))
	cfg.ImportMaxFileBytes = int64(getEnvAsInt("APP_IMPORT_MAX_FILE_BYTES", 0))
	cfg.ImportBatchSize = getEnvAsInt("APP_IMPORT_BATCH_SIZE", 200)
	cfg.ImportSessionTTL = getEnvAsDuration("APP_IMPORT_SESSION_TTL", 1800) // 30 minutos

	return cfg
}

// Validate confere os valores que a aplicação não consegue corrigir sozinha.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.DBEngine, validation.Required, validation.In("sqlite", "postgresql")),
		validation.Field(&c.DBName, validation.Required),
		validation.Field(&c.DBPort, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogDir, validation.Required),
		validation.Field(&c.LogLevel, validation.In("TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "FATAL", "PANIC")),
		validation.Field(&c.ImportCSVMode, validation.Required, validation.In(CSVModeCompat, CSVModeStrict)),
		validation.Field(&c.ImportMaxFileBytes, validation.Min(int64(0))),
		validation.Field(&c.ImportBatchSize, validation.Required, validation.Min(1)),
		validation.Field(&c.ImportSessionTTL, validation.Required, validation.Min(time.Second)),
	)
	if err == nil {
		return nil
	}

	ve := appErrors.NewValidationError("configuração inválida", nil)
	ve.Underlying = appErrors.ErrConfiguration
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		ve.Fields = make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			ve.Fields[field] = fieldErr.Error()
		}
	} else {
		ve.Underlying = fmt.Errorf("%w: %v", appErrors.ErrConfiguration, err)
	}
	return ve
}

// findEnvFile tenta localizar o arquivo .env.
// Primeiro no path fornecido, depois subindo na árvore de diretórios a partir do CWD.
func findEnvFile(envPath string) (string, error) {
	if _, err := os.Stat(envPath); err == nil {
		absPath, _ := filepath.Abs(envPath)
		return absPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("não foi possível obter o diretório de trabalho atual: %w", err)
	}

	for i := 0; i < 5; i++ {
		tryPath := filepath.Join(cwd, ".env")
		if _, err := os.Stat(tryPath); err == nil {
			return tryPath, nil
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}
	return "", fmt.Errorf("arquivo .env não encontrado no caminho '%s' ou nos diretórios pais", envPath)
}

// ensureDir garante que um diretório exista. Com critical=false apenas loga a falha.
func ensureDir(dirPath string, critical bool) error {
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		msg := fmt.Sprintf("Não foi possível resolver o caminho absoluto para '%s': %v", dirPath, err)
		if critical {
			return errors.New(msg)
		}
		log.Println("AVISO:", msg)
		return nil
	}

	if err := os.MkdirAll(absPath, os.ModePerm); err != nil {
		msg := fmt.Sprintf("Não foi possível criar o diretório '%s': %v", absPath, err)
		if critical {
			return errors.New(msg)
		}
		log.Println("AVISO:", msg)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration lê a variável em segundos.
func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return time.Duration(value) * time.Second
	}
	return time.Duration(fallbackSeconds) * time.Second
}
