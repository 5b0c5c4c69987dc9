package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Resultado da última importação de uma conta.
const (
	ImportStatusSuccess = "SUCCESS"
	ImportStatusFailed  = "FAILED"
)

// DBImportMetadata guarda a última importação de clientes de cada conta.
type DBImportMetadata struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	// AccountID é único: há uma linha por conta, sobrescrita a cada importação.
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	LastUpdatedAt time.Time `gorm:"not null"`

	// Status é ImportStatusSuccess ou ImportStatusFailed.
	Status string `gorm:"type:varchar(10);not null"`

	OriginalFilename *string `gorm:"type:varchar(255)"`
	ImportedCount    *int    `gorm:"type:integer"`
	FailedCount      *int    `gorm:"type:integer"`
	ImportedBy       *string `gorm:"type:varchar(100)"`
}

// TableName especifica o nome da tabela para GORM.
func (DBImportMetadata) TableName() string {
	return "import_metadata"
}

// ImportMetadataPublic representa os metadados de importação para a API e a CLI.
type ImportMetadataPublic struct {
	AccountID        uuid.UUID `json:"account_id"`
	LastUpdatedAt    time.Time `json:"last_updated_at"`
	Status           string    `json:"status"`
	OriginalFilename *string   `json:"original_filename,omitempty"`
	ImportedCount    *int      `json:"imported_count,omitempty"`
	FailedCount      *int      `json:"failed_count,omitempty"`
	ImportedBy       *string   `json:"imported_by,omitempty"`
}

// ToImportMetadataPublic converte DBImportMetadata para ImportMetadataPublic.
func ToImportMetadataPublic(dbMeta *DBImportMetadata) *ImportMetadataPublic {
	if dbMeta == nil {
		return nil
	}
	return &ImportMetadataPublic{
		AccountID:        dbMeta.AccountID,
		LastUpdatedAt:    dbMeta.LastUpdatedAt,
		Status:           dbMeta.Status,
		OriginalFilename: dbMeta.OriginalFilename,
		ImportedCount:    dbMeta.ImportedCount,
		FailedCount:      dbMeta.FailedCount,
		ImportedBy:       dbMeta.ImportedBy,
	}
}

// ImportMetadataUpsert são os campos gravados ao fim de uma importação.
// LastUpdatedAt é sempre o momento da operação.
type ImportMetadataUpsert struct {
	AccountID        uuid.UUID
	Status           string
	OriginalFilename *string
	ImportedCount    *int
	FailedCount      *int
	ImportedBy       *string
}

// Normalize padroniza o Status em maiúsculas e descarta ImportedBy vazio.
func (imu *ImportMetadataUpsert) Normalize() {
	if imu == nil {
		return
	}
	imu.Status = strings.ToUpper(strings.TrimSpace(imu.Status))
	if imu.ImportedBy != nil && strings.TrimSpace(*imu.ImportedBy) == "" {
		imu.ImportedBy = nil
	}
}
