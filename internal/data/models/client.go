package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// StringList guarda uma lista de strings como JSON (funciona em SQLite e PostgreSQL).
type StringList []string

// Value implementa driver.Valuer.
func (sl StringList) Value() (driver.Value, error) {
	if sl == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(sl))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implementa sql.Scanner.
func (sl *StringList) Scan(value interface{}) error {
	if value == nil {
		*sl = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("tipo de valor inválido para StringList scan, esperado []byte ou string")
	}
	if len(b) == 0 {
		*sl = nil
		return nil
	}
	return json.Unmarshal(b, (*[]string)(sl))
}

// DBClient representa um cliente de uma conta (tabela clients).
type DBClient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`

	FullName  string `gorm:"type:varchar(255);not null"`
	PhoneE164 string `gorm:"column:phone_e164;type:varchar(16);not null;index"`

	Emails       StringList `gorm:"type:text"`
	CPF          *string    `gorm:"column:cpf;type:varchar(11)"`
	CNPJ         *string    `gorm:"column:cnpj;type:varchar(14)"`
	BirthDate    *string    `gorm:"type:varchar(10)"` // AAAA-MM-DD
	CompanyName  *string    `gorm:"type:varchar(255)"`
	Tags         StringList `gorm:"type:text"`
	Status       *string    `gorm:"type:varchar(20)"`
	ZipCode      *string    `gorm:"type:varchar(20)"`
	Street       *string    `gorm:"type:varchar(255)"`
	StreetNumber *string    `gorm:"type:varchar(20)"`
	Neighborhood *string    `gorm:"type:varchar(100)"`
	City         *string    `gorm:"type:varchar(100)"`
	State        *string    `gorm:"type:varchar(50)"`
	Notes        *string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// TableName especifica o nome da tabela para GORM.
func (DBClient) TableName() string {
	return "clients"
}

// ClientInsert é o formato de escrita de um cliente importado.
// Campos opcionais ausentes são omitidos, nunca enviados como null.
type ClientInsert struct {
	AccountID    uuid.UUID `json:"account_id"`
	FullName     string    `json:"full_name"`
	PhoneE164    string    `json:"phone_e164"`
	Emails       []string  `json:"emails,omitempty"`
	CPF          *string   `json:"cpf,omitempty"`
	CNPJ         *string   `json:"cnpj,omitempty"`
	BirthDate    *string   `json:"birth_date,omitempty"`
	CompanyName  *string   `json:"company_name,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Status       *string   `json:"status,omitempty"`
	ZipCode      *string   `json:"zip_code,omitempty"`
	Street       *string   `json:"street,omitempty"`
	StreetNumber *string   `json:"street_number,omitempty"`
	Neighborhood *string   `json:"neighborhood,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

// ToDBClient converte para o modelo do banco com um ID novo.
func (ci ClientInsert) ToDBClient() *DBClient {
	c := &DBClient{
		ID:           uuid.New(),
		AccountID:    ci.AccountID,
		FullName:     ci.FullName,
		PhoneE164:    ci.PhoneE164,
		CPF:          ci.CPF,
		CNPJ:         ci.CNPJ,
		BirthDate:    ci.BirthDate,
		CompanyName:  ci.CompanyName,
		Status:       ci.Status,
		ZipCode:      ci.ZipCode,
		Street:       ci.Street,
		StreetNumber: ci.StreetNumber,
		Neighborhood: ci.Neighborhood,
		City:         ci.City,
		State:        ci.State,
		Notes:        ci.Notes,
	}
	if len(ci.Emails) > 0 {
		c.Emails = StringList(ci.Emails)
	}
	if len(ci.Tags) > 0 {
		c.Tags = StringList(ci.Tags)
	}
	return c
}

// ClientPublic é o DTO exposto pela API e pela CLI.
type ClientPublic struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	FullName     string    `json:"full_name"`
	PhoneE164    string    `json:"phone_e164"`
	Emails       []string  `json:"emails,omitempty"`
	CPF          *string   `json:"cpf,omitempty"`
	CNPJ         *string   `json:"cnpj,omitempty"`
	BirthDate    *string   `json:"birth_date,omitempty"`
	CompanyName  *string   `json:"company_name,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Status       *string   `json:"status,omitempty"`
	ZipCode      *string   `json:"zip_code,omitempty"`
	Street       *string   `json:"street,omitempty"`
	StreetNumber *string   `json:"street_number,omitempty"`
	Neighborhood *string   `json:"neighborhood,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToClientPublic converte DBClient para ClientPublic.
func ToClientPublic(c *DBClient) *ClientPublic {
	if c == nil {
		return nil
	}
	return &ClientPublic{
		ID:           c.ID,
		AccountID:    c.AccountID,
		FullName:     c.FullName,
		PhoneE164:    c.PhoneE164,
		Emails:       []string(c.Emails),
		CPF:          c.CPF,
		CNPJ:         c.CNPJ,
		BirthDate:    c.BirthDate,
		CompanyName:  c.CompanyName,
		Tags:         []string(c.Tags),
		Status:       c.Status,
		ZipCode:      c.ZipCode,
		Street:       c.Street,
		StreetNumber: c.StreetNumber,
		Neighborhood: c.Neighborhood,
		City:         c.City,
		State:        c.State,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt,
	}
}

// ToClientPublicList converte uma lista de DBClient.
func ToClientPublicList(clients []*DBClient) []*ClientPublic {
	out := make([]*ClientPublic, len(clients))
	for i, c := range clients {
		out[i] = ToClientPublic(c)
	}
	return out
}
