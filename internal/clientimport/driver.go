package clientimport

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
)

// ClientWriter grava um lote de clientes numa única chamada (tudo ou nada).
type ClientWriter interface {
	BulkInsert(ctx context.Context, clients []models.ClientInsert) error
}

// ImportOutcome resume o envio de um lote.
type ImportOutcome struct {
	ImportedCount int      `json:"imported_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors"`
}

// Driver filtra os registros válidos e os envia ao ClientWriter.
type Driver struct {
	writer ClientWriter
}

// NewDriver cria um Driver.
func NewDriver(w ClientWriter) *Driver {
	return &Driver{writer: w}
}

// Import envia todos os registros válidos em uma única escrita.
// Se a escrita falhar nada é contado como importado e o erro volta
// uma única vez, sem nova tentativa e sem atribuição por linha.
func (d *Driver) Import(ctx context.Context, accountID uuid.UUID, records []CandidateRecord) (ImportOutcome, error) {
	batch := make([]models.ClientInsert, 0, len(records))
	invalid := []string{}
	for i := range records {
		rec := &records[i]
		if !rec.IsValid {
			invalid = append(invalid, fmt.Sprintf("Linha %d: %s", rec.Line, rec.ErrorSummary))
			continue
		}
		batch = append(batch, toClientInsert(accountID, rec))
	}

	if len(batch) == 0 {
		return ImportOutcome{FailedCount: len(invalid), Errors: invalid}, ErrNothingToImport
	}

	if err := d.writer.BulkInsert(ctx, batch); err != nil {
		return ImportOutcome{
			ImportedCount: 0,
			FailedCount:   len(records),
			Errors:        []string{err.Error()},
		}, appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrDataImport, err), "falha ao gravar %d clientes", len(batch))
	}

	return ImportOutcome{
		ImportedCount: len(batch),
		FailedCount:   len(invalid),
		Errors:        invalid,
	}, nil
}

func toClientInsert(accountID uuid.UUID, rec *CandidateRecord) models.ClientInsert {
	ci := models.ClientInsert{
		AccountID:    accountID,
		FullName:     rec.FullName,
		PhoneE164:    rec.PhoneE164,
		CPF:          rec.CPF,
		CNPJ:         rec.CNPJ,
		BirthDate:    rec.BirthDate,
		CompanyName:  rec.CompanyName,
		Tags:         rec.Tags,
		ZipCode:      rec.Zip,
		Street:       rec.Street,
		StreetNumber: rec.StreetNumber,
		Neighborhood: rec.Neighborhood,
		City:         rec.City,
		State:        rec.State,
		Notes:        rec.Notes,
	}
	if rec.Email != nil {
		ci.Emails = []string{*rec.Email}
	}
	if rec.Status != nil {
		s := string(*rec.Status)
		ci.Status = &s
	}
	return ci
}
