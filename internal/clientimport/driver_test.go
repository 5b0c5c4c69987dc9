package clientimport

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
)

type fakeWriter struct {
	calls   int
	batches [][]models.ClientInsert
	err     error
}

func (f *fakeWriter) BulkInsert(_ context.Context, clients []models.ClientInsert) error {
	f.calls++
	f.batches = append(f.batches, clients)
	return f.err
}

func parseThreeRows(t *testing.T) []CandidateRecord {
	t.Helper()
	res, err := Parse(threeRows, ModeCompat)
	require.NoError(t, err)
	return res.Records
}

func TestDriverImportSuccess(t *testing.T) {
	w := &fakeWriter{}
	account := uuid.New()

	outcome, err := NewDriver(w).Import(context.Background(), account, parseThreeRows(t))
	require.NoError(t, err)

	assert.Equal(t, 1, w.calls)
	require.Len(t, w.batches[0], 1)
	got := w.batches[0][0]
	assert.Equal(t, account, got.AccountID)
	assert.Equal(t, "João Silva", got.FullName)
	assert.Equal(t, "+5511999999999", got.PhoneE164)
	assert.Equal(t, []string{"joao@email.com"}, got.Emails)
	assert.Nil(t, got.CPF)
	assert.Nil(t, got.Tags)

	assert.Equal(t, 1, outcome.ImportedCount)
	assert.Equal(t, 2, outcome.FailedCount)
	assert.Equal(t, []string{
		"Linha 3: Nome vazio",
		"Linha 4: Formato inválido. Ex: +5511999999999",
	}, outcome.Errors)
}

func TestDriverImportWriterFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("conexão recusada")}

	outcome, err := NewDriver(w).Import(context.Background(), uuid.New(), parseThreeRows(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDataImport))
	assert.Contains(t, err.Error(), "conexão recusada")

	assert.Equal(t, 1, w.calls, "sem nova tentativa")
	assert.Equal(t, 0, outcome.ImportedCount)
	assert.Equal(t, 3, outcome.FailedCount)
	assert.Equal(t, []string{"conexão recusada"}, outcome.Errors)
}

func TestDriverImportNothingValid(t *testing.T) {
	w := &fakeWriter{}
	records := []CandidateRecord{{Line: 2, ErrorSummary: MsgNameEmpty}}

	outcome, err := NewDriver(w).Import(context.Background(), uuid.New(), records)
	assert.ErrorIs(t, err, ErrNothingToImport)
	assert.Equal(t, 0, w.calls)
	assert.Equal(t, 0, outcome.ImportedCount)
	assert.Equal(t, 1, outcome.FailedCount)
}

func TestToClientInsertOmitsAbsentFields(t *testing.T) {
	status := StatusPaused
	city := "Canoas"
	rec := CandidateRecord{FullName: "Ana", PhoneE164: "+5511977777777", Status: &status, City: &city, IsValid: true}

	ci := toClientInsert(uuid.New(), &rec)
	require.NotNil(t, ci.Status)
	assert.Equal(t, "paused", *ci.Status)
	assert.Equal(t, &city, ci.City)
	assert.Nil(t, ci.Emails)
	assert.Nil(t, ci.Notes)
}
