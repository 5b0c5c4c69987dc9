package clientimport

import (
	"fmt"
	"path/filepath"
	"strings"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
)

// Falhas de arquivo (o arquivo inteiro é rejeitado) e de ciclo da sessão.
var (
	ErrInvalidExtension = fmt.Errorf("%w: o arquivo precisa ter extensão .csv", appErrors.ErrValidation)
	ErrNotEnoughLines   = fmt.Errorf("%w: o arquivo precisa ter cabeçalho e pelo menos uma linha de dados", appErrors.ErrValidation)
	ErrMissingColumns   = fmt.Errorf("%w: colunas obrigatórias ausentes", appErrors.ErrValidation)
	ErrMalformedFile    = fmt.Errorf("%w: arquivo CSV mal formado", appErrors.ErrValidation)
	ErrFileTooLarge     = fmt.Errorf("%w: arquivo excede o tamanho máximo permitido", appErrors.ErrValidation)
	ErrNothingToImport  = fmt.Errorf("%w: nenhum registro válido para importar", appErrors.ErrValidation)

	ErrImportInProgress = fmt.Errorf("%w: importação já em andamento", appErrors.ErrConflict)
	ErrSessionConsumed  = fmt.Errorf("%w: esta importação já foi concluída", appErrors.ErrConflict)
)

// MissingColumnsError informa quais colunas obrigatórias faltam no cabeçalho.
type MissingColumnsError struct {
	Fields []Field
}

func (e *MissingColumnsError) Error() string {
	labels := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		labels[i] = f.label()
	}
	return fmt.Sprintf("colunas obrigatórias ausentes: %s", strings.Join(labels, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns || target == appErrors.ErrValidation
}

// CheckFileName aceita apenas nomes terminados em .csv (sem olhar o conteúdo).
func CheckFileName(name string) error {
	if !strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".csv") {
		return ErrInvalidExtension
	}
	return nil
}
