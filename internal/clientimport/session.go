package clientimport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Importer é o que a sessão precisa para concluir a importação (*Driver).
type Importer interface {
	Import(ctx context.Context, accountID uuid.UUID, records []CandidateRecord) (ImportOutcome, error)
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateImporting
	stateDone
)

// Session guarda uma importação entre a escolha do arquivo e a confirmação.
// É descartada no cancelamento e só pode ser confirmada com sucesso uma vez.
type Session struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	FileName  string
	Columns   ColumnMap
	Records   []CandidateRecord
	CreatedAt time.Time

	mu      sync.Mutex
	state   sessionState
	outcome *ImportOutcome
}

// NewSession cria a sessão a partir do resultado do parse.
func NewSession(accountID uuid.UUID, fileName string, result *ParseResult) *Session {
	return &Session{
		ID:        uuid.New(),
		AccountID: accountID,
		FileName:  fileName,
		Columns:   result.Columns,
		Records:   result.Records,
		CreatedAt: time.Now().UTC(),
	}
}

// Confirm executa a importação. Enquanto ela roda, outra confirmação recebe
// ErrImportInProgress; depois de um sucesso, ErrSessionConsumed. Uma falha
// devolve a sessão ao estado inicial para que o usuário possa tentar de novo.
func (s *Session) Confirm(ctx context.Context, imp Importer) (ImportOutcome, error) {
	s.mu.Lock()
	switch s.state {
	case stateImporting:
		s.mu.Unlock()
		return ImportOutcome{}, ErrImportInProgress
	case stateDone:
		s.mu.Unlock()
		return ImportOutcome{}, ErrSessionConsumed
	}
	s.state = stateImporting
	s.mu.Unlock()

	outcome, err := imp.Import(ctx, s.AccountID, s.Records)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = stateIdle
		return outcome, err
	}
	s.state = stateDone
	s.outcome = &outcome
	return outcome, nil
}

// Importing informa se há uma importação em andamento.
func (s *Session) Importing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateImporting
}

// Outcome devolve o resultado da importação concluída, se houver.
func (s *Session) Outcome() (ImportOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return ImportOutcome{}, false
	}
	return *s.outcome, true
}

// Summary são os totais mostrados na prévia.
type Summary struct {
	Total        int             `json:"total"`
	Valid        int             `json:"valid"`
	Invalid      int             `json:"invalid"`
	ValidPercent decimal.Decimal `json:"valid_percent"`
}

// Summary calcula os totais da prévia; o percentual tem uma casa decimal.
func (s *Session) Summary() Summary {
	sum := Summary{Total: len(s.Records)}
	for i := range s.Records {
		if s.Records[i].IsValid {
			sum.Valid++
		}
	}
	sum.Invalid = sum.Total - sum.Valid
	sum.ValidPercent = decimal.Zero
	if sum.Total > 0 {
		sum.ValidPercent = decimal.NewFromInt(int64(sum.Valid)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(sum.Total))).
			Round(1)
	}
	return sum
}
