package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap" // Para Latin-1
	"golang.org/x/text/transform"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/clientimport"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core"
	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/metrics"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/repositories"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/utils"
)

// Ações registradas no log de auditoria.
const (
	AuditActionImportSuccess = "IMPORT_CLIENTS_SUCCESS"
	AuditActionImportFailed  = "IMPORT_CLIENTS_FAILED"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Colunas do relatório de prévia.
var reportHeaders = []string{"Linha", "Nome", "Telefone", "E-mail", "CPF", "CNPJ", "Situação", "Erros"}

// ImportService define a interface para o serviço de importação de clientes.
type ImportService interface {
	// OpenFile lê o arquivo do disco e devolve a sessão com a prévia.
	OpenFile(ctx context.Context, path string, accountID uuid.UUID) (*clientimport.Session, error)
	// Open faz o mesmo a partir do conteúdo já carregado (upload).
	Open(ctx context.Context, fileName string, content []byte, accountID uuid.UUID) (*clientimport.Session, error)
	// Confirm grava os registros válidos da sessão e registra auditoria e metadados.
	Confirm(ctx context.Context, session *clientimport.Session, actor string) (clientimport.ImportOutcome, error)

	ListClients(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*models.ClientPublic, int64, error)
	GetImportStatus(ctx context.Context, accountID uuid.UUID) (*models.ImportMetadataPublic, error)

	// ExportReport grava a prévia em CSV ou XLSX (pela extensão) e devolve o caminho final.
	ExportReport(session *clientimport.Session, outputPath string) (string, error)
}

type importServiceImpl struct {
	cfg                *core.Config
	mode               clientimport.Mode
	auditLogService    AuditLogService
	clientRepo         repositories.ClientRepository
	importMetadataRepo repositories.ImportMetadataRepository
	driver             *clientimport.Driver
}

// NewImportService cria uma nova instância de ImportService.
func NewImportService(
	cfg *core.Config,
	auditLog AuditLogService,
	clientRepo repositories.ClientRepository,
	imRepo repositories.ImportMetadataRepository,
) (ImportService, error) {
	if cfg == nil || auditLog == nil || clientRepo == nil || imRepo == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewImportService")
	}
	mode, err := clientimport.ParseMode(cfg.ImportCSVMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrConfiguration, err)
	}
	return &importServiceImpl{
		cfg:                cfg,
		mode:               mode,
		auditLogService:    auditLog,
		clientRepo:         clientRepo,
		importMetadataRepo: imRepo,
		driver:             clientimport.NewDriver(clientRepo),
	}, nil
}

func (s *importServiceImpl) OpenFile(ctx context.Context, path string, accountID uuid.UUID) (*clientimport.Session, error) {
	fileName := filepath.Base(path)
	if err := clientimport.CheckFileName(fileName); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		appLogger.Errorf("Erro ao acessar arquivo '%s': %v", path, err)
		return nil, fmt.Errorf("%w: falha ao ler arquivo '%s'", appErrors.ErrResourceLoading, fileName)
	}
	if err := s.checkSize(info.Size()); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		appLogger.Errorf("Erro ao ler arquivo '%s': %v", path, err)
		return nil, fmt.Errorf("%w: falha ao ler arquivo '%s'", appErrors.ErrResourceLoading, fileName)
	}
	return s.Open(ctx, fileName, content, accountID)
}

func (s *importServiceImpl) Open(ctx context.Context, fileName string, content []byte, accountID uuid.UUID) (*clientimport.Session, error) {
	if accountID == uuid.Nil {
		return nil, fmt.Errorf("%w: conta não informada", appErrors.ErrInvalidInput)
	}
	if err := clientimport.CheckFileName(fileName); err != nil {
		return nil, err
	}
	if err := s.checkSize(int64(len(content))); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, encoding, err := decodeText(content)
	if err != nil {
		appLogger.Errorf("Arquivo '%s' não pôde ser decodificado: %v", fileName, err)
		return nil, fmt.Errorf("%w: arquivo '%s' não pôde ser decodificado como UTF-8 ou Latin-1", appErrors.ErrValidation, fileName)
	}

	started := time.Now()
	result, err := clientimport.Parse(text, s.mode)
	metrics.ObserveParse(string(s.mode), time.Since(started).Seconds())
	if err != nil {
		appLogger.Warnf("Arquivo '%s' rejeitado (conta %s): %v", fileName, accountID, err)
		return nil, err
	}

	session := clientimport.NewSession(accountID, fileName, result)
	summary := session.Summary()
	appLogger.Infof("Arquivo '%s' (encoding: %s, modo: %s) lido: %d linhas, %d válidas, %d inválidas.",
		fileName, encoding, s.mode, summary.Total, summary.Valid, summary.Invalid)
	return session, nil
}

func (s *importServiceImpl) checkSize(size int64) error {
	if s.cfg.ImportMaxFileBytes > 0 && size > s.cfg.ImportMaxFileBytes {
		return fmt.Errorf("%w (%d bytes, máximo %d)", clientimport.ErrFileTooLarge, size, s.cfg.ImportMaxFileBytes)
	}
	return nil
}

// decodeText remove o BOM e converte o conteúdo para string UTF-8.
// Conteúdo que não é UTF-8 válido é lido como Latin-1.
func decodeText(content []byte) (string, string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), "UTF-8", nil
	}
	converted, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), content)
	if err != nil {
		return "", "", err
	}
	return string(converted), "Latin-1", nil
}

func (s *importServiceImpl) Confirm(ctx context.Context, session *clientimport.Session, actor string) (clientimport.ImportOutcome, error) {
	if session == nil {
		return clientimport.ImportOutcome{}, fmt.Errorf("%w: sessão de importação não informada", appErrors.ErrInvalidInput)
	}
	actor = utils.SanitizeInput(actor)
	if actor != "" && !utils.IsValidActorName(actor) {
		return clientimport.ImportOutcome{}, fmt.Errorf("%w: responsável '%s' inválido", appErrors.ErrInvalidInput, actor)
	}

	outcome, err := session.Confirm(ctx, s.driver)
	if errors.Is(err, clientimport.ErrImportInProgress) || errors.Is(err, clientimport.ErrSessionConsumed) {
		return outcome, err
	}

	summary := session.Summary()
	metrics.ObserveRows(metrics.ResultInvalid, summary.Invalid)

	status := models.ImportStatusSuccess
	switch {
	case errors.Is(err, clientimport.ErrNothingToImport):
		status = models.ImportStatusFailed
		metrics.ObserveBatch(metrics.ResultRejected)
	case err != nil:
		status = models.ImportStatusFailed
		metrics.ObserveBatch(metrics.ResultFailed)
		metrics.ObserveRows(metrics.ResultFailed, summary.Valid)
	default:
		metrics.ObserveBatch(metrics.ResultSuccess)
		metrics.ObserveRows(metrics.ResultImported, outcome.ImportedCount)
	}

	s.recordAudit(ctx, session, actor, outcome, err)
	s.recordMetadata(ctx, session, actor, status, outcome)

	if err != nil {
		appLogger.Errorf("Importação de '%s' (conta %s) falhou: %v", session.FileName, session.AccountID, err)
		return outcome, err
	}
	appLogger.Infof("Importação de '%s' (conta %s) concluída: %d importados, %d com erro.",
		session.FileName, session.AccountID, outcome.ImportedCount, outcome.FailedCount)
	return outcome, nil
}

// recordAudit e recordMetadata não desfazem a importação: falhas só são logadas.
func (s *importServiceImpl) recordAudit(ctx context.Context, session *clientimport.Session, actor string, outcome clientimport.ImportOutcome, importErr error) {
	entry := models.AuditLogEntry{
		Action:    AuditActionImportSuccess,
		Severity:  "INFO",
		Username:  actor,
		AccountID: &session.AccountID,
		Metadata: models.JSONMetadata{
			"session_id":     session.ID.String(),
			"filename":       session.FileName,
			"imported_count": outcome.ImportedCount,
			"failed_count":   outcome.FailedCount,
		},
		Description: fmt.Sprintf("Importação de clientes do arquivo '%s': %d importados, %d com erro.",
			session.FileName, outcome.ImportedCount, outcome.FailedCount),
	}
	if importErr != nil {
		entry.Action = AuditActionImportFailed
		entry.Severity = "ERROR"
		entry.Description = fmt.Sprintf("Falha na importação de clientes do arquivo '%s': %v", session.FileName, importErr)
	}
	if err := s.auditLogService.LogAction(ctx, entry); err != nil {
		appLogger.Warnf("Não foi possível registrar auditoria da importação '%s': %v", session.FileName, err)
	}
}

func (s *importServiceImpl) recordMetadata(ctx context.Context, session *clientimport.Session, actor, status string, outcome clientimport.ImportOutcome) {
	fileName := session.FileName
	imported, failed := outcome.ImportedCount, outcome.FailedCount
	_, err := s.importMetadataRepo.Upsert(ctx, models.ImportMetadataUpsert{
		AccountID:        session.AccountID,
		Status:           status,
		OriginalFilename: &fileName,
		ImportedCount:    &imported,
		FailedCount:      &failed,
		ImportedBy:       &actor,
	})
	if err != nil {
		appLogger.Warnf("Não foi possível atualizar metadados da importação '%s': %v", session.FileName, err)
	}
}

func (s *importServiceImpl) ListClients(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*models.ClientPublic, int64, error) {
	if accountID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: conta não informada", appErrors.ErrInvalidInput)
	}
	clients, total, err := s.clientRepo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, appErrors.WrapErrorf(err, "falha ao listar clientes da conta %s", accountID)
	}
	return models.ToClientPublicList(clients), total, nil
}

func (s *importServiceImpl) GetImportStatus(ctx context.Context, accountID uuid.UUID) (*models.ImportMetadataPublic, error) {
	meta, err := s.importMetadataRepo.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return models.ToImportMetadataPublic(meta), nil
}

func (s *importServiceImpl) ExportReport(session *clientimport.Session, outputPath string) (string, error) {
	if session == nil {
		return "", fmt.Errorf("%w: sessão de importação não informada", appErrors.ErrInvalidInput)
	}

	data := make([][]string, 0, len(session.Records)+1)
	data = append(data, reportHeaders)
	for i := range session.Records {
		data = append(data, reportRow(&session.Records[i]))
	}
	input, err := utils.NewSliceDataInput(data, "Prévia")
	if err != nil {
		return "", appErrors.WrapErrorf(err, "falha ao montar relatório da importação")
	}

	opts := &utils.ExportOptions{
		CreateBackup:    true,
		Sanitize:        true,
		SanitizeColumns: []string{"E-mail", "CPF", "CNPJ"},
		WithBOM:         true,
	}
	if strings.EqualFold(filepath.Ext(outputPath), ".xlsx") {
		return utils.ExportToXLSX([]utils.DataInput{input}, outputPath, s.cfg, opts)
	}
	return utils.ExportToCSV(input, outputPath, s.cfg, opts)
}

func reportRow(rec *clientimport.CandidateRecord) []string {
	situation := "Válido"
	if !rec.IsValid {
		situation = "Inválido"
	}
	phone := rec.PhoneE164
	if phone == "" {
		phone = rec.PhoneRaw
	}
	return []string{
		strconv.Itoa(rec.Line),
		rec.FullName,
		phone,
		deref(rec.Email),
		deref(rec.CPF),
		deref(rec.CNPJ),
		situation,
		rec.ErrorSummary,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
