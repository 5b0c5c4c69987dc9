package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/clientimport"
	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/data/models"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/repositories"
)

const (
	maxMultipartMemory = 32 << 20
	actorHeader        = "X-Actor"
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type apiError struct {
	Code    string                      `json:"code"`
	Message string                      `json:"message"`
	Outcome *clientimport.ImportOutcome `json:"outcome,omitempty"`
}

type previewResponse struct {
	SessionID uuid.UUID                      `json:"session_id"`
	AccountID uuid.UUID                      `json:"account_id"`
	FileName  string                         `json:"file_name"`
	Columns   map[string]int                 `json:"columns"`
	Summary   clientimport.Summary           `json:"summary"`
	Records   []clientimport.CandidateRecord `json:"records"`
	Outcome   *clientimport.ImportOutcome    `json:"outcome,omitempty"`
}

type listResponse[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

func newPreviewResponse(session *clientimport.Session) previewResponse {
	resp := previewResponse{
		SessionID: session.ID,
		AccountID: session.AccountID,
		FileName:  session.FileName,
		Columns:   session.Columns.Mapping(),
		Summary:   session.Summary(),
		Records:   session.Records,
	}
	if outcome, ok := session.Outcome(); ok {
		resp.Outcome = &outcome
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		appLogger.Errorf("Erro ao serializar resposta JSON: %v", err)
	}
}

// writeError traduz os erros sentinela em status HTTP.
func writeError(w http.ResponseWriter, err error, outcome *clientimport.ImportOutcome) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, appErrors.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, appErrors.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, appErrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, appErrors.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	}
	if status == http.StatusInternalServerError {
		appLogger.Errorf("Erro interno na API: %v", err)
	}
	writeJSON(w, status, apiError{Code: code, Message: err.Error(), Outcome: outcome})
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: identificador inválido '%s'", appErrors.ErrInvalidInput, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: parâmetro '%s' inválido", appErrors.ErrInvalidInput, name)
	}
	return v, nil
}

func pagination(r *http.Request) (int, int, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"app":             s.cfg.AppName,
		"version":         s.cfg.AppVersion,
		"import_sessions": s.sessions.Len(),
	})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	var (
		buf         bytes.Buffer
		err         error
		contentType = "text/csv; charset=utf-8"
		fileName    = "modelo_clientes.csv"
	)
	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		contentType, fileName = xlsxContentType, "modelo_clientes.xlsx"
		err = clientimport.WriteTemplateXLSX(&buf)
	} else {
		err = clientimport.WriteTemplateCSV(&buf)
	}
	if err != nil {
		writeError(w, err, nil)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleOpenImport(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountID")
	if err != nil {
		writeError(w, err, nil)
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, fmt.Errorf("%w: formulário multipart inválido: %v", appErrors.ErrInvalidInput, err), nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: campo 'file' ausente", appErrors.ErrInvalidInput), nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: falha ao ler arquivo enviado: %v", appErrors.ErrResourceLoading, err), nil)
		return
	}

	session, err := s.importService.Open(r.Context(), header.Filename, content, accountID)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	s.sessions.Put(session)
	writeJSON(w, http.StatusCreated, newPreviewResponse(session))
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	session, err := s.lookupSession(r)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newPreviewResponse(session))
}

func (s *Server) handleConfirmImport(w http.ResponseWriter, r *http.Request) {
	session, err := s.lookupSession(r)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	actor := strings.TrimSpace(r.Header.Get(actorHeader))

	outcome, err := s.importService.Confirm(r.Context(), session, actor)
	if err != nil {
		if errors.Is(err, clientimport.ErrImportInProgress) || errors.Is(err, clientimport.ErrSessionConsumed) {
			writeError(w, err, nil)
			return
		}
		writeError(w, err, &outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleCancelImport(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "sessionID")
	if err != nil {
		writeError(w, err, nil)
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupSession(r *http.Request) (*clientimport.Session, error) {
	id, err := pathUUID(r, "sessionID")
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(id)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountID")
	if err != nil {
		writeError(w, err, nil)
		return
	}
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	clients, total, err := s.importService.ListClients(r.Context(), accountID, limit, offset)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[*models.ClientPublic]{Total: total, Items: clients})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountID")
	if err != nil {
		writeError(w, err, nil)
		return
	}
	status, err := s.importService.GetImportStatus(r.Context(), accountID)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathUUID(r, "accountID")
	if err != nil {
		writeError(w, err, nil)
		return
	}
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	filter := repositories.AuditLogFilter{
		AccountID: &accountID,
		Action:    strings.TrimSpace(r.URL.Query().Get("action")),
		Severity:  strings.TrimSpace(r.URL.Query().Get("severity")),
		Limit:     limit,
		Offset:    offset,
	}
	logs, total, err := s.auditService.GetAuditLogs(r.Context(), filter)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[models.AuditLogEntry]{Total: total, Items: logs})
}
