package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/metrics"
	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/services"
)

// Server expõe a importação de clientes via HTTP.
type Server struct {
	cfg           *core.Config
	importService services.ImportService
	auditService  services.AuditLogService
	sessions      *SessionStore
	router        *mux.Router
}

// New monta o servidor e suas rotas.
func New(cfg *core.Config, importService services.ImportService, auditService services.AuditLogService, sessions *SessionStore) *Server {
	if cfg == nil || importService == nil || auditService == nil || sessions == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para server.New")
	}
	s := &Server{
		cfg:           cfg,
		importService: importService,
		auditService:  auditService,
		sessions:      sessions,
		router:        mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(requestLogger)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	metrics.Register(s.router, "/metrics")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/clients/import-template", s.handleTemplate).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{accountID}/clients", s.handleListClients).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{accountID}/clients/imports", s.handleOpenImport).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{accountID}/clients/imports/status", s.handleImportStatus).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{accountID}/audit-logs", s.handleAuditLogs).Methods(http.MethodGet)
	api.HandleFunc("/imports/{sessionID}", s.handleGetImport).Methods(http.MethodGet)
	api.HandleFunc("/imports/{sessionID}", s.handleCancelImport).Methods(http.MethodDelete)
	api.HandleFunc("/imports/{sessionID}/confirm", s.handleConfirmImport).Methods(http.MethodPost)
}

// Handler devolve o roteador (usado também pelos testes).
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe atende em addr até ctx ser cancelado e então encerra com prazo de 10s.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Infof("Servidor HTTP ouvindo em %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	appLogger.Info("Encerrando servidor HTTP...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLogger.Info("Servidor HTTP encerrado.")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLogger.WithFields(logrus.Fields{
			"component":   "http",
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Debug("requisição atendida")
	})
}
