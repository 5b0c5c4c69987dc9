package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/clientimport"
	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
)

const defaultSessionTTL = 30 * time.Minute

type storedSession struct {
	session      *clientimport.Session
	lastActivity time.Time
}

func (s *storedSession) isExpired(ttl time.Duration, now time.Time) bool {
	return now.After(s.lastActivity.Add(ttl))
}

// SessionStore guarda em memória as sessões de importação abertas pela API.
// Sessões sem atividade por mais de ttl são descartadas, exceto durante uma importação.
type SessionStore struct {
	ttl      time.Duration
	sessions map[uuid.UUID]*storedSession
	lock     sync.RWMutex
	now      func() time.Time

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewSessionStore cria o store. ttl <= 0 usa 30 minutos.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		ttl:          ttl,
		sessions:     make(map[uuid.UUID]*storedSession),
		now:          func() time.Time { return time.Now().UTC() },
		shutdownChan: make(chan struct{}),
	}
}

// StartCleanupGoroutine inicia a limpeza periódica das sessões expiradas.
func (st *SessionStore) StartCleanupGoroutine(interval time.Duration) {
	if interval <= 0 {
		interval = st.ttl / 2
	}
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		appLogger.Infof("Goroutine de limpeza de sessões de importação iniciada (intervalo: %v).", interval)
		for {
			select {
			case <-ticker.C:
				st.cleanupExpired()
			case <-st.shutdownChan:
				appLogger.Info("Goroutine de limpeza de sessões de importação recebendo sinal de shutdown.")
				return
			}
		}
	}()
}

// Shutdown para a goroutine de limpeza. Pode ser chamado mais de uma vez.
func (st *SessionStore) Shutdown() {
	st.shutdownOnce.Do(func() {
		close(st.shutdownChan)
	})
	st.wg.Wait()
}

// Put registra a sessão.
func (st *SessionStore) Put(session *clientimport.Session) {
	st.lock.Lock()
	defer st.lock.Unlock()
	st.sessions[session.ID] = &storedSession{session: session, lastActivity: st.now()}
	appLogger.Debugf("Sessão de importação %s registrada (conta %s, arquivo '%s').", session.ID, session.AccountID, session.FileName)
}

// Get devolve a sessão e renova sua validade. Sessões expiradas viram ErrNotFound.
func (st *SessionStore) Get(id uuid.UUID) (*clientimport.Session, error) {
	st.lock.Lock()
	defer st.lock.Unlock()

	stored, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: sessão de importação %s não encontrada", appErrors.ErrNotFound, id)
	}
	now := st.now()
	if stored.isExpired(st.ttl, now) && !stored.session.Importing() {
		delete(st.sessions, id)
		appLogger.Infof("Sessão de importação %s expirada durante Get. Removendo.", id)
		return nil, fmt.Errorf("%w: sessão de importação %s expirada", appErrors.ErrNotFound, id)
	}
	stored.lastActivity = now
	return stored.session, nil
}

// Delete descarta a sessão (cancelamento). Não é permitido durante a importação.
func (st *SessionStore) Delete(id uuid.UUID) error {
	st.lock.Lock()
	defer st.lock.Unlock()

	stored, ok := st.sessions[id]
	if !ok {
		return fmt.Errorf("%w: sessão de importação %s não encontrada", appErrors.ErrNotFound, id)
	}
	if stored.session.Importing() {
		return clientimport.ErrImportInProgress
	}
	delete(st.sessions, id)
	appLogger.Infof("Sessão de importação %s descartada.", id)
	return nil
}

// Len informa quantas sessões estão abertas.
func (st *SessionStore) Len() int {
	st.lock.RLock()
	defer st.lock.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) cleanupExpired() int {
	st.lock.Lock()
	defer st.lock.Unlock()

	now := st.now()
	cleaned := 0
	for id, stored := range st.sessions {
		if stored.isExpired(st.ttl, now) && !stored.session.Importing() {
			delete(st.sessions, id)
			cleaned++
		}
	}
	if cleaned > 0 {
		appLogger.Infof("Limpeza removeu %d sessões de importação expiradas.", cleaned)
	} else {
		appLogger.Debug("Limpeza de sessões de importação: nenhuma sessão expirada encontrada.")
	}
	return cleaned
}
