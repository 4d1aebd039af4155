package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// BackendMonitor records whether the SKY24 API answered its last ping. It
// only reports; requests never wait on it.
type BackendMonitor struct {
	pinger  Pinger
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	checked   bool
	lastErr   error
	checkedAt time.Time
}

func NewBackendMonitor(pinger Pinger, timeout time.Duration, log zerolog.Logger) *BackendMonitor {
	return &BackendMonitor{
		pinger:  pinger,
		timeout: timeout,
		log:     log.With().Str("job", "backend_monitor").Logger(),
		now:     time.Now,
	}
}

func (m *BackendMonitor) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	err := m.pinger.Ping(ctx)

	m.mu.Lock()
	wasDown := m.checked && m.lastErr != nil
	m.checked = true
	m.lastErr = err
	m.checkedAt = m.now()
	m.mu.Unlock()

	switch {
	case err != nil:
		m.log.Warn().Err(err).Msg("backend unreachable")
	case wasDown:
		m.log.Info().Msg("backend reachable again")
	}
}

// Status is "ok", "unknown" before the first run, or the last error.
func (m *BackendMonitor) Status() (bool, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.checked {
		return true, "unknown"
	}
	if m.lastErr != nil {
		return false, m.lastErr.Error()
	}
	return true, "ok"
}
