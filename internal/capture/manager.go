package capture

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vhs-capture/cxadc-capture-server/internal/clock"
	"github.com/vhs-capture/cxadc-capture-server/internal/lifecycle"
)

// Manager is the process-wide owner of the capture state machine and
// the currently published Session, if any. One Manager exists per
// process (constructed once in cmd/cxadc-capture-server/main.go and
// threaded through internal/httpapi), never package-level global state.
type Manager struct {
	state   atomicState
	session atomic.Pointer[Session] // published only while state is Running or Stopping

	log   zerolog.Logger
	clock *clock.Cache
}

// NewManager wires a Manager to a logger and a timestamp cache.
func NewManager(log zerolog.Logger, clk *clock.Cache) *Manager {
	return &Manager{log: log, clock: clk}
}

// State reports the current CaptureState.
func (m *Manager) State() State { return m.state.load() }

// phase adapts the manager's CaptureState into the lifecycle.Phase
// vocabulary the producer and pump loops check against. Idle maps to
// Starting: both just mean "no session published yet, keep waiting",
// which is exactly how the producer/pump loops treat that phase.
func (m *Manager) phase() lifecycle.Phase {
	switch m.state.load() {
	case StateRunning:
		return lifecycle.Running
	case StateStopping:
		return lifecycle.Stopping
	case StateFailed:
		return lifecycle.Failed
	default:
		return lifecycle.Starting
	}
}

// Session returns the currently published session, or nil.
func (m *Manager) Session() *Session { return m.session.Load() }

// now reads the cached clock, the same low-overhead timestamp source
// /stats sampling is built against, falling back to time.Now when no
// cache was wired (e.g. tests constructing a bare Manager).
func (m *Manager) now() time.Time {
	if m.clock != nil {
		return m.clock.Now()
	}
	return time.Now()
}
