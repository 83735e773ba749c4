package capture

import (
	"github.com/vhs-capture/cxadc-capture-server/internal/ring"
	"github.com/vhs-capture/cxadc-capture-server/internal/telemetry"
)

// Stats reports the /stats body (spec.md §4.7): an IdleReport whenever
// the session is not Running, otherwise a full Report sampled
// best-effort off the live rings.
func (m *Manager) Stats() any {
	state := m.state.load()
	sess := m.Session()
	if state != StateRunning || sess == nil {
		return telemetry.NewIdleReport(state.String(), m.now())
	}

	raw := make([]*ring.Ring, 0, len(sess.Raw))
	for _, rs := range sess.Raw {
		raw = append(raw, rs.Ring)
	}

	var linear *ring.Ring
	if sess.Linear != nil {
		linear = sess.Linear.Ring
	}

	return telemetry.BuildRunning(state.String(), m.now(), sess.Overflow.Load(), linear, raw)
}
