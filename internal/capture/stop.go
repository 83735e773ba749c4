package capture

import "time"

const consumerDrainSleep = 100 * time.Millisecond

// StopResult is the /stop response body. Overflows is present only on
// an actual stop (including zero), matching the original's file_stop,
// which only ever prints "overflows" alongside the final State_Idle
// report, never on a CAS-rejection response.
type StopResult struct {
	State     string  `json:"state"`
	Overflows *uint64 `json:"overflows,omitempty"`
}

// Stop runs the five-step orchestrator from spec.md §4.5.
func (m *Manager) Stop() StopResult {
	if _, ok := m.state.cas(StateRunning, StateStopping); !ok {
		return StopResult{State: m.state.load().String()}
	}

	sess := m.Session()
	sess.wg.Wait() // producers observe Stopping in their own loop and exit

	for {
		if allDetached(sess) {
			break
		}
		time.Sleep(consumerDrainSleep)
	}

	overflows := sess.Overflow.Load()
	for _, rs := range sess.Raw {
		rs.Ring.Close()
	}
	sess.Linear.Ring.Close()
	sess.RawIndex.Reset()
	m.session.Store(nil)

	m.state.store(StateIdle)
	return StopResult{State: StateIdle.String(), Overflows: &overflows}
}

func allDetached(sess *Session) bool {
	for _, rs := range sess.Raw {
		if rs.Cell.Attached() {
			return false
		}
	}
	return !sess.Linear.Cell.Attached()
}
