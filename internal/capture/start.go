package capture

import (
	"time"

	"github.com/vhs-capture/cxadc-capture-server/internal/linearsource"
	"github.com/vhs-capture/cxadc-capture-server/internal/rawsource"
	"github.com/vhs-capture/cxadc-capture-server/internal/ring"
)

const (
	rawRingSize    = 1 << 30 // 1 GiB per raw source, spec.md §4.4 step 4
	linearRingUnit = 2 << 20 // 2 MiB × frame_bytes, spec.md §4.4 step 6
)

// StartResult is the /start response body for every outcome: a CAS
// rejection (only State set), a rollback (State == "Failed" plus
// FailReason), or success (all fields set).
type StartResult struct {
	State          string `json:"state"`
	LinearNs       int64  `json:"linear_ns,omitempty"`
	CxadcNs        int64  `json:"cxadc_ns,omitempty"`
	LinearRate     int    `json:"linear_rate,omitempty"`
	LinearChannels int    `json:"linear_channels,omitempty"`
	LinearFormat   string `json:"linear_format,omitempty"`
	FailReason     string `json:"fail_reason,omitempty"`
}

// Start runs the ten-step orchestrator algorithm from spec.md §4.4.
func (m *Manager) Start(tokens []string) StartResult {
	if _, ok := m.state.cas(StateIdle, StateStarting); !ok {
		return StartResult{State: m.state.load().String()}
	}

	params := ParseStartParams(tokens)
	sess := newSession()

	if reason := m.buildSession(sess, params); reason != "" {
		m.rollback(sess, reason)
		return StartResult{State: StateFailed.String(), FailReason: reason}
	}

	m.spawnProducers(sess)
	m.session.Store(sess)
	m.state.store(StateRunning)

	return StartResult{
		State:          StateRunning.String(),
		LinearNs:       sess.linearNs,
		CxadcNs:        sess.cxadcNs,
		LinearRate:     sess.Linear.Rate,
		LinearChannels: sess.Linear.Channels,
		LinearFormat:   sess.Linear.Format,
	}
}

// buildSession performs steps 4–8: ring allocation, device negotiation
// and opening. It returns a non-empty failure message on the first
// error, leaving sess partially populated for rollback to unwind.
func (m *Manager) buildSession(sess *Session, params StartParams) string {
	sess.Raw = make([]*RawSource, len(params.RawDeviceNums))
	for i, devNum := range params.RawDeviceNums {
		r, err := ring.Init(rawRingSize)
		if err != nil {
			return err.Error()
		}
		sess.Raw[i] = &RawSource{DeviceNum: devNum, Fd: -1, Ring: r, done: make(chan struct{})}
		sess.RawIndex.Set(i, r)
	}

	negotiated, err := linearsource.Resolve(linearsource.Params{
		DeviceName: params.LinearName,
		Rate:       params.LinearRate,
		Channels:   params.LinearChannels,
	})
	if err != nil {
		return err.Error()
	}

	format := params.LinearFormat
	if format == "" {
		format = "s16le"
	}

	lr, err := ring.Init(linearRingUnit * negotiated.FrameBytes)
	if err != nil {
		return err.Error()
	}

	before := time.Now()
	stream, readBuf, err := linearsource.Open(negotiated)
	if err != nil {
		lr.Close()
		return err.Error()
	}
	linearStarted := time.Now()

	sess.Linear = &LinearSource{
		Stream:     stream,
		ReadBuf:    readBuf,
		Ring:       lr,
		Rate:       negotiated.Rate,
		Channels:   negotiated.Channels,
		Format:     format,
		FrameBytes: negotiated.FrameBytes,
		done:       make(chan struct{}),
	}
	sess.linearNs = linearStarted.Sub(before).Nanoseconds()

	for i, rs := range sess.Raw {
		fd, err := rawsource.Open(rs.DeviceNum)
		if err != nil {
			return err.Error()
		}
		sess.Raw[i].Fd = fd
	}
	sess.cxadcNs = time.Since(linearStarted).Nanoseconds()

	return ""
}

// spawnProducers launches step 9: one goroutine per raw source, then
// the linear producer, each joined by sess.wg on stop.
func (m *Manager) spawnProducers(sess *Session) {
	for _, rs := range sess.Raw {
		rs := rs
		sess.wg.Add(1)
		go func() {
			defer sess.wg.Done()
			defer close(rs.done)
			if err := rawsource.Run(rs.Fd, rs.Ring, m.phase, &sess.Overflow); err != nil {
				m.log.Error().Err(err).Int("cxadc", rs.DeviceNum).Msg("raw producer exited")
			}
			rawsource.Close(rs.Fd)
		}()
	}

	lin := sess.Linear
	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		defer close(lin.done)
		if err := linearsource.Run(lin.Stream, lin.ReadBuf, lin.FrameBytes, lin.Ring, m.phase, &sess.Overflow); err != nil {
			m.log.Error().Err(err).Msg("linear producer exited")
		}
		lin.Stream.Stop()
		lin.Stream.Close()
	}()
}

// rollback implements spec.md §4.4's failure handling: no thread, fd,
// or mapping may remain alive once this returns, and state lands back
// at Idle via Failed.
func (m *Manager) rollback(sess *Session, reason string) {
	m.state.store(StateFailed)
	m.log.Error().Str("reason", reason).Msg("start rollback")

	for _, rs := range sess.Raw {
		if rs == nil {
			continue
		}
		rawsource.Close(rs.Fd)
		if rs.Ring != nil {
			rs.Ring.Close()
		}
	}
	sess.RawIndex.Reset()

	if sess.Linear != nil {
		if sess.Linear.Stream != nil {
			sess.Linear.Stream.Stop()
			sess.Linear.Stream.Close()
		}
		if sess.Linear.Ring != nil {
			sess.Linear.Ring.Close()
		}
	}

	m.state.store(StateIdle)
}

