// Package telemetry assembles the /stats JSON payload (spec.md §4.7).
// It is a supplemented feature relative to the original C server, which
// had no equivalent endpoint; the shape here is new but the ring
// counters it reports are sampled the same best-effort, lock-free way
// spec.md specifies for every other reader of Ring.Stats.
package telemetry

import (
	"time"

	"github.com/vhs-capture/cxadc-capture-server/internal/ring"
)

// RingStats is the per-ring block reported for the linear source and
// each raw source.
type RingStats struct {
	Read          uint64  `json:"read"`
	Written       uint64  `json:"written"`
	Difference    uint64  `json:"difference"`
	DifferencePct float64 `json:"difference_pct"`
}

func sample(r *ring.Ring) RingStats {
	read, written, diff := r.Stats()
	pct := 0.0
	if cap := r.Cap(); cap > 0 {
		pct = float64(diff) * 100 / float64(cap)
	}
	return RingStats{Read: read, Written: written, Difference: diff, DifferencePct: pct}
}

// Report is the full /stats body when the session is Running.
type Report struct {
	State     string      `json:"state"`
	SampledAt time.Time   `json:"sampled_at"`
	Overflows uint64      `json:"overflows"`
	Linear    *RingStats  `json:"linear,omitempty"`
	Cxadc     []RingStats `json:"cxadc"`
}

// IdleReport is the /stats body for any non-Running state.
type IdleReport struct {
	State     string    `json:"state"`
	SampledAt time.Time `json:"sampled_at"`
}

// NewIdleReport stamps an IdleReport with now, the cached clock reading
// taken by the caller (internal/clock.Cache.Now under sustained /stats
// polling, avoiding a clock_gettime syscall per request).
func NewIdleReport(state string, now time.Time) IdleReport {
	return IdleReport{State: state, SampledAt: now}
}

// BuildRunning assembles a Report from the session's live rings, stamped
// with now (see NewIdleReport).
func BuildRunning(state string, now time.Time, overflows uint64, linear *ring.Ring, raw []*ring.Ring) Report {
	rep := Report{State: state, SampledAt: now, Overflows: overflows, Cxadc: make([]RingStats, 0, len(raw))}
	if linear != nil {
		s := sample(linear)
		rep.Linear = &s
	}
	for _, r := range raw {
		if r == nil {
			continue
		}
		rep.Cxadc = append(rep.Cxadc, sample(r))
	}
	return rep
}
