package capture

import (
	"errors"
	"io"

	"github.com/vhs-capture/cxadc-capture-server/internal/pump"
)

// ErrNoSuchSource is returned by AttachRaw for an N outside the
// positional range declared in the active /start request.
var ErrNoSuchSource = errors.New("capture: no such raw source")

// ErrNoSession is returned by either Attach call when no session is
// published (CaptureState is not Running or Stopping).
var ErrNoSession = errors.New("capture: no active session")

// AttachRaw binds w to raw source n — the N in /cxadc?N, a positional
// index into the declaration order of the active /start request, not
// the underlying /dev/cxadcN device number.
func (m *Manager) AttachRaw(n int, w io.Writer) error {
	sess := m.Session()
	if sess == nil {
		return ErrNoSession
	}
	r := sess.RawIndex.Get(n)
	if r == nil || n < 0 || n >= len(sess.Raw) {
		return ErrNoSuchSource
	}
	return pump.Run(w, r, &sess.Raw[n].Cell, m.phase)
}

// AttachLinear binds w to the session's linear source.
func (m *Manager) AttachLinear(w io.Writer) error {
	sess := m.Session()
	if sess == nil || sess.Linear == nil {
		return ErrNoSession
	}
	return pump.Run(w, sess.Linear.Ring, &sess.Linear.Cell, m.phase)
}
