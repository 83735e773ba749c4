// Package pump implements the attachment pump (spec.md §4.6): one
// goroutine per attached HTTP response, draining a single Source's Ring
// into the response socket for as long as the session stays Running or
// Stopping.
package pump

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/vhs-capture/cxadc-capture-server/internal/captureerr"
	"github.com/vhs-capture/cxadc-capture-server/internal/lifecycle"
	"github.com/vhs-capture/cxadc-capture-server/internal/ring"
)

const (
	waitSleep  = time.Microsecond
	emptySleep = time.Microsecond
)

// StateCheck reports the current lifecycle phase, decoupling this
// package from internal/capture's full state machine.
type StateCheck func() lifecycle.Phase

// Cell is a Source's consumer-thread handle cell.
type Cell struct {
	tok atomic.Uint64
}

// Attached reports whether a pump currently holds this cell, the
// condition the stop orchestrator's busy-wait (spec.md §4.5 step 3)
// polls for.
func (c *Cell) Attached() bool { return c.tok.Load() != 0 }

var nextToken atomic.Uint64

// newToken allocates a nonzero token identifying this attachment, the
// idiomatic substitute for an OS thread id (Go exposes none to user
// code) while preserving the CAS exclusivity invariant on the cell.
func newToken() uint64 {
	for {
		t := nextToken.Add(1)
		if t != 0 {
			return t
		}
	}
}

// ErrAlreadyAttached is returned when another client already owns the
// source's consumer cell.
var ErrAlreadyAttached = captureerr.Wrap("pump.Attach", captureerr.ClientGone, errors.New("source already attached"))

// Run binds w to r for the lifetime of one attachment. It returns nil
// on ordinary completion (session stopped and the ring drained) or on
// a client disconnect; it returns an error only if the cell was
// already held by another client.
func Run(w io.Writer, r *ring.Ring, cell *Cell, check StateCheck) error {
	tok := newToken()
	if !cell.tok.CompareAndSwap(0, tok) {
		return ErrAlreadyAttached
	}
	defer cell.tok.Store(0)

	for {
		phase := check()
		if phase == lifecycle.Running || phase == lifecycle.Stopping {
			break
		}
		time.Sleep(waitSleep)
	}

	for {
		phase := check()
		if phase != lifecycle.Running && phase != lifecycle.Stopping {
			break
		}

		slice := r.ReaderSlice()
		if len(slice) == 0 {
			if phase == lifecycle.Stopping {
				break
			}
			time.Sleep(emptySleep)
			continue
		}

		n, err := w.Write(slice)
		if n > 0 {
			r.CommitRead(n)
		}
		if err != nil {
			return nil // client gone; not an error condition for the orchestrator
		}
		if n == 0 {
			continue
		}
	}
	return nil
}
