// Package rawsource runs the producer loop for one raw 8-bit ADC
// character-device source, the Go analogue of the original's
// cxadc_writer_thread (original_source/src/files.c). It is the
// unframed sibling of internal/linearsource: straight bytes off the
// device, no channel interleaving.
package rawsource

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/vhs-capture/cxadc-capture-server/internal/captureerr"
	"github.com/vhs-capture/cxadc-capture-server/internal/lifecycle"
	"github.com/vhs-capture/cxadc-capture-server/internal/ring"
)

const (
	readChunk    = 64 * 1024
	fullSleep    = time.Millisecond
	emptySleep   = time.Microsecond
	devicePrefix = "/dev/cxadc"
)

// DevicePath formats the character device path for a raw device
// number (the N in /dev/cxadcN — the literal device number, not
// the /cxadc?N request index that addresses it).
func DevicePath(n int) string {
	return fmt.Sprintf("%s%d", devicePrefix, n)
}

// Open opens the raw device non-blocking, matching the original's
// open(path, O_RDONLY | O_NONBLOCK).
func Open(n int) (int, error) {
	fd, err := unix.Open(DevicePath(n), unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return -1, captureerr.Wrap("rawsource.Open", captureerr.DeviceError, err)
	}
	return fd, nil
}

// Close closes the raw fd, ignoring the already-closed case.
func Close(fd int) error {
	if fd < 0 {
		return nil
	}
	return unix.Close(fd)
}

// RunningCheck reports the current lifecycle phase. The capture
// package supplies this so rawsource has no import-cycle dependency on
// the state machine.
type RunningCheck func() lifecycle.Phase

// Overflower is incremented once per ring-full event, satisfied by
// *capture.Session's atomic counter.
type Overflower interface {
	Add(delta uint64) uint64
}

// Run reads fd into r following spec.md §4.2's three-step loop: spin
// while Starting, exit immediately if Failed, read until Stopping. It
// never returns an error for ordinary EOF/transient conditions; a
// fatal read error breaks the loop and is returned for the caller to
// log, matching the original's "break loop, log fail_reason" pattern.
func Run(fd int, r *ring.Ring, check RunningCheck, overflow Overflower) error {
	for {
		switch check() {
		case lifecycle.Failed:
			return nil
		case lifecycle.Stopping:
			return nil
		case lifecycle.Starting:
			time.Sleep(fullSleep)
			continue
		}

		dst := r.WriterSlice()
		if dst == nil {
			overflow.Add(1)
			time.Sleep(fullSleep)
			continue
		}
		n := len(dst)
		if n > readChunk {
			n = readChunk
		}

		got, err := unix.Read(fd, dst[:n])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
				time.Sleep(emptySleep)
				continue
			}
			return captureerr.Wrap("rawsource.Run", captureerr.DeviceError, err)
		}
		if got <= 0 {
			time.Sleep(emptySleep)
			continue
		}

		r.CommitWritten(got)
	}
}
