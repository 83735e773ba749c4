package capture

import (
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"github.com/vhs-capture/cxadc-capture-server/internal/pump"
	"github.com/vhs-capture/cxadc-capture-server/internal/ring"
)

// RawSource is one (producer-goroutine, device fd, Ring) triple for a
// raw 8-bit ADC character device, addressed positionally by its index
// in the /start request (the same indexing /cxadc?N reads back), not by
// its /dev/cxadcN device number.
type RawSource struct {
	DeviceNum int // the N in /dev/cxadcN
	Fd        int // raw fd, O_NONBLOCK; -1 once closed
	Ring      *ring.Ring

	// Cell is the Source's "consumer-thread handle cell": zero means
	// unattached. It lives outside CaptureState protection, per spec.md
	// §3; an attach attempt while Idle is rejected by AttachRaw/
	// AttachLinear finding no published session, not by this cell.
	Cell pump.Cell

	done chan struct{}
}

// LinearSource is the framed multichannel PCM source sharing the raw
// sources' sample clock.
type LinearSource struct {
	Stream     *portaudio.Stream
	ReadBuf    []int16
	Ring       *ring.Ring
	Rate       int
	Channels   int
	Format     string // symbolic format name, e.g. "s16le"
	FrameBytes int

	Cell pump.Cell

	done chan struct{}
}

// Session is the process-wide singleton published when CaptureState
// enters Running and torn down on return to Idle. It is an owned value
// reached only through Manager, not ambient global state (spec.md §9
// design note).
type Session struct {
	Raw      []*RawSource // positional, len == request's raw-source count
	RawIndex ring.Registry
	Linear   *LinearSource

	Overflow atomic.Uint64

	linearNs int64 // spec.md §4.4 step 7: clock delta around linear stream start
	cxadcNs  int64 // spec.md §4.4 step 8: elapsed time after linear start to open last raw device

	wg sync.WaitGroup // joined by the stop orchestrator
}

func newSession() *Session {
	return &Session{}
}
