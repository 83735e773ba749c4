package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRejectsNonPositiveCapacity(t *testing.T) {
	_, err := Init(0)
	require.Error(t, err)
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
}

func TestWriterReaderRoundTrip(t *testing.T) {
	r, err := Init(4096)
	require.NoError(t, err)
	defer r.Close()

	src := make([]byte, 10000)
	for i := range src {
		src[i] = byte(i)
	}

	var wg sync.WaitGroup
	dst := make([]byte, 0, len(src))
	var dstMu sync.Mutex

	wg.Add(2)
	go func() {
		defer wg.Done()
		remaining := src
		for len(remaining) > 0 {
			w := r.WriterSlice()
			if len(w) == 0 {
				continue
			}
			n := copy(w, remaining)
			r.CommitWritten(n)
			remaining = remaining[n:]
		}
	}()
	go func() {
		defer wg.Done()
		got := 0
		for got < len(src) {
			rs := r.ReaderSlice()
			if len(rs) == 0 {
				continue
			}
			dstMu.Lock()
			dst = append(dst, rs...)
			dstMu.Unlock()
			r.CommitRead(len(rs))
			got += len(rs)
		}
	}()
	wg.Wait()

	assert.Equal(t, src, dst, "bytes must come out in order, without loss or duplication")
}

// TestMonotonicity exercises the read <= written <= read+capacity invariant
// from spec.md §8 under arbitrary interleaving of producer/consumer steps.
func TestMonotonicity(t *testing.T) {
	r, err := Init(64)
	require.NoError(t, err)
	defer r.Close()

	var prevRead, prevWritten uint64
	for i := 0; i < 10000; i++ {
		if i%3 != 0 {
			if w := r.WriterSlice(); len(w) > 0 {
				n := 1
				if len(w) < n {
					n = len(w)
				}
				r.CommitWritten(n)
			}
		} else {
			if rs := r.ReaderSlice(); len(rs) > 0 {
				r.CommitRead(1)
			}
		}
		read, written, diff := r.Stats()
		require.LessOrEqual(t, read, written, "read must never exceed written")
		require.LessOrEqual(t, written-read, uint64(r.Cap()), "outstanding bytes must never exceed capacity")
		require.LessOrEqual(t, diff, uint64(r.Cap()))
		require.GreaterOrEqual(t, read, prevRead, "read must be monotonic")
		require.GreaterOrEqual(t, written, prevWritten, "written must be monotonic")
		prevRead, prevWritten = read, written
	}
}

// TestSliceContiguity checks writer/reader slices never cross the
// physical end of the buffer (spec.md §8 "slice contiguity").
func TestSliceContiguity(t *testing.T) {
	r, err := Init(32)
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < 500; i++ {
		w := r.WriterSlice()
		if len(w) > 0 {
			_, written, _ := r.Stats()
			off := int(written) % r.Cap()
			require.LessOrEqual(t, len(w), r.Cap()-off)
			r.CommitWritten(len(w))
		}
		rs := r.ReaderSlice()
		if len(rs) > 0 {
			read, _, _ := r.Stats()
			off := int(read) % r.Cap()
			require.LessOrEqual(t, len(rs), r.Cap()-off)
			r.CommitRead(len(rs))
		}
	}
}

func TestOverflowReportedAsEmptyWriterSlice(t *testing.T) {
	r, err := Init(8)
	require.NoError(t, err)
	defer r.Close()

	w := r.WriterSlice()
	require.Len(t, w, 8)
	r.CommitWritten(8)

	// Ring is now full; producer must see zero writable space until the
	// consumer advances read.
	assert.Empty(t, r.WriterSlice())

	rs := r.ReaderSlice()
	require.Len(t, rs, 8)
	r.CommitRead(8)
	assert.NotEmpty(t, r.WriterSlice())
}

func TestRegistryBoundedSlab(t *testing.T) {
	var reg Registry
	assert.Nil(t, reg.Get(0))
	assert.Nil(t, reg.Get(-1))
	assert.Nil(t, reg.Get(MaxSources))

	r, err := Init(4096)
	require.NoError(t, err)
	defer r.Close()

	reg.Set(5, r)
	assert.Same(t, r, reg.Get(5))
	reg.Reset()
	assert.Nil(t, reg.Get(5))
}
