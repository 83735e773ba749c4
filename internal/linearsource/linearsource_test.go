package linearsource

import (
	"sync/atomic"
	"testing"

	"github.com/gordonklaus/portaudio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vhs-capture/cxadc-capture-server/internal/ring"
)

func TestNegotiateExplicitRequestWins(t *testing.T) {
	dev := &portaudio.DeviceInfo{DefaultSampleRate: 44100, MaxInputChannels: 8}
	n := negotiate(dev, Params{Rate: 96000, Channels: 4})
	assert.Equal(t, 96000, n.Rate)
	assert.Equal(t, 4, n.Channels)
	assert.Equal(t, 8, n.FrameBytes)
}

func TestNegotiateFallsBackToDeviceDefaults(t *testing.T) {
	dev := &portaudio.DeviceInfo{DefaultSampleRate: 44100, MaxInputChannels: 2}
	n := negotiate(dev, Params{})
	assert.Equal(t, 44100, n.Rate)
	assert.Equal(t, 2, n.Channels)
	assert.Equal(t, 4, n.FrameBytes)
}

func TestNegotiateFallsBackToHardFloorWhenDeviceReportsNothing(t *testing.T) {
	dev := &portaudio.DeviceInfo{}
	n := negotiate(dev, Params{})
	assert.Equal(t, fallbackRate, n.Rate)
	assert.Equal(t, fallbackChannels, n.Channels)
}

func TestInt16SliceAsBytesLength(t *testing.T) {
	s := []int16{1, 2, 3}
	b := int16SliceAsBytes(s)
	require.Len(t, b, 6)
}

func TestInt16SliceAsBytesEmpty(t *testing.T) {
	assert.Nil(t, int16SliceAsBytes(nil))
}

func TestWriteFramesCommitsWholeFramesOnly(t *testing.T) {
	const frameBytes = 4 // 2 channels * 2 bytes
	r, err := ring.Init(8)
	require.NoError(t, err)
	defer r.Close()

	var overflow atomic.Uint64
	readBuf := make([]int16, 6) // 3 frames worth, only 2 fit the ring
	writeFrames(r, readBuf, frameBytes, &overflow)

	_, written, _ := r.Stats()
	assert.Equal(t, uint64(8), written, "only whole frames that fit are committed")
	assert.Equal(t, uint64(1), overflow.Load(), "the frame that didn't fit counts as one overflow")
}

func TestWriteFramesDropsPartialFrameWhenRingNotFrameAligned(t *testing.T) {
	const frameBytes = 4
	r, err := ring.Init(6) // deliberately not a multiple of frameBytes
	require.NoError(t, err)
	defer r.Close()

	var overflow atomic.Uint64
	readBuf := make([]int16, 4) // 2 frames
	writeFrames(r, readBuf, frameBytes, &overflow)

	_, written, _ := r.Stats()
	assert.Equal(t, uint64(4), written, "never commits a partial, misaligned frame")
	assert.Equal(t, uint64(1), overflow.Load())
}
