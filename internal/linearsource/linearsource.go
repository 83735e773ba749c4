// Package linearsource runs the producer loop for the framed
// multichannel linear-PCM source, backed by github.com/gordonklaus/portaudio.
// It plays the role the original's ALSA capture thread does
// (original_source/src/audio.c's linear_writer_thread), but PortAudio's
// blocking Stream.Read fixes the frame count per call at stream-open
// time, unlike ALSA's snd_pcm_readi which accepts an arbitrary count
// argument on every call. The deviation this forces — a fixed-size read
// every iteration regardless of how much ring space is actually free —
// is documented in DESIGN.md.
package linearsource

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gordonklaus/portaudio"

	"github.com/vhs-capture/cxadc-capture-server/internal/captureerr"
	"github.com/vhs-capture/cxadc-capture-server/internal/lifecycle"
	"github.com/vhs-capture/cxadc-capture-server/internal/ring"
)

const (
	// fallbackRate/fallbackChannels are the hard floor used when neither
	// an explicit request nor the device itself states a rate/channel
	// count, since PortAudio exposes no ALSA-style "maximum supported
	// rate" query to fall back to.
	fallbackRate     = 48000
	fallbackChannels = 2

	framesPerBuffer = 2048
	bytesPerSample  = 2 // paInt16

	fullSleep  = time.Millisecond
	emptySleep = time.Microsecond
)

// Init starts the PortAudio runtime. It must be called once before
// Resolve or Open and paired with a deferred Terminate; every
// device-enumeration and stream call in this package requires it
// ("PortAudio not initialized" otherwise).
func Init() error {
	if err := portaudio.Initialize(); err != nil {
		return captureerr.Wrap("linearsource.Init", captureerr.DeviceError, err)
	}
	return nil
}

// Terminate shuts down the PortAudio runtime started by Init.
func Terminate() error {
	return portaudio.Terminate()
}

// Params negotiates the linear device's open parameters from a /start
// request against the device's own defaults (spec.md §4.4 step 5).
type Params struct {
	DeviceName string // lname; empty selects the default input device
	Rate       int    // lrate; 0 = unset
	Channels   int    // lchannels; 0 = unset
}

// Negotiated is the outcome of resolving Params against a real device.
type Negotiated struct {
	Device     *portaudio.DeviceInfo
	Rate       int
	Channels   int
	FrameBytes int
}

// Resolve picks the input device named by p.DeviceName, or the host's
// default input device, and fills in rate/channels from the request,
// the device defaults, or the hard floor, in that priority order.
func Resolve(p Params) (Negotiated, error) {
	dev, err := findDevice(p.DeviceName)
	if err != nil {
		return Negotiated{}, captureerr.Wrap("linearsource.Resolve", captureerr.DeviceError, err)
	}
	return negotiate(dev, p), nil
}

// negotiate applies the priority chain from spec.md §4.4 step 5
// (explicit request, then device default, then hard floor) without
// touching the audio subsystem, so it can be exercised with a bare
// *portaudio.DeviceInfo literal in tests.
func negotiate(dev *portaudio.DeviceInfo, p Params) Negotiated {
	rate := p.Rate
	if rate == 0 {
		rate = int(dev.DefaultSampleRate)
	}
	if rate == 0 {
		rate = fallbackRate
	}

	channels := p.Channels
	if channels == 0 {
		channels = dev.MaxInputChannels
	}
	if channels == 0 {
		channels = fallbackChannels
	}

	return Negotiated{
		Device:     dev,
		Rate:       rate,
		Channels:   channels,
		FrameBytes: channels * bytesPerSample,
	}
}

func findDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("linear device %q not found", name)
}

// Open opens and starts the blocking-read stream at the negotiated
// parameters, falling back to the device's own default sample rate if
// the requested one is rejected (the same two-attempt pattern the
// example corpus's PortAudio callers use).
func Open(n Negotiated) (*portaudio.Stream, []int16, error) {
	readBuf := make([]int16, framesPerBuffer*n.Channels)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   n.Device,
			Channels: n.Channels,
			Latency:  n.Device.DefaultLowInputLatency,
		},
		SampleRate:      float64(n.Rate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, &readBuf)
	if err != nil && n.Rate != int(n.Device.DefaultSampleRate) && n.Device.DefaultSampleRate > 0 {
		params.SampleRate = n.Device.DefaultSampleRate
		stream, err = portaudio.OpenStream(params, &readBuf)
	}
	if err != nil {
		return nil, nil, captureerr.Wrap("linearsource.Open", captureerr.DeviceError, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, nil, captureerr.Wrap("linearsource.Open", captureerr.DeviceError, err)
	}
	return stream, readBuf, nil
}

// RunningCheck mirrors rawsource.RunningCheck.
type RunningCheck func() lifecycle.Phase

// Overflower mirrors rawsource.Overflower.
type Overflower interface {
	Add(delta uint64) uint64
}

// Run reads fixed-size frames from stream into readBuf and copies their
// bytes into r following the same Starting/Failed/Stopping loop as
// rawsource.Run. Ring space is not checked before each Read, since the
// buffer size is fixed at Open time; the copy step below counts
// overflow and drops frames that do not fit instead.
//
// A paInputOverflowed read is the one PortAudio error treated as
// transient (the device dropped samples on its end but the stream is
// still live, the same as ALSA's EPIPE xrun); every other error is
// fatal and ends the loop, matching linear_writer_thread's
// snd_pcm_readi-failed -> fprintf + break.
func Run(stream *portaudio.Stream, readBuf []int16, frameBytes int, r *ring.Ring, check RunningCheck, overflow Overflower) error {
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

		if err := stream.Read(); err != nil {
			if err == portaudio.InputOverflowed {
				overflow.Add(1)
				time.Sleep(emptySleep)
				continue
			}
			return captureerr.Wrap("linearsource.Run", captureerr.DeviceError, err)
		}

		writeFrames(r, readBuf, frameBytes, overflow)
	}
}

// int16SliceAsBytes views s as its underlying little-endian byte
// layout without copying, matching the host's native int16 encoding
// (the only encoding PortAudio's paInt16 stream format produces).
func int16SliceAsBytes(s []int16) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*2)
}

// writeFrames copies readBuf into r in whole-frame units, matching
// linear_writer_thread's len_samples = len/frame_bytes: a partial frame
// is never committed, since that would permanently shift the
// frame/channel alignment of everything written after it. The ring's
// capacity is always an exact multiple of frameBytes (see
// capture.buildSession), so every WriterSlice() it returns is itself
// frame-aligned and this never leaves an unwritable, non-empty tail.
func writeFrames(r *ring.Ring, readBuf []int16, frameBytes int, overflow Overflower) {
	raw := int16SliceAsBytes(readBuf)
	for len(raw) > 0 {
		dst := r.WriterSlice()
		if len(dst) < frameBytes {
			overflow.Add(1)
			return // drop the remainder; the device clock does not wait for us
		}
		n := len(dst)
		if n > len(raw) {
			n = len(raw)
		}
		n -= n % frameBytes
		copy(dst[:n], raw[:n])
		r.CommitWritten(n)
		raw = raw[n:]
	}
}
