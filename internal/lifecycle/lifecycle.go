// Package lifecycle defines the small phase vocabulary shared by the
// producer and pump loops (internal/rawsource, internal/linearsource,
// internal/pump) without pulling in internal/capture, which owns the
// full CaptureState machine and spawns those loops — importing it back
// from here would cycle.
package lifecycle

// Phase is the subset of CaptureState a producer or consumer loop
// needs to check in its hot path.
type Phase int

const (
	Starting Phase = iota
	Running
	Stopping
	Failed
)
