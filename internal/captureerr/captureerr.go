// Package captureerr defines the capture server's error taxonomy
// (spec.md §7): a small, stable set of string-coded error kinds that the
// orchestrators, producers and HTTP layer all report against, adapted
// from the teacher's errcode.Code/errcode.E shape.
package captureerr

// Code is a stable, JSON/log-facing error kind. It is a string newtype,
// comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes from spec.md §7.
const (
	ConfigError     Code = "config_error"
	AllocationError Code = "allocation_error"
	DeviceError     Code = "device_error"
	ThreadError     Code = "thread_error"
	OverflowEvent   Code = "overflow_event"
	ClientGone      Code = "client_gone"
	TransportError  Code = "transport_error"
)

// E wraps a Code with an operator-facing message and an optional cause,
// matching the original's single-line dprintf(fd, "... fail_reason ...")
// messages.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return e.Op + ": " + e.Msg
	}
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap builds an *E from an operation name, code, and cause.
func Wrap(op string, c Code, err error) *E {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to TransportError for
// anything unrecognised (the taxonomy has no bare "unknown" bucket;
// transport errors are the catch-all at the HTTP boundary where Of is
// mostly used).
func Of(err error) Code {
	if err == nil {
		return ""
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return TransportError
}
