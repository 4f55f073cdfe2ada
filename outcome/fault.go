package outcome

import (
	"fmt"
	"runtime"
	"strings"
)

// Fault is a structured failure captured at catch time. It preserves the
// diagnostic payload of the original failure - kind, message and originating
// site - so that it can be re-surfaced across goroutine and process
// boundaries without fabricating a new primary failure site.
type Fault struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Origin  string `json:"origin,omitempty"`
	cause   error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Origin == "" {
		return f.Message
	}
	return fmt.Sprintf("%s (at %s)", f.Message, f.Origin)
}

// Unwrap exposes the underlying error when the fault was built from one.
func (f *Fault) Unwrap() error {
	return f.cause
}

// Recovered converts a recovered panic value into a *Fault. When the panic
// value is already an error it is kept as the fault's cause so errors.Is/As
// still reach it.
func Recovered(value any) *Fault {
	fault := &Fault{
		Kind:   fmt.Sprintf("%T", value),
		Origin: panicOrigin(),
	}
	if err, ok := value.(error); ok {
		fault.Message = err.Error()
		fault.cause = err
	} else {
		fault.Message = fmt.Sprint(value)
	}
	return fault
}

// panicOrigin walks the stack of the panicking goroutine and returns the
// panic site: the first non-runtime frame below runtime.gopanic. Frames above
// it belong to the recovering deferred function, not the panic.
func panicOrigin() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	unwinding := false
	for {
		frame, more := frames.Next()
		switch {
		case strings.HasPrefix(frame.Function, "runtime."):
			if frame.Function == "runtime.gopanic" {
				unwinding = true
			}
		case unwinding:
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// observation annotates an error with the site it was observed at without
// replacing the primary cause.
type observation struct {
	cause error
	site  string
}

func (o *observation) Error() string {
	return fmt.Sprintf("%s (observed at %s)", o.cause.Error(), o.site)
}

func (o *observation) Unwrap() error {
	return o.cause
}

// Observed annotates err with provenance, e.g. the reply site a failure was
// delivered through. The original error remains the primary cause and stays
// reachable through errors.Is/errors.As.
func Observed(err error, site string) error {
	if err == nil {
		return nil
	}
	return &observation{cause: err, site: site}
}
