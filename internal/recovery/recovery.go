// internal/recovery/recovery.go
package recovery

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

// ExitCode is the process exit status after a recovered panic.
const ExitCode = 1

var (
	output io.Writer = os.Stderr
	exit             = os.Exit
)

// HandlePanic should be deferred at the top of main(). It reports the panic
// with a stack trace and exits.
func HandlePanic() {
	if r := recover(); r != nil {
		fatal(r, nil)
	}
}

// HandlePanicFunc is HandlePanic with a cleanup run before exit, such as
// stopping audio devices.
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		fatal(r, cleanup)
	}
}

// Guard runs fn, turning a panic into a fatal report. Use it for code run on
// threads main cannot recover, such as audio callbacks:
//
//	recovery.Guard(func() { _ = capture.Stop() }, func() { ... })
func Guard(cleanup func(), fn func()) {
	defer HandlePanicFunc(cleanup)
	fn()
}

func fatal(r any, cleanup func()) {
	msg := fmt.Sprint(r)
	if err, ok := r.(error); ok {
		msg = err.Error()
	}
	_, _ = fmt.Fprintf(output, "FATAL: %s\n\nStack trace:\n%s\n", msg, debug.Stack())
	if cleanup != nil {
		cleanup()
	}
	exit(ExitCode)
}
