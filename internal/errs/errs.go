package errs

import (
	"fmt"
	"testing"

	"go.uber.org/multierr"
)

// Capture runs errF, typically a deferred Close, and folds its error into
// *err. If msg is non-empty the captured error is wrapped with it.
//
//   - errF returns nil: *err is untouched.
//   - errF errors and *err is nil: *err becomes the captured error.
//   - both error: *err becomes a multierr holding both.
func Capture(err *error, errF func() error, msg string) {
	fErr := errF()
	if fErr == nil {
		return
	}
	if msg != "" {
		fErr = fmt.Errorf(msg+": %w", fErr)
	}
	if *err == nil {
		*err = fErr
		return
	}
	multierr.AppendInto(err, fErr)
}

// CaptureT reports errF's error, if any, through t.Error.
func CaptureT(t *testing.T, errF func() error, msg string) {
	t.Helper()
	if err := errF(); err != nil {
		if msg == "" {
			t.Error(err)
		} else {
			t.Errorf(msg+": %s", err)
		}
	}
}
