package bench

import (
	"errors"
	"fmt"

	"github.com/hwabench/hwabench/internal/assets"
	"github.com/hwabench/hwabench/internal/hardware"
	"github.com/hwabench/hwabench/internal/report"
)

// BinaryError reports an unusable transcoder binary. Checked before any
// other phase: nothing else is worth doing without the transcoder.
type BinaryError struct {
	Path string
	Err  error
}

func (e *BinaryError) Error() string {
	return fmt.Sprintf("transcoder binary %s is not usable: %v", e.Path, e.Err)
}

func (e *BinaryError) Unwrap() error {
	return e.Err
}

// Exit codes per fatal error class, so the wrapper scripts feeding the
// results database can distinguish failure modes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitBinary    = 2
	ExitDetection = 3
	ExitAmbiguous = 4
	ExitDownload  = 5
	ExitWrite     = 6
)

// ExitCode maps a run error onto the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var binErr *BinaryError
	var detErr *hardware.DetectionError
	var ambErr *hardware.AmbiguousDeviceError
	var dlErr *assets.DownloadError
	var wrErr *report.WriteError

	switch {
	case errors.As(err, &binErr):
		return ExitBinary
	case errors.As(err, &ambErr):
		return ExitAmbiguous
	case errors.As(err, &detErr):
		return ExitDetection
	case errors.As(err, &dlErr):
		return ExitDownload
	case errors.As(err, &wrErr):
		return ExitWrite
	default:
		return ExitFailure
	}
}
