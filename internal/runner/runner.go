package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hwabench/hwabench/internal/assets"
	"github.com/hwabench/hwabench/pkg/logging"
	"github.com/hwabench/hwabench/pkg/models"
)

// DefaultLadder is the fixed ascending stream-count sequence. The search
// walks it in order and stops at the first failing count.
var DefaultLadder = []int{1, 2, 4, 8, 16, 32, 64}

// hwTrialTimeout bounds hardware trials so a stuck driver cannot hang the
// whole run. Software trials run unbounded: a slow CPU is a legitimate
// result, not a hang.
const hwTrialTimeout = 120 * time.Second

// Condition is one test condition: a source asset transcoded down to a
// target resolution/bitrate.
type Condition struct {
	Source    models.TestAsset
	InputPath string
	Target    models.ScaleTarget
}

// ConditionFor picks the smallest H.264 source at or above the target
// resolution from the manifest.
func ConditionFor(manifest []models.TestAsset, videosDir string, target models.ScaleTarget) (Condition, error) {
	var best models.TestAsset
	bestHeight := 0

	for _, asset := range manifest {
		if asset.Codec() != "h264" {
			continue
		}
		height, err := strconv.Atoi(strings.TrimSuffix(asset.Resolution(), "p"))
		if err != nil || height < target.Height {
			continue
		}
		if bestHeight == 0 || height < bestHeight {
			best = asset
			bestHeight = height
		}
	}

	if bestHeight == 0 {
		return Condition{}, fmt.Errorf("no h264 source asset at or above %s in manifest", target.Name)
	}
	return Condition{
		Source:    best,
		InputPath: filepath.Join(videosDir, assets.Filename(best)),
		Target:    target,
	}, nil
}

// Runner executes the stream-count search for each backend, one transcoder
// process at a time. Nothing runs concurrently with a trial: the point is to
// measure the backend in isolation.
type Runner struct {
	ffmpegPath string
	gpuArg     string
	log        *logging.Logger

	// Ladder and MaxStreams bound the search; SettlePause separates trials.
	Ladder      []int
	MaxStreams  int
	SettlePause time.Duration

	// invoke runs one transcoder process and returns its captured stderr.
	// Overridable in tests.
	invoke func(ctx context.Context, args []string) (string, error)
}

// NewRunner creates a runner for the given transcoder binary and GPU
// device argument (empty on GPU-less hosts).
func NewRunner(ffmpegPath, gpuArg string, log *logging.Logger) *Runner {
	r := &Runner{
		ffmpegPath:  ffmpegPath,
		gpuArg:      gpuArg,
		log:         log,
		Ladder:      DefaultLadder,
		MaxStreams:  DefaultLadder[len(DefaultLadder)-1],
		SettlePause: time.Second,
	}
	r.invoke = r.execFFmpeg
	return r
}

// RunBackend walks the stream ladder for one backend and returns its final
// result. Failures here never abort the run: an unusable backend records an
// error, a slow one records its last passing stream count.
func (r *Runner) RunBackend(ctx context.Context, backend models.Backend, cond Condition) models.BackendResult {
	result := models.BackendResult{Backend: backend}
	lastPassing := 0

	r.log.Info(fmt.Sprintf("Running %s tests: %s -> %s", backend, cond.Source.Resolution(), cond.Target.Label))

	for i, streams := range r.Ladder {
		if streams > r.MaxStreams {
			break
		}
		if i > 0 {
			time.Sleep(r.SettlePause)
		}

		r.log.Info(fmt.Sprintf("Running %s trial with %d simultaneous stream(s)", backend, streams))
		m := r.runTrial(ctx, backend, cond, streams)
		result.Trials = append(result.Trials, m)

		if m.Error != "" {
			r.log.Warn(fmt.Sprintf("Trial failed: %s", m.Error), map[string]interface{}{
				"backend": string(backend), "streams": streams,
			})
			break
		}
		r.log.Info(fmt.Sprintf("Trial speed: %.2fx @ frame %d, total time %.1fs", m.Speed, m.Frame, m.TimeSeconds))
		if !m.Passed {
			break
		}
		lastPassing = streams
	}

	// A backend whose very first trial errored has no stream-count result
	// at all; a backend that merely ran out of headroom reports the last
	// passing count (0 when even a single stream was below realtime).
	if len(result.Trials) > 0 && result.Trials[0].Error != "" {
		errText := result.Trials[0].Error
		result.Error = &errText
		r.log.Warn(fmt.Sprintf("Backend %s recorded as failed: %s", backend, errText))
		return result
	}

	result.MaxPassingStreams = &lastPassing
	r.log.Info(fmt.Sprintf("Max passing streams for %s %s: %d", backend, cond.Target.Name, lastPassing))
	return result
}

// runTrial executes one transcoder invocation and turns its output into an
// immutable Measurement.
func (r *Runner) runTrial(ctx context.Context, backend models.Backend, cond Condition, streams int) models.Measurement {
	m := models.Measurement{
		Streams:   streams,
		ScaleFrom: cond.Source.Resolution(),
		ScaleTo:   cond.Target.Name,
	}

	tctx := ctx
	if backend != models.BackendSoftware {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, hwTrialTimeout)
		defer cancel()
	}

	args := BuildArgs(backend, cond.InputPath, cond.Target, r.gpuArg, streams)
	r.log.Debug("invoking transcoder", map[string]interface{}{"args": strings.Join(args, " ")})

	stderrText, err := r.invoke(tctx, args)
	if err != nil {
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			m.Error = "timeout/stuck"
			return m
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			m.Error = FailureReason(stderrText)
		} else {
			m.Error = fmt.Sprintf("invocation failed: %v", err)
		}
		return m
	}

	stats := ParseProgress(stderrText)
	if !stats.Found {
		m.Error = "no speed token in transcoder output"
		return m
	}

	m.Speed = stats.Speed
	m.Frame = stats.Frame
	m.TimeSeconds = stats.TimeSeconds
	m.RSSKb = stats.RSSKb
	m.Passed = stats.Speed >= 1.0
	return m
}

func (r *Runner) execFFmpeg(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}
