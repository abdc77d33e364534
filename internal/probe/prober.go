package probe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hwabench/hwabench/pkg/logging"
	"github.com/hwabench/hwabench/pkg/models"
)

// drmDir is where Linux exposes render nodes for VAAPI-family backends.
const drmDir = "/dev/dri"

// Availability records whether a backend can be attempted on this host, and
// why not when it cannot. An unavailable backend is skipped, never reported
// as an error.
type Availability struct {
	Backend   models.Backend
	Available bool
	Reason    string
}

// Prober determines which backends are worth attempting by combining the
// transcoder's compiled-in encoder list with the detected GPU vendors and
// the presence of a DRM render node. Probing is fast and side-effect-free:
// one ffmpeg -encoders invocation and filesystem stats only.
type Prober struct {
	ffmpegPath string
	log        *logging.Logger

	// overridable in tests
	listEncoders func(ctx context.Context) ([]string, error)
	hasRenderNode func() bool
}

// NewProber creates a prober for the given transcoder binary.
func NewProber(ffmpegPath string, log *logging.Logger) *Prober {
	p := &Prober{ffmpegPath: ffmpegPath, log: log}
	p.listEncoders = p.queryEncoders
	p.hasRenderNode = hasRenderNode
	return p
}

// Probe returns the availability of every known backend, in fixed order.
// Software is always available as the fallback baseline.
func (p *Prober) Probe(ctx context.Context, gpus []models.GPUDevice) ([]Availability, error) {
	encoders, err := p.listEncoders(ctx)
	if err != nil {
		// Encoder listing failing is not fatal: the software baseline can
		// still run, and the hardware backends record why they were skipped.
		p.log.Warn("encoder listing failed, hardware backends disabled", map[string]interface{}{"error": err.Error()})
	}

	vendors := make(map[string]bool)
	for _, gpu := range gpus {
		vendors[gpu.Vendor] = true
	}

	var out []Availability
	for _, backend := range models.AllBackends() {
		out = append(out, p.probeOne(backend, encoders, vendors, err))
	}

	for _, a := range out {
		if a.Available {
			p.log.Info(fmt.Sprintf("Backend %s: available", a.Backend))
		} else {
			p.log.Info(fmt.Sprintf("Backend %s: skipped (%s)", a.Backend, a.Reason))
		}
	}
	return out, nil
}

func (p *Prober) probeOne(backend models.Backend, encoders []string, vendors map[string]bool, listErr error) Availability {
	if backend == models.BackendSoftware {
		return Availability{Backend: backend, Available: true}
	}
	if listErr != nil {
		return Availability{Backend: backend, Reason: "encoder list unavailable"}
	}
	if !vendors[backend.Vendor()] {
		return Availability{Backend: backend, Reason: fmt.Sprintf("no %s GPU detected", backend.Vendor())}
	}
	if !contains(encoders, backend.Encoder()) {
		return Availability{Backend: backend, Reason: fmt.Sprintf("encoder %s not compiled into transcoder", backend.Encoder())}
	}
	if (backend == models.BackendQSV || backend == models.BackendAMF) && !p.hasRenderNode() {
		return Availability{Backend: backend, Reason: "no DRM render node under " + drmDir}
	}
	return Availability{Backend: backend, Available: true}
}

// AvailableBackends filters an availability set down to the attemptable
// backends, preserving order.
func AvailableBackends(set []Availability) []models.Backend {
	var backends []models.Backend
	for _, a := range set {
		if a.Available {
			backends = append(backends, a.Backend)
		}
	}
	return backends
}

// queryEncoders runs "ffmpeg -encoders" once and returns the encoder names.
func (p *Prober) queryEncoders(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, p.ffmpegPath, "-hide_banner", "-encoders")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &bytes.Buffer{}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg -encoders failed: %w", err)
	}
	return ParseEncoderList(stdout.String()), nil
}

// ParseEncoderList extracts encoder names from ffmpeg -encoders output.
// Encoder lines carry a six-character flag column followed by the name,
// e.g. " V....D libx264".
func ParseEncoderList(output string) []string {
	var encoders []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "---") || strings.HasPrefix(line, "Encoders:") {
			continue
		}
		if len(line) > 7 && (line[0] == 'V' || line[0] == 'A' || line[0] == 'S') {
			fields := strings.Fields(line[7:])
			if len(fields) > 0 {
				encoders = append(encoders, fields[0])
			}
		}
	}
	return encoders
}

func hasRenderNode() bool {
	entries, err := os.ReadDir(drmDir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "render") {
			return true
		}
	}
	return false
}

func contains(slice []string, val string) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}
