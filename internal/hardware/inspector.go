package hardware

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hwabench/hwabench/pkg/logging"
	"github.com/hwabench/hwabench/pkg/models"
)

// DetectionError reports a failure to gather mandatory hardware facts.
type DetectionError struct {
	Message string
	Err     error
}

func (e *DetectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hardware detection failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("hardware detection failed: %s", e.Message)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

var ffmpegVersionRe = regexp.MustCompile(`^ffmpeg version (\S+)`)

// Inspector gathers the normalized hardware profile embedded in the report.
type Inspector struct {
	log *logging.Logger

	// Mandatory controls whether an unusable lshw aborts the run or the
	// profile degrades to "unknown" fields.
	Mandatory bool
}

// NewInspector creates an inspector. Detection is mandatory by default.
func NewInspector(log *logging.Logger) *Inspector {
	return &Inspector{log: log, Mandatory: true}
}

// Inspect captures the hardware profile: CPU model via lshw (gopsutil
// fallback), GPUs via lshw, RAM and OS identity via gopsutil, and the
// transcoder version string. Called exactly once per run.
func (i *Inspector) Inspect(ctx context.Context, ffmpegPath string) (models.HardwareProfile, error) {
	profile := models.HardwareProfile{
		CPUModel:   "unknown",
		CPUThreads: runtime.NumCPU(),
	}

	ffInfo, err := FFmpegVersion(ctx, ffmpegPath)
	if err != nil {
		return profile, err
	}
	profile.FFmpeg = ffInfo

	cpuNodes, err := runLSHW(ctx, "cpu")
	if err != nil {
		if i.Mandatory {
			return profile, err
		}
		i.log.Warn("CPU detection degraded", map[string]interface{}{"error": err.Error()})
	} else if len(cpuNodes) > 0 && cpuNodes[0].Product != "" {
		profile.CPUModel = cpuNodes[0].Product
	}

	if profile.CPUModel == "unknown" {
		if infos, cerr := cpu.Info(); cerr == nil && len(infos) > 0 && infos[0].ModelName != "" {
			profile.CPUModel = infos[0].ModelName
		}
	}

	gpuNodes, err := runLSHW(ctx, "display")
	if err != nil {
		if i.Mandatory {
			return profile, err
		}
		i.log.Warn("GPU detection degraded", map[string]interface{}{"error": err.Error()})
	} else {
		profile.GPUs = filterGPUs(gpuNodes)
	}

	if vm, merr := mem.VirtualMemory(); merr == nil {
		profile.RAMBytes = vm.Total
	} else if i.Mandatory {
		return profile, &DetectionError{Message: "cannot read total system memory", Err: merr}
	}

	profile.OS = detectOS()

	i.log.Debug("hardware profile captured", map[string]interface{}{
		"cpu":  profile.CPUModel,
		"gpus": len(profile.GPUs),
		"ram":  profile.RAMBytes,
	})
	return profile, nil
}

// FFmpegVersion runs "ffmpeg -version" and extracts the version token from
// the first banner line.
func FFmpegVersion(ctx context.Context, ffmpegPath string) (models.FFmpegInfo, error) {
	info := models.FFmpegInfo{Path: ffmpegPath}

	cmd := exec.CommandContext(ctx, ffmpegPath, "-version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &bytes.Buffer{}

	if err := cmd.Run(); err != nil {
		return info, &DetectionError{
			Message: fmt.Sprintf("could not run %s; ensure a valid transcoder path", ffmpegPath),
			Err:     err,
		}
	}

	version, ok := ParseFFmpegBanner(stdout.String())
	if !ok {
		return info, &DetectionError{Message: fmt.Sprintf("unrecognized version banner from %s", ffmpegPath)}
	}
	info.Version = version
	return info, nil
}

// ParseFFmpegBanner extracts the version token from ffmpeg -version output.
func ParseFFmpegBanner(output string) (string, bool) {
	firstLine := output
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		firstLine = output[:idx]
	}
	m := ffmpegVersionRe.FindStringSubmatch(firstLine)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func detectOS() models.OSInfo {
	info := models.OSInfo{ID: runtime.GOOS, Name: runtime.GOOS}
	if hi, err := host.Info(); err == nil {
		info.ID = hi.Platform
		info.Name = hi.Platform
		info.Version = hi.PlatformVersion
		if hi.PlatformFamily != "" {
			info.Name = fmt.Sprintf("%s (%s)", hi.Platform, hi.PlatformFamily)
		}
	}
	return info
}
