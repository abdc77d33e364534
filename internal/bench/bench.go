// Package bench drives the benchmark pipeline: validate the transcoder,
// inspect hardware, acquire the corpus, probe backends, run the ladder per
// backend, and write the report. Strictly sequential; one external process
// at a time.
package bench

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hwabench/hwabench/internal/assets"
	"github.com/hwabench/hwabench/internal/hardware"
	"github.com/hwabench/hwabench/internal/probe"
	"github.com/hwabench/hwabench/internal/report"
	"github.com/hwabench/hwabench/internal/runner"
	"github.com/hwabench/hwabench/pkg/logging"
	"github.com/hwabench/hwabench/pkg/models"
)

// Run executes the full pipeline. Setup-phase errors (unusable binary,
// hardware detection, GPU ambiguity, unwritable destination, corpus
// download) are fatal and returned before any transcoding begins; trial
// errors are recorded per backend inside the report instead.
func Run(ctx context.Context, opts Options, log *logging.Logger) error {
	ffmpegPath, err := resolveBinary(opts.FFmpegPath)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Using transcoder binary %s", ffmpegPath))

	target, ok := models.ScaleTargetByName(opts.Scale)
	if !ok {
		return fmt.Errorf("unknown scale target %q (expected 2160p, 1080p or 720p)", opts.Scale)
	}

	inspector := hardware.NewInspector(log)
	profile, err := inspector.Inspect(ctx, ffmpegPath)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Detected CPU %q, %d GPU(s), %s RAM",
		profile.CPUModel, len(profile.GPUs), formatRAM(profile.RAMBytes)))

	selection, err := hardware.SelectGPU(profile.GPUs, opts.GPUIndex)
	if err != nil {
		return err
	}
	gpuArg := ""
	if selection != nil {
		gpuArg = selection.Arg
		idx := selection.GPU.Index
		profile.SelectedGPU = &idx
		log.Info(fmt.Sprintf("Using GPU %q", selection.GPU.Vendor+" "+selection.GPU.Product))
	} else {
		log.Info("No supported GPU detected; only the software backend will run")
	}

	if err := report.CheckWritable(opts.OutputPath); err != nil {
		return err
	}

	manifest := assets.DefaultManifest()
	if opts.ManifestPath != "" {
		manifest, err = assets.LoadManifest(opts.ManifestPath)
		if err != nil {
			return err
		}
	}

	provider := assets.NewProvider(opts.VideosDir, log)
	if err := provider.EnsureAll(ctx, manifest); err != nil {
		return err
	}

	prober := probe.NewProber(ffmpegPath, log)
	availability, err := prober.Probe(ctx, selectedGPUs(profile, selection))
	if err != nil {
		return err
	}

	cond, err := runner.ConditionFor(manifest, opts.VideosDir, target)
	if err != nil {
		return err
	}

	run := runner.NewRunner(ffmpegPath, gpuArg, log)
	run.MaxStreams = opts.MaxStreams

	var results []models.BackendResult
	for _, backend := range probe.AvailableBackends(availability) {
		results = append(results, run.RunBackend(ctx, backend, cond))
	}

	runOpts := opts.runOptions()
	runOpts.FFmpegPath = ffmpegPath
	rep := report.Assemble(Version, runOpts, profile, results)

	log.Info("Benchmark finished, writing report")
	if err := report.Write(rep, opts.OutputPath); err != nil {
		return err
	}

	report.PrintSummary(os.Stderr, rep)

	if opts.TextfilePath != "" {
		if err := report.WriteTextfile(rep, opts.TextfilePath); err != nil {
			log.Warn("metrics textfile not written", map[string]interface{}{"error": err.Error()})
		}
	}
	if opts.SubmitURL != "" {
		if err := report.Submit(ctx, opts.SubmitURL, rep); err != nil {
			log.Warn("report submission failed", map[string]interface{}{"error": err.Error()})
		} else {
			log.Info("Report submitted", map[string]interface{}{"url": opts.SubmitURL})
		}
	}

	return nil
}

// resolveBinary turns the configured transcoder setting into a usable path:
// bare names go through PATH lookup, explicit paths are stat'ed.
func resolveBinary(configured string) (string, error) {
	if strings.ContainsRune(configured, os.PathSeparator) {
		info, err := os.Stat(configured)
		if err != nil {
			return "", &BinaryError{Path: configured, Err: err}
		}
		if info.IsDir() {
			return "", &BinaryError{Path: configured, Err: fmt.Errorf("is a directory")}
		}
		return configured, nil
	}

	path, err := exec.LookPath(configured)
	if err != nil {
		return "", &BinaryError{Path: configured, Err: err}
	}
	return path, nil
}

// selectedGPUs narrows the probed vendor set to the chosen card, so a
// multi-vendor host only tests the backend matching the --gpu selection.
func selectedGPUs(profile models.HardwareProfile, selection *hardware.Selection) []models.GPUDevice {
	if selection == nil {
		return nil
	}
	return []models.GPUDevice{selection.GPU}
}

func formatRAM(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	return fmt.Sprintf("%.1f GB", gb)
}
