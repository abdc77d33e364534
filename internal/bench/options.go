package bench

import "github.com/hwabench/hwabench/pkg/models"

// Version is the benchmark tool version embedded in every report.
const Version = "1.0.0"

// Options carries the complete configuration of one run. It is built once
// by the CLI and threaded explicitly through every phase; no component
// keeps package-level mutable state.
type Options struct {
	// FFmpegPath is the transcoder binary: a bare name resolved via PATH
	// or an explicit path.
	FFmpegPath string
	// VideosDir caches the test corpus between runs.
	VideosDir string
	// OutputPath is the report destination; "-" means stdout.
	OutputPath string
	// GPUIndex disambiguates multi-GPU hosts; -1 means unset.
	GPUIndex int
	// Debug enables verbose diagnostics on stderr.
	Debug bool

	// Scale names the target condition (720p, 1080p or 2160p).
	Scale string
	// MaxStreams caps the stream-count ladder.
	MaxStreams int
	// ManifestPath optionally replaces the built-in asset manifest.
	ManifestPath string
	// TextfilePath optionally writes Prometheus textfile metrics.
	TextfilePath string
	// SubmitURL optionally POSTs the report to a results collector.
	SubmitURL string
}

// DefaultOptions returns the option set before config/flag overrides.
func DefaultOptions() Options {
	return Options{
		FFmpegPath: "ffmpeg",
		OutputPath: "-",
		GPUIndex:   -1,
		Scale:      models.Scale720p.Name,
		MaxStreams: 64,
	}
}

// runOptions converts to the subset of options recorded in the report.
func (o Options) runOptions() models.RunOptions {
	var gpu *int
	if o.GPUIndex >= 0 {
		idx := o.GPUIndex
		gpu = &idx
	}
	return models.RunOptions{
		FFmpegPath: o.FFmpegPath,
		VideosDir:  o.VideosDir,
		Scale:      o.Scale,
		GPUIndex:   gpu,
		MaxStreams: o.MaxStreams,
	}
}
