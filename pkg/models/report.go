package models

import "time"

// Measurement is the outcome of one transcode trial: one ffmpeg invocation
// for a given backend, target condition and simulated stream count.
// Immutable once created; a failed trial is terminal, never retried.
type Measurement struct {
	Streams     int     `json:"streams"`
	ScaleFrom   string  `json:"scale_from"`
	ScaleTo     string  `json:"scale_to"`
	Speed       float64 `json:"speed"`
	Frame       int     `json:"frame"`
	TimeSeconds float64 `json:"time_s"`
	RSSKb       float64 `json:"rss_kb"`
	Passed      bool    `json:"passed"`
	Error       string  `json:"error,omitempty"`
}

// BackendResult is the aggregate outcome for one backend. The field names
// are a stable contract consumed by the central results database: exactly
// one of MaxPassingStreams and Error is set.
type BackendResult struct {
	Backend           Backend       `json:"backend"`
	MaxPassingStreams *int          `json:"max_passing_streams"`
	Error             *string       `json:"error"`
	Trials            []Measurement `json:"trials,omitempty"`
}

// ToolInfo identifies the benchmark tool version that produced a report.
type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// RunOptions records the user-selected options a run was executed with.
type RunOptions struct {
	FFmpegPath string `json:"ffmpeg_path"`
	VideosDir  string `json:"videos_dir"`
	Scale      string `json:"scale"`
	GPUIndex   *int   `json:"gpu_index"`
	MaxStreams int    `json:"max_streams"`
}

// Report is the root output document. Constructed once after all trials
// complete, serialized once, then the process exits.
type Report struct {
	Tool      ToolInfo        `json:"tool"`
	Timestamp time.Time       `json:"timestamp"`
	Options   RunOptions      `json:"options"`
	Hardware  HardwareProfile `json:"hardware"`
	Results   []BackendResult `json:"results"`
}
