package models

// GPU vendor strings as reported by lshw. Only these three vendors have a
// hardware transcoding path worth testing; everything else is discarded.
const (
	VendorNVIDIA = "NVIDIA Corporation"
	VendorAMD    = "Advanced Micro Devices, Inc. [AMD/ATI]"
	VendorIntel  = "Intel Corporation"
)

// GPUDevice is one display adapter detected on the host.
type GPUDevice struct {
	Index   int    `json:"index"`
	Vendor  string `json:"vendor"`
	Product string `json:"product"`
	BusInfo string `json:"bus_info"`
}

// OSInfo identifies the host operating system and distribution.
type OSInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FFmpegInfo records the transcoder binary that produced the results.
type FFmpegInfo struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// HardwareProfile is the normalized host description embedded in every
// report. Captured once per run and never mutated afterwards.
type HardwareProfile struct {
	CPUModel    string      `json:"cpu_model"`
	CPUThreads  int         `json:"cpu_threads"`
	RAMBytes    uint64      `json:"ram_bytes"`
	OS          OSInfo      `json:"os"`
	FFmpeg      FFmpegInfo  `json:"ffmpeg"`
	GPUs        []GPUDevice `json:"gpus"`
	SelectedGPU *int        `json:"selected_gpu"`
}
