package models

// Backend is a transcoding execution path. Software is always the fallback
// baseline; the hardware backends are only attempted when the prober has
// confirmed the matching encoder and device are present.
type Backend string

const (
	BackendSoftware Backend = "software"
	BackendNVENC    Backend = "nvenc"
	BackendQSV      Backend = "qsv"
	BackendAMF      Backend = "amf"
)

// AllBackends lists every known backend in probe and report order.
func AllBackends() []Backend {
	return []Backend{BackendSoftware, BackendNVENC, BackendQSV, BackendAMF}
}

// Vendor returns the GPU vendor a hardware backend requires, or "" for the
// software backend.
func (b Backend) Vendor() string {
	switch b {
	case BackendNVENC:
		return VendorNVIDIA
	case BackendQSV:
		return VendorIntel
	case BackendAMF:
		return VendorAMD
	default:
		return ""
	}
}

// Encoder returns the ffmpeg H.264 encoder name this backend drives.
func (b Backend) Encoder() string {
	switch b {
	case BackendNVENC:
		return "h264_nvenc"
	case BackendQSV:
		return "h264_qsv"
	case BackendAMF:
		return "h264_vaapi"
	default:
		return "libx264"
	}
}

// ScaleTarget is one target resolution/bitrate condition.
type ScaleTarget struct {
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Bitrate int    `json:"bitrate"`
	Label   string `json:"label"`
}

// Scale targets matching the fixed benchmark ladder.
var (
	Scale2160p = ScaleTarget{Name: "2160p", Height: 2160, Bitrate: 79616000, Label: "2160p @ 80 Mbps"}
	Scale1080p = ScaleTarget{Name: "1080p", Height: 1080, Bitrate: 9616000, Label: "1080p @ 10 Mbps"}
	Scale720p  = ScaleTarget{Name: "720p", Height: 720, Bitrate: 3616000, Label: "720p @ 4 Mbps"}
)

// ScaleTargetByName resolves a target name from the CLI.
func ScaleTargetByName(name string) (ScaleTarget, bool) {
	switch name {
	case Scale2160p.Name:
		return Scale2160p, true
	case Scale1080p.Name:
		return Scale1080p, true
	case Scale720p.Name:
		return Scale720p, true
	}
	return ScaleTarget{}, false
}
