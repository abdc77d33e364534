package models

// TestAsset describes one fixed test video file in the benchmark corpus.
// Assets are identified by name, fetched once from their source URL, and
// validated by size only (the upstream mirror does not publish checksums).
type TestAsset struct {
	// Name is the corpus key, e.g. "1080p-h264".
	Name string `json:"name" yaml:"name"`
	// URL is the HTTP(S) download location.
	URL string `json:"url" yaml:"url"`
	// SizeMiB is the expected on-disk size in whole MiB.
	SizeMiB int64 `json:"size_mib" yaml:"size_mib"`
}

// Codec returns the source codec half of the asset name ("h264" or "hevc").
func (a TestAsset) Codec() string {
	for i := len(a.Name) - 1; i >= 0; i-- {
		if a.Name[i] == '-' {
			return a.Name[i+1:]
		}
	}
	return a.Name
}

// Resolution returns the source resolution half of the asset name,
// e.g. "1080p".
func (a TestAsset) Resolution() string {
	for i := 0; i < len(a.Name); i++ {
		if a.Name[i] == '-' {
			return a.Name[:i]
		}
	}
	return a.Name
}
