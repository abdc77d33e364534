package assets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hwabench/hwabench/pkg/models"
)

// DefaultManifest returns the fixed benchmark corpus: four jellyfish clips
// covering both source codecs at both source resolutions. Sizes are whole
// MiB as served by the mirror.
func DefaultManifest() []models.TestAsset {
	return []models.TestAsset{
		{
			Name:    "2160p-hevc",
			URL:     "https://repo.jellyfin.org/jellyfish/media/jellyfish-120-mbps-4k-uhd-hevc-10bit.mkv",
			SizeMiB: 429,
		},
		{
			Name:    "2160p-h264",
			URL:     "https://repo.jellyfin.org/jellyfish/media/jellyfish-120-mbps-4k-uhd-h264.mkv",
			SizeMiB: 431,
		},
		{
			Name:    "1080p-hevc",
			URL:     "https://repo.jellyfin.org/jellyfish/media/jellyfish-40-mbps-hd-hevc-10bit.mkv",
			SizeMiB: 143,
		},
		{
			Name:    "1080p-h264",
			URL:     "https://repo.jellyfin.org/jellyfish/media/jellyfish-40-mbps-hd-h264.mkv",
			SizeMiB: 142,
		},
	}
}

// LoadManifest reads an alternate asset manifest from a YAML file. The file
// holds a list of assets with name/url/size_mib keys.
func LoadManifest(path string) ([]models.TestAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var manifest []models.TestAsset
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if len(manifest) == 0 {
		return nil, fmt.Errorf("manifest %s contains no assets", path)
	}
	for _, a := range manifest {
		if a.Name == "" || a.URL == "" || a.SizeMiB <= 0 {
			return nil, fmt.Errorf("manifest %s: asset %q is missing name, url or size_mib", path, a.Name)
		}
	}
	return manifest, nil
}

// FindAsset returns the named asset from a manifest.
func FindAsset(manifest []models.TestAsset, name string) (models.TestAsset, bool) {
	for _, a := range manifest {
		if a.Name == name {
			return a, true
		}
	}
	return models.TestAsset{}, false
}
