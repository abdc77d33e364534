package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/hwabench/hwabench/pkg/logging"
	"github.com/hwabench/hwabench/pkg/models"
)

// DownloadError reports a failure to acquire the test corpus. The run cannot
// proceed without it, so callers treat this as fatal.
type DownloadError struct {
	Asset   string
	Message string
	Err     error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download of %s failed: %s: %v", e.Asset, e.Message, e.Err)
	}
	return fmt.Sprintf("download of %s failed: %s", e.Asset, e.Message)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Provider ensures the fixed test corpus exists in the videos directory,
// fetching missing or size-mismatched files from the mirror. Pre-existing
// unrelated files in the directory are left alone.
type Provider struct {
	dir    string
	client *http.Client
	log    *logging.Logger
}

// NewProvider creates a provider for the given videos directory.
func NewProvider(dir string, log *logging.Logger) *Provider {
	return &Provider{
		dir:    dir,
		client: &http.Client{},
		log:    log,
	}
}

// SetClient overrides the HTTP client (used by tests).
func (p *Provider) SetClient(c *http.Client) {
	p.client = c
}

// FilePath returns the on-disk location of an asset.
func (p *Provider) FilePath(asset models.TestAsset) string {
	return filepath.Join(p.dir, Filename(asset))
}

// Filename derives the local file name from the asset URL.
func Filename(asset models.TestAsset) string {
	u, err := url.Parse(asset.URL)
	if err != nil {
		return path.Base(asset.URL)
	}
	return path.Base(u.Path)
}

// EnsureAll checks each asset in the manifest and downloads whatever is
// missing or has the wrong size. Returns a DownloadError on the first
// failure: a partial corpus is not usable.
func (p *Provider) EnsureAll(ctx context.Context, manifest []models.TestAsset) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return &DownloadError{Asset: "corpus", Message: fmt.Sprintf("cannot create videos directory %s", p.dir), Err: err}
	}

	for _, asset := range manifest {
		valid, reason := p.check(asset)
		if valid {
			p.log.Info(fmt.Sprintf("Found valid test file %s (%dMiB)", p.FilePath(asset), asset.SizeMiB))
			continue
		}

		p.log.Info(fmt.Sprintf("Downloading %s (%dMiB) to %s", Filename(asset), asset.SizeMiB, p.dir),
			map[string]interface{}{"reason": reason})
		if err := p.download(ctx, asset); err != nil {
			return err
		}
		p.log.Info(fmt.Sprintf("Downloaded %s", Filename(asset)))
	}
	return nil
}

// check reports whether the asset already exists with the expected size.
func (p *Provider) check(asset models.TestAsset) (bool, string) {
	info, err := os.Stat(p.FilePath(asset))
	if err != nil {
		return false, "missing"
	}
	// Whole-MiB comparison, matching how the mirror publishes sizes.
	actualMiB := info.Size() / (1024 * 1024)
	if actualMiB != asset.SizeMiB {
		return false, fmt.Sprintf("size mismatch: %dMiB not %dMiB", actualMiB, asset.SizeMiB)
	}
	return true, ""
}

func (p *Provider) download(ctx context.Context, asset models.TestAsset) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return &DownloadError{Asset: asset.Name, Message: "invalid URL", Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &DownloadError{Asset: asset.Name, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DownloadError{Asset: asset.Name, Message: fmt.Sprintf("mirror returned status %d", resp.StatusCode)}
	}

	// Download to a temp file first so an interrupted fetch never leaves a
	// plausible-looking partial asset behind.
	target := p.FilePath(asset)
	tmp, err := os.CreateTemp(p.dir, Filename(asset)+".part-*")
	if err != nil {
		return &DownloadError{Asset: asset.Name, Message: "videos directory is not writable", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	written, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &DownloadError{Asset: asset.Name, Message: "transfer failed", Err: err}
	}

	if written/(1024*1024) != asset.SizeMiB {
		return &DownloadError{
			Asset:   asset.Name,
			Message: fmt.Sprintf("size mismatch after download: got %dMiB, expected %dMiB", written/(1024*1024), asset.SizeMiB),
		}
	}

	if err := os.Rename(tmpName, target); err != nil {
		return &DownloadError{Asset: asset.Name, Message: "cannot move downloaded file into place", Err: err}
	}
	return nil
}
