package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hwabench/hwabench/pkg/logging"
	"github.com/hwabench/hwabench/pkg/models"
)

func quietLogger() *logging.Logger {
	log := logging.NewLogger(logging.ERROR)
	log.SetOutput(io.Discard)
	return log
}

func oneMiB() []byte {
	return bytes.Repeat([]byte{0xAB}, 1024*1024)
}

func TestEnsureAllDownloadsMissing(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(oneMiB())
	}))
	defer srv.Close()

	dir := t.TempDir()
	p := NewProvider(dir, quietLogger())
	manifest := []models.TestAsset{{Name: "1080p-h264", URL: srv.URL + "/clip.mkv", SizeMiB: 1}}

	if err := p.EnsureAll(context.Background(), manifest); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	if hits != 1 {
		t.Errorf("got %d downloads, want 1", hits)
	}

	info, err := os.Stat(filepath.Join(dir, "clip.mkv"))
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if info.Size() != 1024*1024 {
		t.Errorf("file size = %d, want 1MiB", info.Size())
	}

	// Second run must hit the cache, not the mirror.
	if err := p.EnsureAll(context.Background(), manifest); err != nil {
		t.Fatalf("EnsureAll (cached): %v", err)
	}
	if hits != 1 {
		t.Errorf("got %d downloads after cached run, want 1", hits)
	}
}

func TestEnsureAllRedownloadsSizeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(oneMiB())
	}))
	defer srv.Close()

	dir := t.TempDir()
	// A truncated leftover from an interrupted earlier run.
	if err := os.WriteFile(filepath.Join(dir, "clip.mkv"), []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewProvider(dir, quietLogger())
	manifest := []models.TestAsset{{Name: "1080p-h264", URL: srv.URL + "/clip.mkv", SizeMiB: 1}}

	if err := p.EnsureAll(context.Background(), manifest); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	info, _ := os.Stat(filepath.Join(dir, "clip.mkv"))
	if info.Size() != 1024*1024 {
		t.Errorf("file not replaced, size = %d", info.Size())
	}
}

func TestEnsureAllSizeMismatchAfterDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("way too small"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	p := NewProvider(dir, quietLogger())
	manifest := []models.TestAsset{{Name: "1080p-h264", URL: srv.URL + "/clip.mkv", SizeMiB: 1}}

	err := p.EnsureAll(context.Background(), manifest)
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("got %v, want DownloadError", err)
	}
	if dlErr.Asset != "1080p-h264" {
		t.Errorf("Asset = %s", dlErr.Asset)
	}

	// The broken transfer must not leave a plausible-looking asset behind.
	if _, err := os.Stat(filepath.Join(dir, "clip.mkv")); !os.IsNotExist(err) {
		t.Error("partial download left in place")
	}
}

func TestEnsureAllServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProvider(t.TempDir(), quietLogger())
	manifest := []models.TestAsset{{Name: "2160p-h264", URL: srv.URL + "/clip.mkv", SizeMiB: 1}}

	err := p.EnsureAll(context.Background(), manifest)
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("got %v, want DownloadError", err)
	}
}

func TestFilename(t *testing.T) {
	asset := models.TestAsset{URL: "https://repo.jellyfin.org/jellyfish/media/jellyfish-40-mbps-hd-h264.mkv"}
	if got := Filename(asset); got != "jellyfish-40-mbps-hd-h264.mkv" {
		t.Errorf("Filename = %s", got)
	}
}
