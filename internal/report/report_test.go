package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hwabench/hwabench/pkg/models"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func sampleReport() *models.Report {
	gpu := 0
	hw := models.HardwareProfile{
		CPUModel:   "AMD Ryzen 9 5950X 16-Core Processor",
		CPUThreads: 32,
		RAMBytes:   68719476736,
		OS:         models.OSInfo{ID: "ubuntu", Name: "Ubuntu 24.04.1 LTS", Version: "24.04"},
		FFmpeg:     models.FFmpegInfo{Version: "6.0.1-Jellyfin", Path: "/usr/lib/jellyfin-ffmpeg/ffmpeg"},
		GPUs: []models.GPUDevice{
			{Index: 0, Vendor: models.VendorNVIDIA, Product: "GA104 [GeForce RTX 3070]", BusInfo: "pci@0000:01:00.0"},
		},
		SelectedGPU: &gpu,
	}

	opts := models.RunOptions{
		FFmpegPath: "/usr/lib/jellyfin-ffmpeg/ffmpeg",
		VideosDir:  "/var/cache/hwabench",
		Scale:      "720p",
		MaxStreams: 64,
	}

	results := []models.BackendResult{
		{
			Backend:           models.BackendSoftware,
			MaxPassingStreams: intPtr(4),
			Trials: []models.Measurement{
				{Streams: 1, ScaleFrom: "1080p", ScaleTo: "720p", Speed: 3.74, Frame: 900, TimeSeconds: 9.4, RSSKb: 359936, Passed: true},
				{Streams: 2, ScaleFrom: "1080p", ScaleTo: "720p", Speed: 1.91, Frame: 900, TimeSeconds: 18.1, RSSKb: 412000, Passed: true},
				{Streams: 4, ScaleFrom: "1080p", ScaleTo: "720p", Speed: 1.02, Frame: 900, TimeSeconds: 34.0, RSSKb: 520000, Passed: true},
				{Streams: 8, ScaleFrom: "1080p", ScaleTo: "720p", Speed: 0.54, Frame: 900, TimeSeconds: 64.2, RSSKb: 710000, Passed: false},
			},
		},
		{
			Backend:           models.BackendNVENC,
			MaxPassingStreams: intPtr(16),
			Trials: []models.Measurement{
				{Streams: 1, ScaleFrom: "1080p", ScaleTo: "720p", Speed: 9.8, Frame: 900, TimeSeconds: 3.5, RSSKb: 210000, Passed: true},
				{Streams: 16, ScaleFrom: "1080p", ScaleTo: "720p", Speed: 1.1, Frame: 900, TimeSeconds: 31.0, RSSKb: 280000, Passed: true},
			},
		},
		{
			Backend: models.BackendQSV,
			Error:   strPtr("Cannot load libmfx"),
			Trials: []models.Measurement{
				{Streams: 1, ScaleFrom: "1080p", ScaleTo: "720p", Error: "Cannot load libmfx"},
			},
		},
	}

	return Assemble("1.0.0", opts, hw, results)
}

func TestReportRoundTrip(t *testing.T) {
	r := sampleReport()

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded models.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Assemble truncates the timestamp to whole seconds, so the decoded
	// document must match the original field for field.
	if !reflect.DeepEqual(*r, decoded) {
		t.Errorf("round trip changed the report:\n got %+v\nwant %+v", decoded, *r)
	}
}

func TestReportJSONShape(t *testing.T) {
	r := sampleReport()

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)

	// Failed backend: explicit null max plus an error string.
	if !strings.Contains(text, `"max_passing_streams":null`) {
		t.Error("failed backend should serialize max_passing_streams as null")
	}
	if !strings.Contains(text, `"error":"Cannot load libmfx"`) {
		t.Error("failed backend should carry its error string")
	}
	// Passing trial: the error key is omitted entirely.
	if strings.Contains(text, `"error":""`) {
		t.Error("empty trial errors must be omitted, not serialized as empty strings")
	}
	if !strings.Contains(text, `"backend":"nvenc"`) {
		t.Error("backend names should serialize as their lowercase identifiers")
	}
}

func TestWriteSingleDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := Write(sampleReport(), path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var doc models.Report
	if err := dec.Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.More() {
		t.Error("output contains more than one JSON document")
	}
	if doc.Tool.Name != ToolName {
		t.Errorf("tool name = %s, want %s", doc.Tool.Name, ToolName)
	}
}

func TestCheckWritable(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "report.json")
	if err := CheckWritable(path); err != nil {
		t.Errorf("CheckWritable(%s): %v", path, err)
	}
	// The probe must not leave a file behind.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("probe file left in place")
	}

	if err := CheckWritable("-"); err != nil {
		t.Errorf("CheckWritable(-): %v", err)
	}

	err := CheckWritable(filepath.Join(dir, "no", "such", "dir", "report.json"))
	var wErr *WriteError
	if !errors.As(err, &wErr) {
		t.Fatalf("got %v, want WriteError", err)
	}
}

func TestCheckWritableKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, []byte("old report"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := CheckWritable(path); err != nil {
		t.Fatalf("CheckWritable: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "old report" {
		t.Error("writability probe must not disturb an existing file")
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{"software", "nvenc", "qsv", "16", "3.74x", "Cannot load libmfx"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hwabench.prom")

	if err := WriteTextfile(sampleReport(), path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`hwabench_run_info{`,
		`hwabench_max_passing_streams{backend="software",scale="720p"} 4`,
		`hwabench_max_passing_streams{backend="nvenc",scale="720p"} 16`,
		`hwabench_trial_speed_ratio{backend="software",streams="1"} 3.74`,
		`hwabench_backend_failed{backend="qsv"} 1`,
		`hwabench_backend_failed{backend="software"} 0`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}

func TestSubmit(t *testing.T) {
	var received models.Report
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode submission: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	if err := Submit(context.Background(), srv.URL, sampleReport()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if received.Tool.Name != ToolName {
		t.Errorf("submitted tool name = %s", received.Tool.Name)
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	err := Submit(context.Background(), srv.URL, sampleReport())
	if err == nil {
		t.Fatal("expected error for rejected submission")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error should carry status and body snippet: %v", err)
	}
}
