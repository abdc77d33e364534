package runner

import (
	"strings"
	"testing"

	"github.com/hwabench/hwabench/pkg/models"
)

func TestBuildArgsSoftware(t *testing.T) {
	args := BuildArgs(models.BackendSoftware, "/videos/in.mkv", models.Scale720p, "", 4)
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-c:v libx264") {
		t.Error("software args missing libx264 encoder")
	}
	if !strings.Contains(joined, "split=4") {
		t.Error("filter graph missing split=4")
	}
	if got := strings.Count(joined, "-f null -"); got != 4 {
		t.Errorf("got %d null outputs, want 4", got)
	}
	if args[len(args)-1] != "-benchmark" {
		t.Error("args must end with -benchmark")
	}
	if strings.Contains(joined, "init_hw_device") {
		t.Error("software args must not initialize a hardware device")
	}
}

func TestBuildArgsHardwareDevices(t *testing.T) {
	tests := []struct {
		backend models.Backend
		gpuArg  string
		want    []string
	}{
		{models.BackendNVENC, "0", []string{"cuda=cu:0", "h264_cuvid", "h264_nvenc", "scale_cuda"}},
		{models.BackendQSV, "pci-0000:00:02.0", []string{"vaapi=va:/dev/dri/by-path/pci-0000:00:02.0-render", "qsv=qs@va", "h264_qsv", "scale_qsv"}},
		{models.BackendAMF, "pci-0000:0a:00.0", []string{"vaapi=va:/dev/dri/by-path/pci-0000:0a:00.0-render", "h264_vaapi", "scale_vaapi"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			args := BuildArgs(tt.backend, "/videos/in.mkv", models.Scale720p, tt.gpuArg, 2)
			joined := strings.Join(args, " ")
			for _, fragment := range tt.want {
				if !strings.Contains(joined, fragment) {
					t.Errorf("args missing %q:\n%s", fragment, joined)
				}
			}
		})
	}
}

func TestBuildArgsBitrate(t *testing.T) {
	args := BuildArgs(models.BackendSoftware, "/videos/in.mkv", models.Scale1080p, "", 1)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-b:v 9616000") || !strings.Contains(joined, "-maxrate 9616000") {
		t.Errorf("1080p target bitrate not applied:\n%s", joined)
	}
}

func TestFilterGraphSingleStream(t *testing.T) {
	graph := filterGraph(models.BackendSoftware, models.Scale720p, 1)
	if !strings.HasPrefix(graph, "[0:v]split=1[in1]") {
		t.Errorf("unexpected single-stream graph prefix: %s", graph)
	}
	if !strings.Contains(graph, "[out1]") {
		t.Errorf("graph missing labeled output: %s", graph)
	}
}
