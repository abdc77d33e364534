package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/hwabench/hwabench/pkg/models"
)

// WriteTextfile exports the benchmark outcome in Prometheus text format for
// the node_exporter textfile collector. Written atomically (temp + rename)
// so a scrape never sees a half-written file.
func WriteTextfile(r *models.Report, path string) error {
	reg := prometheus.NewRegistry()

	runInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hwabench_run_info",
		Help: "Benchmark run identity; value is always 1.",
	}, []string{"version", "ffmpeg_version", "cpu_model"})

	maxStreams := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hwabench_max_passing_streams",
		Help: "Highest simultaneous stream count sustained at realtime speed per backend.",
	}, []string{"backend", "scale"})

	trialSpeed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hwabench_trial_speed_ratio",
		Help: "Achieved transcode speed ratio per trial (>= 1.0 is realtime).",
	}, []string{"backend", "streams"})

	backendFailed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hwabench_backend_failed",
		Help: "1 when the backend's test failed entirely, 0 otherwise.",
	}, []string{"backend"})

	reg.MustRegister(runInfo, maxStreams, trialSpeed, backendFailed)

	runInfo.WithLabelValues(r.Tool.Version, r.Hardware.FFmpeg.Version, r.Hardware.CPUModel).Set(1)

	for _, res := range r.Results {
		failed := 0.0
		if res.Error != nil {
			failed = 1.0
		}
		backendFailed.WithLabelValues(string(res.Backend)).Set(failed)

		if res.MaxPassingStreams != nil {
			maxStreams.WithLabelValues(string(res.Backend), r.Options.Scale).Set(float64(*res.MaxPassingStreams))
		}
		for _, trial := range res.Trials {
			if trial.Error == "" {
				trialSpeed.WithLabelValues(string(res.Backend), strconv.Itoa(trial.Streams)).Set(trial.Speed)
			}
		}
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create metrics textfile: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := expfmt.NewEncoder(tmp, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return os.Rename(tmpName, path)
}
