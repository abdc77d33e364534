package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/hwabench/hwabench/pkg/models"
)

// PrintSummary renders a human-readable per-backend table. The writer is
// expected to be stderr so the table never mixes into the report stream.
func PrintSummary(w io.Writer, r *models.Report) {
	fmt.Fprintf(w, "\nBenchmark summary (%s, ffmpeg %s):\n", r.Hardware.CPUModel, r.Hardware.FFmpeg.Version)

	table := tablewriter.NewWriter(w)
	table.Header("Backend", "Max Streams", "1-Stream Speed", "Trials", "Error")

	for _, res := range r.Results {
		maxStreams := "-"
		if res.MaxPassingStreams != nil {
			maxStreams = fmt.Sprintf("%d", *res.MaxPassingStreams)
		}

		singleSpeed := "-"
		for _, trial := range res.Trials {
			if trial.Streams == 1 && trial.Error == "" {
				singleSpeed = fmt.Sprintf("%.2fx", trial.Speed)
				break
			}
		}

		errText := ""
		if res.Error != nil {
			errText = *res.Error
		}

		table.Append(string(res.Backend), maxStreams, singleSpeed, fmt.Sprintf("%d", len(res.Trials)), errText)
	}

	table.Render()
}
