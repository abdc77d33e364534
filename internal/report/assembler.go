// Package report assembles and serializes the final benchmark document.
// Assembly is a pure data transformation: once written, nothing is retried
// or recomputed.
package report

import (
	"time"

	"github.com/hwabench/hwabench/pkg/models"
)

// ToolName identifies this benchmark in reports and metrics.
const ToolName = "hwabench"

// Assemble merges the hardware profile, run options and per-backend results
// into the root report document. Called exactly once, after all trials.
func Assemble(version string, opts models.RunOptions, hw models.HardwareProfile, results []models.BackendResult) *models.Report {
	return &models.Report{
		Tool: models.ToolInfo{
			Name:    ToolName,
			Version: version,
		},
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Options:   opts,
		Hardware:  hw,
		Results:   results,
	}
}
