package hardware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/hwabench/hwabench/pkg/models"
)

// lshwNode is the subset of an lshw -json record the inspector consumes.
type lshwNode struct {
	ID       string     `json:"id"`
	Class    string     `json:"class"`
	Vendor   string     `json:"vendor"`
	Product  string     `json:"product"`
	BusInfo  string     `json:"businfo"`
	Children []lshwNode `json:"children"`
}

// runLSHW invokes "lshw -json -class <class>" and returns the parsed nodes.
func runLSHW(ctx context.Context, class string) ([]lshwNode, error) {
	lshwPath, err := exec.LookPath("lshw")
	if err != nil {
		return nil, &DetectionError{Message: "the 'lshw' program is required to gather system information; please install it", Err: err}
	}

	cmd := exec.CommandContext(ctx, lshwPath, "-json", "-class", class)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &DetectionError{
			Message: fmt.Sprintf("lshw -class %s failed: %s", class, bytes.TrimSpace(stderr.Bytes())),
			Err:     err,
		}
	}

	nodes, err := parseLSHW(stdout.Bytes())
	if err != nil {
		return nil, &DetectionError{Message: fmt.Sprintf("cannot parse lshw -class %s output", class), Err: err}
	}
	return nodes, nil
}

// parseLSHW handles both output forms lshw produces: a JSON array of nodes
// (modern versions) or a single object (older versions and single-device
// hosts).
func parseLSHW(data []byte) ([]lshwNode, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var nodes []lshwNode
	if err := json.Unmarshal(trimmed, &nodes); err == nil {
		return nodes, nil
	}

	var single lshwNode
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []lshwNode{single}, nil
}

// filterGPUs keeps only display adapters from vendors with a transcoding
// path and assigns detection-order indices.
func filterGPUs(nodes []lshwNode) []models.GPUDevice {
	var gpus []models.GPUDevice
	for _, n := range nodes {
		switch n.Vendor {
		case models.VendorNVIDIA, models.VendorAMD, models.VendorIntel:
			gpus = append(gpus, models.GPUDevice{
				Index:   len(gpus),
				Vendor:  n.Vendor,
				Product: n.Product,
				BusInfo: n.BusInfo,
			})
		}
	}
	return gpus
}
