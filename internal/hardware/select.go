package hardware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hwabench/hwabench/pkg/models"
)

// AmbiguousDeviceError is returned when a multi-GPU host needs an explicit
// --gpu selection, or the provided index does not exist. Its message lists
// every detected GPU so the caller can re-run with the right index.
type AmbiguousDeviceError struct {
	GPUs     []models.GPUDevice
	Selected int // -1 when no selection was provided
}

func (e *AmbiguousDeviceError) Error() string {
	var b strings.Builder
	if e.Selected < 0 {
		b.WriteString("multiple GPUs detected and no --gpu index provided; re-run with --gpu INDEX\n")
	} else {
		fmt.Fprintf(&b, "invalid --gpu index %d; re-run with one of the detected indices\n", e.Selected)
	}
	b.WriteString("Found GPUs:")
	for _, gpu := range e.GPUs {
		fmt.Fprintf(&b, "\n  %d: %s %s bus ID %s", gpu.Index, gpu.Vendor, gpu.Product, gpu.BusInfo)
	}
	return b.String()
}

// Selection is the resolved GPU choice plus the argument form the transcoder
// templates need for device initialization.
type Selection struct {
	GPU models.GPUDevice
	// Arg is a sequential ordinal for NVIDIA (CUDA device numbering) or the
	// DRM by-path fragment (businfo with '@' replaced by '-') otherwise.
	Arg string
}

// SelectGPU resolves which GPU a run will test. idx is the --gpu value, or
// -1 when the flag was not given. With zero GPUs detected an empty selection
// is returned: only the software backend can run.
func SelectGPU(gpus []models.GPUDevice, idx int) (*Selection, error) {
	if len(gpus) == 0 {
		return nil, nil
	}

	var chosen models.GPUDevice
	switch {
	case len(gpus) == 1 && idx < 0:
		chosen = gpus[0]
	case idx < 0:
		return nil, &AmbiguousDeviceError{GPUs: gpus, Selected: -1}
	case idx >= len(gpus):
		return nil, &AmbiguousDeviceError{GPUs: gpus, Selected: idx}
	default:
		chosen = gpus[idx]
	}

	return &Selection{GPU: chosen, Arg: deviceArg(gpus, chosen)}, nil
}

// deviceArg derives the per-vendor device argument. NVIDIA cards need a
// sequential CUDA ordinal counted among NVIDIA cards only; AMD and Intel
// cards are addressed by their DRM by-path node.
func deviceArg(gpus []models.GPUDevice, chosen models.GPUDevice) string {
	if chosen.Vendor == models.VendorNVIDIA {
		ordinal := 0
		for _, gpu := range gpus {
			if gpu.Index == chosen.Index {
				break
			}
			if gpu.Vendor == models.VendorNVIDIA {
				ordinal++
			}
		}
		return strconv.Itoa(ordinal)
	}
	return strings.ReplaceAll(chosen.BusInfo, "@", "-")
}
