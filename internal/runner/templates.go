package runner

import (
	"fmt"
	"strings"

	"github.com/hwabench/hwabench/pkg/models"
)

// BuildArgs assembles the transcoder command line for one trial: decode the
// source once, fan out to N independent scale+encode chains via split, and
// discard the output. -benchmark makes the transcoder emit the utime/maxrss
// lines the parser consumes.
//
// The argument sets per backend mirror the canonical transcode paths:
// CUDA decode/scale/encode for NVENC, a VAAPI-derived QSV device for Intel,
// and the VAAPI device path form for AMD cards.
func BuildArgs(backend models.Backend, input string, target models.ScaleTarget, gpuArg string, streams int) []string {
	args := []string{"-hide_banner", "-nostdin"}

	switch backend {
	case models.BackendNVENC:
		args = append(args,
			"-init_hw_device", "cuda=cu:"+gpuArg,
			"-hwaccel", "cuda",
			"-hwaccel_output_format", "cuda",
			"-c:v", "h264_cuvid",
		)
	case models.BackendQSV:
		args = append(args,
			"-init_hw_device", "vaapi=va:/dev/dri/by-path/"+gpuArg+"-render",
			"-init_hw_device", "qsv=qs@va",
			"-hwaccel", "qsv",
			"-hwaccel_output_format", "qsv",
			"-c:v", "h264_qsv",
		)
	case models.BackendAMF:
		args = append(args,
			"-init_hw_device", "vaapi=va:/dev/dri/by-path/"+gpuArg+"-render",
			"-hwaccel", "vaapi",
			"-hwaccel_output_format", "vaapi",
			"-c:v", "h264",
		)
	default:
		args = append(args, "-c:v", "h264")
	}

	args = append(args,
		"-i", input,
		"-autoscale", "0",
		"-an", "-sn",
		"-filter_complex", filterGraph(backend, target, streams),
	)

	bitrate := fmt.Sprintf("%d", target.Bitrate)
	for i := 1; i <= streams; i++ {
		args = append(args, "-map", fmt.Sprintf("[out%d]", i))
		switch backend {
		case models.BackendNVENC:
			args = append(args, "-c:v", "h264_nvenc", "-preset", "p1")
		case models.BackendQSV:
			args = append(args, "-c:v", "h264_qsv", "-preset", "veryfast")
		case models.BackendAMF:
			args = append(args, "-c:v", "h264_vaapi")
		default:
			args = append(args, "-c:v", "libx264", "-preset", "veryfast")
		}
		args = append(args, "-b:v", bitrate, "-maxrate", bitrate, "-f", "null", "-")
	}

	return append(args, "-benchmark")
}

// filterGraph builds the split-and-scale graph simulating N concurrent
// streams inside one transcoder process. Commas inside scale expressions
// are filtergraph-escaped.
func filterGraph(backend models.Backend, target models.ScaleTarget, streams int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[0:v]split=%d", streams)
	for i := 1; i <= streams; i++ {
		fmt.Fprintf(&b, "[in%d]", i)
	}

	for i := 1; i <= streams; i++ {
		fmt.Fprintf(&b, ";[in%d]%s[out%d]", i, scaleChain(backend, target), i)
	}
	return b.String()
}

func scaleChain(backend models.Backend, target models.ScaleTarget) string {
	switch backend {
	case models.BackendNVENC:
		return fmt.Sprintf("scale_cuda=-1:%d:yuv420p", target.Height)
	case models.BackendQSV:
		return fmt.Sprintf("scale_qsv=-1:%d:format=nv12", target.Height)
	case models.BackendAMF:
		return fmt.Sprintf("scale_vaapi=-1:%d:format=nv12", target.Height)
	default:
		return fmt.Sprintf(
			`scale=trunc(min(max(iw\,ih*a)\,%d)/2)*2:trunc(ow/a/2)*2,format=yuv420p`,
			target.Height)
	}
}
