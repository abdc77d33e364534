package runner

import (
	"regexp"
	"strconv"
	"strings"
)

// TrialStats is the subset of transcoder output one trial is judged on.
// Speed is the realtime ratio from the final progress line: >= 1.0 means
// the transcode kept up with playback.
type TrialStats struct {
	Speed       float64
	Frame       int
	TimeSeconds float64
	RSSKb       float64
	Found       bool
}

var (
	speedRe  = regexp.MustCompile(`speed=\s*([0-9.]+)x`)
	frameRe  = regexp.MustCompile(`frame=\s*([0-9]+)`)
	rtimeRe  = regexp.MustCompile(`^bench: utime=.*\brtime=([0-9.]+)s`)
	maxrssRe = regexp.MustCompile(`^bench: maxrss=([0-9.]+)kB`)

	// Failure reason patterns, first match wins. These track the error
	// phrasings the transcoder emits for device/session failures.
	failedParenRe = regexp.MustCompile(` failed: (.*)\([0-9]+\)`)
	failedArrowRe = regexp.MustCompile(` failed -> (.*): (.*)`)
	errorLineRe   = regexp.MustCompile(`^Error (.*)`)
)

// ParseProgress extracts the trial statistics from captured transcoder
// stderr. The "speed=" token on the last progress line is the contract the
// whole benchmark rests on; the bench: lines come from -benchmark.
func ParseProgress(stderr string) TrialStats {
	var stats TrialStats

	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimRight(line, "\r")

		if m := speedRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				stats.Speed = v
				stats.Found = true
			}
			if fm := frameRe.FindStringSubmatch(line); fm != nil {
				if f, err := strconv.Atoi(fm[1]); err == nil {
					stats.Frame = f
				}
			}
		}

		if m := rtimeRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				stats.TimeSeconds = v
			}
		}
		if m := maxrssRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				stats.RSSKb = v
			}
		}
	}
	return stats
}

// FailureReason scans transcoder stderr for a recognizable error line and
// returns a short reason. The first matching line is canonical.
func FailureReason(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		if m := failedParenRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
		if m := failedArrowRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[2])
		}
		if m := errorLineRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return "generic failure"
}
