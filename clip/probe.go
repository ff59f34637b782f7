package clip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var ErrNoVideoStream = errors.New("no video stream found")

// Info describes the first video stream of a source file.
type Info struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
	Codec    string
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Duration     string `json:"duration"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

const defaultProbeTimeout = 30 * time.Second

// Probe runs the ffprobe binary at bin on path and returns the properties
// of its video stream.
func Probe(ctx context.Context, bin, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w, output: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return parseProbe(string(out))
}

// Probe inspects path with the resolved ffprobe, bounded by the probe timeout.
func (r *Renderer) Probe(ctx context.Context, path string) (*Info, error) {
	timeout := r.tools.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return Probe(ctx, r.tools.FFprobe, path)
}

func parseProbe(data string) (*Info, error) {
	var res probeResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, fmt.Errorf("decode probe output: %w", err)
	}

	var video *probeStream
	for i := range res.Streams {
		if res.Streams[i].CodecType == "video" {
			video = &res.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, ErrNoVideoStream
	}

	info := &Info{
		Width:  video.Width,
		Height: video.Height,
		Codec:  video.CodecName,
	}

	// stream duration first, container duration as fallback
	info.Duration = parseFloat(video.Duration)
	if info.Duration == 0 {
		info.Duration = parseFloat(res.Format.Duration)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("could not determine video duration")
	}

	info.FPS = parseRate(video.RFrameRate)
	if info.FPS == 0 {
		info.FPS = parseRate(video.AvgFrameRate)
	}
	return info, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseRate reads ffprobe rationals such as "30000/1001".
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return parseFloat(s)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}
