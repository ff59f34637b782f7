package clip

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultOutput is the placeholder output name. Normalize replaces it with
// a timestamped name.
const DefaultOutput = "output.gif"

// DefaultFrameThreshold is the estimated frame count above which the user is
// asked to confirm before encoding.
const DefaultFrameThreshold = 300

var (
	ErrStartOutOfRange = errors.New("start time out of range")
	ErrInvalidFPS      = errors.New("fps must be a positive value")
	ErrInvalidSpeed    = errors.New("speedup must be a positive value")
	ErrInvalidResize   = errors.New("resize must be a positive value")
	ErrInvalidDuration = errors.New("duration must be a positive value")
)

type Params struct {
	File      string
	Start     int
	Duration  float64
	FPS       int
	Speed     float64
	Resize    float64
	Text      string
	Position  string
	Font      string
	FontSize  int
	Opacity   float64
	Color     string
	Loop      int
	Output    string
	OutputDir string
	Subtitles string
}

func DefaultParams() Params {
	return Params{
		Start:     0,
		Duration:  5,
		FPS:       15,
		Speed:     1.0,
		Resize:    1.0,
		Position:  "center",
		Font:      "sans-serif",
		FontSize:  50,
		Opacity:   1.0,
		Color:     "white",
		Loop:      0,
		Output:    DefaultOutput,
		OutputDir: "output",
	}
}

// Normalize checks p against the probed source and fills in derived values.
// Out of range durations and opacities are clamped rather than rejected.
func (p *Params) Normalize(info *Info, now time.Time) error {
	if p.Start < 0 || float64(p.Start) >= info.Duration {
		return fmt.Errorf("%w: %d not in [0, %.2f)", ErrStartOutOfRange, p.Start, info.Duration)
	}
	if err := p.check(); err != nil {
		return err
	}
	if p.Duration <= 0 || float64(p.Start)+p.Duration > info.Duration {
		p.Duration = info.Duration - float64(p.Start)
	}
	if p.Opacity < 0 || p.Opacity > 1 {
		p.Opacity = 1
	}
	if p.Output == DefaultOutput {
		p.Output = TimestampedName(now)
	}
	return nil
}

func (p *Params) check() error {
	if p.FPS <= 0 {
		return ErrInvalidFPS
	}
	if p.Speed <= 0 {
		return ErrInvalidSpeed
	}
	if p.Resize <= 0 {
		return ErrInvalidResize
	}
	return nil
}

// Edit replaces duration, fps and resize with user supplied values. The
// previous values are kept when the new combination does not validate; a
// duration running past the end of the source is clamped as in Normalize.
func (p *Params) Edit(info *Info, duration float64, fps int, resize float64) error {
	prev := *p
	p.Duration, p.FPS, p.Resize = duration, fps, resize
	if p.Duration <= 0 {
		*p = prev
		return ErrInvalidDuration
	}
	if err := p.check(); err != nil {
		*p = prev
		return err
	}
	if float64(p.Start)+p.Duration > info.Duration {
		p.Duration = info.Duration - float64(p.Start)
	}
	return nil
}

func TimestampedName(now time.Time) string {
	return fmt.Sprintf("output_%s.gif", now.Format("20060102_150405"))
}

// EstimatedFrames is the number of frames a GIF of the selected source
// window would hold at the requested frame rate.
func (p Params) EstimatedFrames() float64 {
	return p.Duration * float64(p.FPS)
}

// OutputDuration is the playback length after the speed change.
func (p Params) OutputDuration() float64 {
	return p.Duration / p.Speed
}

func (p Params) OutputSize(info *Info) (int, int) {
	if p.Resize == 1.0 {
		return info.Width, info.Height
	}
	return scaled(info.Width, p.Resize), scaled(info.Height, p.Resize)
}

func scaled(v int, factor float64) int {
	n := int(float64(v)*factor + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

func (p Params) OutputPath() string {
	return filepath.Join(p.OutputDir, p.Output)
}

// PreviewPath is the thumbnail written next to the GIF.
func (p Params) PreviewPath() string {
	return strings.TrimSuffix(p.OutputPath(), filepath.Ext(p.Output)) + ".png"
}
