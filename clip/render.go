package clip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var (
	ErrFFmpegNotFound  = errors.New("ffmpeg binary not found")
	ErrFFprobeNotFound = errors.New("ffprobe binary not found")
)

// Tools locates the ffmpeg and ffprobe binaries.
type Tools struct {
	FFmpeg       string
	FFprobe      string
	ProbeTimeout time.Duration
}

// Renderer turns Params into an ffmpeg invocation. All decoding, filtering
// and GIF encoding is done by the ffmpeg binary.
type Renderer struct {
	tools  Tools
	logger zerolog.Logger
}

func NewRenderer(tools Tools, logger zerolog.Logger) *Renderer {
	return &Renderer{tools: tools, logger: logger}
}

// FindTools resolves ffmpeg and ffprobe. A configured ffmpeg must exist and
// its sibling ffprobe is preferred; without one both come from PATH.
func FindTools(configured string) (Tools, error) {
	var tools Tools
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return tools, fmt.Errorf("%w: %s", ErrFFmpegNotFound, configured)
		}
		tools.FFmpeg = configured
		sibling := filepath.Join(filepath.Dir(configured), "ffprobe"+filepath.Ext(configured))
		if _, err := os.Stat(sibling); err == nil {
			tools.FFprobe = sibling
			return tools, nil
		}
	} else {
		path, err := exec.LookPath("ffmpeg")
		if err != nil {
			return tools, fmt.Errorf("%w: %w", ErrFFmpegNotFound, err)
		}
		tools.FFmpeg = path
	}

	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return tools, fmt.Errorf("%w: %w", ErrFFprobeNotFound, err)
	}
	tools.FFprobe = path
	return tools, nil
}

// Build assembles the filter graph: subclip, speed change, resize, text
// overlay, captions, frame rate and a generated palette for the GIF encoder.
func (r *Renderer) Build(p Params, captions []Caption) *ffmpeg.Stream {
	stream := ffmpeg.Input(p.File, ffmpeg.KwArgs{
		"ss": p.Start,
		"t":  formatFloat(p.Duration),
	})

	if p.Speed != 1.0 {
		stream = stream.Filter("setpts", ffmpeg.Args{"PTS/" + formatFloat(p.Speed)})
	}

	if p.Resize != 1.0 {
		factor := formatFloat(p.Resize)
		stream = stream.Filter("scale", ffmpeg.Args{"iw*" + factor, "ih*" + factor}, ffmpeg.KwArgs{"flags": "lanczos"})
	}

	if p.Text != "" {
		pos := ResolvePosition(p.Position)
		stream = stream.Filter("drawtext", ffmpeg.Args{}, textArgs(p, p.Text, pos))
	}

	for _, c := range captions {
		args := textArgs(p, c.Text, ResolvePosition("bottom"))
		args["box"] = 1
		args["boxcolor"] = "black@0.5"
		args["boxborderw"] = 5
		args["enable"] = fmt.Sprintf("between(t,%s,%s)", formatFloat(c.Start), formatFloat(c.End))
		stream = stream.Filter("drawtext", ffmpeg.Args{}, args)
	}

	stream = stream.Filter("fps", ffmpeg.Args{strconv.Itoa(p.FPS)})

	split := stream.Split()
	palette := split.Get("0").Filter("palettegen", ffmpeg.Args{})
	stream = ffmpeg.Filter([]*ffmpeg.Stream{split.Get("1"), palette}, "paletteuse", ffmpeg.Args{})

	return stream.Output(p.OutputPath(), ffmpeg.KwArgs{"f": "gif", "loop": p.Loop}).OverWriteOutput()
}

// optionEscaper quotes drawtext option values. ffmpeg-go only escapes at the
// filter graph level, which ffmpeg strips before drawtext parses its options.
var optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)

func textArgs(p Params, text string, pos Position) ffmpeg.KwArgs {
	args := ffmpeg.KwArgs{
		"text":      optionEscaper.Replace(text),
		"expansion": "none",
		"x":         pos.X,
		"y":         pos.Y,
		"fontsize":  p.FontSize,
		"fontcolor": p.Color + "@" + formatFloat(p.Opacity),
	}
	if IsFontFile(p.Font) {
		args["fontfile"] = optionEscaper.Replace(p.Font)
	} else {
		args["font"] = optionEscaper.Replace(p.Font)
	}
	return args
}

// Render runs ffmpeg and writes the GIF to p.OutputPath().
func (r *Renderer) Render(ctx context.Context, p Params, captions []Caption) error {
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return r.run(ctx, r.Build(p, captions).GetArgs(), nil)
}

func (r *Renderer) run(ctx context.Context, args []string, stdout io.Writer) error {
	r.logger.Debug().Str("bin", r.tools.FFmpeg).Strs("args", args).Msg("running ffmpeg")

	cmd := exec.CommandContext(ctx, r.tools.FFmpeg, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// IsFontFile reports whether font names a file rather than a
// fontconfig family.
func IsFontFile(font string) bool {
	switch strings.ToLower(filepath.Ext(font)) {
	case ".ttf", ".otf", ".ttc":
		return true
	}
	return strings.ContainsAny(font, `/\`)
}

// FontExists is true for font family names, which are resolved by
// fontconfig at render time, and for font files present on disk.
func FontExists(font string) bool {
	if !IsFontFile(font) {
		return true
	}
	_, err := os.Stat(font)
	return err == nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
