package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/dkarlovi/gifcreator/clip"
	"github.com/rs/zerolog"
	"github.com/symfony-cli/console"
)

func createFlags() []console.Flag {
	return []console.Flag{
		&console.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "The video file to convert"},
		&console.IntFlag{Name: "start", Aliases: []string{"s"}, DefaultValue: 0, Usage: "Start time in seconds"},
		&console.IntFlag{Name: "duration", Aliases: []string{"d"}, DefaultValue: 5, Usage: "Length of the GIF in seconds"},
		&console.IntFlag{Name: "fps", Aliases: []string{"fp"}, DefaultValue: 15, Usage: "Frames per second of the GIF"},
		&console.Float64Flag{Name: "speedup", Aliases: []string{"sp"}, DefaultValue: 1.0, Usage: "Speed factor applied to the clip"},
		&console.Float64Flag{Name: "resize", Aliases: []string{"r"}, DefaultValue: 1.0, Usage: "Scale the video (e.g. 0.5, 1.0)"},
		&console.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Tagline text drawn over the GIF"},
		&console.StringFlag{Name: "position", Aliases: []string{"p"}, DefaultValue: "center", Usage: "Text position: top_left, top_right, bottom_left, bottom_right, center, top, bottom, left, right"},
		&console.StringFlag{Name: "font", Aliases: []string{"fo"}, DefaultValue: "sans-serif", Usage: "Font name or path to a TTF file"},
		&console.IntFlag{Name: "fontsize", Aliases: []string{"fs"}, DefaultValue: 50, Usage: "Font size of the text"},
		&console.Float64Flag{Name: "opacity", Aliases: []string{"op"}, DefaultValue: 1.0, Usage: "Opacity of the text, 0 to 1"},
		&console.StringFlag{Name: "color", DefaultValue: "white", Usage: "Color of the text (no -c shortcut, -c is the global --config option)"},
		&console.IntFlag{Name: "loop", DefaultValue: 0, Usage: "Number of times to loop the GIF (0 = infinite)"},
		&console.StringFlag{Name: "output", Aliases: []string{"o"}, DefaultValue: clip.DefaultOutput, Usage: "Output GIF file name"},
		&console.StringFlag{Name: "output-dir", DefaultValue: "output", Usage: "Directory the GIF is written to"},
		&console.StringFlag{Name: "subtitles", Usage: "Subtitle file (.srt, .vtt, .ssa, .ttml) burnt into the GIF"},
		&console.BoolFlag{Name: "preview", Usage: "Also write a PNG thumbnail of the first frame"},
		&console.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation on large GIFs"},
		&console.BoolFlag{Name: "no-open", Usage: "Do not open the GIF once created"},
		&console.BoolFlag{Name: "debug", Usage: "Log the ffmpeg command lines"},
	}
}

// flagSource is the part of *console.Context the create command reads.
type flagSource interface {
	IsSet(name string) bool
	String(name string) string
	Int(name string) int
	Float64(name string) float64
	Bool(name string) bool
}

// mediaTools wraps the ffmpeg work so the command flow can run without it.
type mediaTools interface {
	Probe(ctx context.Context, path string) (*clip.Info, error)
	Render(ctx context.Context, p clip.Params, captions []clip.Caption) error
	WritePreview(ctx context.Context, gifPath, snapshotPath string, height int) error
}

// paramsFromFlags starts from the configured defaults and applies only the
// flags given on the command line.
func paramsFromFlags(flags flagSource, config *Config) clip.Params {
	p := config.Params()
	p.File = flags.String("file")
	if flags.IsSet("start") {
		p.Start = flags.Int("start")
	}
	if flags.IsSet("duration") {
		p.Duration = float64(flags.Int("duration"))
	}
	if flags.IsSet("fps") {
		p.FPS = flags.Int("fps")
	}
	if flags.IsSet("speedup") {
		p.Speed = flags.Float64("speedup")
	}
	if flags.IsSet("resize") {
		p.Resize = flags.Float64("resize")
	}
	if flags.IsSet("position") {
		p.Position = flags.String("position")
	}
	if flags.IsSet("font") {
		p.Font = flags.String("font")
	}
	if flags.IsSet("fontsize") {
		p.FontSize = flags.Int("fontsize")
	}
	if flags.IsSet("opacity") {
		p.Opacity = flags.Float64("opacity")
	}
	if flags.IsSet("color") {
		p.Color = flags.String("color")
	}
	if flags.IsSet("loop") {
		p.Loop = flags.Int("loop")
	}
	if flags.IsSet("output") {
		p.Output = flags.String("output")
	}
	if flags.IsSet("output-dir") {
		p.OutputDir = flags.String("output-dir")
	}
	p.Text = flags.String("text")
	p.Subtitles = flags.String("subtitles")
	return p
}

func RunCreate(c *console.Context) error {
	config, err := readConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		return console.Exit(fmt.Sprintf("Error reading config: %v", err), 1)
	}
	logger := newLogger(os.Stderr, config.LogLevel, c.Bool("debug"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run := &creator{
		config: config,
		flags:  c,
		in:     os.Stdin,
		out:    c.App.Writer,
		logger: logger,
		tools: func() (mediaTools, error) {
			tools, err := clip.FindTools(config.FFmpegPath)
			if err != nil {
				return nil, err
			}
			tools.ProbeTimeout = config.ProbeTimeout
			return clip.NewRenderer(tools, logger), nil
		},
		open: func(path string) { openResult(path, logger) },
		now:  time.Now,
	}
	return run.execute(ctx)
}

type creator struct {
	config *Config
	flags  flagSource
	in     io.Reader
	out    io.Writer
	logger zerolog.Logger
	tools  func() (mediaTools, error)
	open   func(path string)
	now    func() time.Time
}

func (r *creator) execute(ctx context.Context) error {
	params := paramsFromFlags(r.flags, r.config)
	if _, err := os.Stat(params.File); err != nil {
		return console.Exit(fmt.Sprintf("Error: File '%s' not found.", params.File), 1)
	}

	tools, err := r.tools()
	if err != nil {
		return console.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	info, err := tools.Probe(ctx, params.File)
	if err != nil {
		return console.Exit(fmt.Sprintf("Error reading video: %v", err), 1)
	}
	r.logger.Debug().
		Float64("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Str("codec", info.Codec).
		Msg("probed source")

	if err := params.Normalize(info, r.now()); err != nil {
		return console.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	fmt.Fprintf(r.out, "Estimated frames: <info>%g</>\n", params.EstimatedFrames())
	if params.EstimatedFrames() > float64(r.config.FrameThreshold) && !r.flags.Bool("yes") {
		proceed, err := confirmLargeGIF(newPrompter(r.in, r.out), &params, info)
		if err != nil {
			return console.Exit(fmt.Sprintf("Error reading answer: %v", err), 1)
		}
		if !proceed {
			fmt.Fprintln(r.out, "GIF creation cancelled.")
			return nil
		}
	}

	r.printInfo(params, info)

	if params.Text != "" && !slices.Contains(clip.PositionNames, params.Position) {
		r.logger.Warn().Str("position", params.Position).Msg("unknown text position, using center")
	}

	if params.Text != "" && !clip.FontExists(params.Font) {
		fmt.Fprintf(r.out, "\n---------------------------------------------------------\n")
		fmt.Fprintf(r.out, "<error>ERROR: Font '%s' not found.</>\n", params.Font)
		fmt.Fprintf(r.out, "Please install the font or specify a different one\n")
		fmt.Fprintf(r.out, "using the --font option, e.g., --font 'Liberation-Sans'\n")
		fmt.Fprintf(r.out, "---------------------------------------------------------\n")
		return console.Exit("GIF creation aborted.", 1)
	}

	var captions []clip.Caption
	if params.Subtitles != "" {
		captions, err = clip.LoadCaptions(params.Subtitles, params.Start, params.Duration, params.Speed)
		if err != nil {
			return console.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		r.logger.Debug().Int("captions", len(captions)).Msg("loaded subtitles")
	}

	if err := tools.Render(ctx, params, captions); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return console.Exit("GIF creation interrupted.", 1)
		}
		return console.Exit(fmt.Sprintf("Error writing GIF: %v", err), 1)
	}
	fmt.Fprintf(r.out, "The <info>%s</> has been created!\n", params.Output)

	if r.flags.Bool("preview") {
		path := params.PreviewPath()
		if err := tools.WritePreview(ctx, params.OutputPath(), path, clip.PreviewHeight); err != nil {
			r.logger.Warn().Err(err).Msg("could not write preview")
		} else {
			fmt.Fprintf(r.out, "Preview written to <info>%s</>\n", path)
		}
	}

	if r.config.ShouldOpen() && !r.flags.Bool("no-open") {
		r.open(params.OutputPath())
	}
	return nil
}

func (r *creator) printInfo(params clip.Params, info *clip.Info) {
	w, h := params.OutputSize(info)
	fmt.Fprintf(r.out, "Video info:\n")
	fmt.Fprintf(r.out, " - Duration: <info>%.2f</> seconds\n", params.OutputDuration())
	fmt.Fprintf(r.out, " - Resolution: <info>%dx%d</>\n", w, h)
	fmt.Fprintf(r.out, " - FPS: <info>%.2f</>\n", info.FPS)
}
