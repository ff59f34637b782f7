package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dkarlovi/gifcreator/clip"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Defaults struct {
		Duration *float64 `yaml:"duration"`
		FPS      *int     `yaml:"fps"`
		Speedup  *float64 `yaml:"speedup"`
		Resize   *float64 `yaml:"resize"`
		Position *string  `yaml:"position"`
		Font     *string  `yaml:"font"`
		FontSize *int     `yaml:"fontsize"`
		Color    *string  `yaml:"color"`
		Opacity  *float64 `yaml:"opacity"`
		Loop     *int     `yaml:"loop"`
	} `yaml:"defaults"`
	OutputDir      string        `yaml:"output_dir"      env:"GIFCREATOR_OUTPUT_DIR"`
	FrameThreshold int           `yaml:"frame_threshold" env:"GIFCREATOR_FRAME_THRESHOLD"`
	FFmpegPath     string        `yaml:"ffmpeg_path"     env:"GIFCREATOR_FFMPEG_PATH"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"   env:"GIFCREATOR_PROBE_TIMEOUT"`
	OpenResult     *bool         `yaml:"open_result"     env:"GIFCREATOR_OPEN_RESULT"`
	LogLevel       string        `yaml:"log_level"       env:"GIFCREATOR_LOG_LEVEL"`
}

const defaultProbeTimeout = 30 * time.Second

// readConfig loads filename and applies environment overrides on top. A
// missing file is only an error when the user asked for it explicitly.
func readConfig(filename string, explicit bool) (*Config, error) {
	var config Config

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		decoder := yaml.NewDecoder(strings.NewReader(string(data)))
		decoder.KnownFields(true)
		if err := decoder.Decode(&config); err != nil {
			var typeError *yaml.TypeError
			if errors.As(err, &typeError) {
				msg := ""
				for _, field := range typeError.Errors {
					msg += fmt.Sprintf("  - <fg=red>%s</>\n", field)
				}
				return nil, fmt.Errorf("error parsing config file <info>%s</>:\n%s", filename, msg)
			}
			return nil, err
		}
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	if config.FrameThreshold <= 0 {
		config.FrameThreshold = clip.DefaultFrameThreshold
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = defaultProbeTimeout
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	return &config, nil
}

// Params returns the built-in defaults with the config file values applied.
func (c *Config) Params() clip.Params {
	p := clip.DefaultParams()
	d := c.Defaults
	if d.Duration != nil {
		p.Duration = *d.Duration
	}
	if d.FPS != nil {
		p.FPS = *d.FPS
	}
	if d.Speedup != nil {
		p.Speed = *d.Speedup
	}
	if d.Resize != nil {
		p.Resize = *d.Resize
	}
	if d.Position != nil {
		p.Position = *d.Position
	}
	if d.Font != nil {
		p.Font = *d.Font
	}
	if d.FontSize != nil {
		p.FontSize = *d.FontSize
	}
	if d.Color != nil {
		p.Color = *d.Color
	}
	if d.Opacity != nil {
		p.Opacity = *d.Opacity
	}
	if d.Loop != nil {
		p.Loop = *d.Loop
	}
	if c.OutputDir != "" {
		p.OutputDir = c.OutputDir
	}
	return p
}

func (c *Config) ShouldOpen() bool {
	return c.OpenResult == nil || *c.OpenResult
}
