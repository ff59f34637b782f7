package main

import (
	"os"

	"github.com/dkarlovi/gifcreator/commands"
	"github.com/symfony-cli/console"
)

var (
	// version is overridden at linking time
	version = "dev"
	// buildDate is overridden at linking time
	buildDate string
)

func main() {
	app := &console.Application{
		Name:        "gifcreator",
		Usage:       "Make videos into GIFs",
		Description: "Uses ffmpeg to turn a segment of a video file into an animated GIF, with an optional text overlay.",
		Version:     version,
		BuildDate:   buildDate,
		Channel:     "stable",
		Flags: []console.Flag{
			&console.StringFlag{
				Name:         "config",
				Aliases:      []string{"c"},
				DefaultValue: "gifcreator.yaml",
				Usage:        "Path to config YAML file",
			},
		},
		Commands: commands.All(),
	}

	app.Run(os.Args)
}
