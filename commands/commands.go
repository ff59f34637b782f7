package commands

import "github.com/symfony-cli/console"

func All() []*console.Command {
	return []*console.Command{
		{
			Name:        "create",
			Aliases:     []*console.Alias{{Name: "gif"}},
			Usage:       "Make a video segment into a GIF",
			Description: "Cuts a segment out of a video, optionally speeds it up, resizes it and draws a tagline or subtitles over it, then encodes the result as an animated GIF.",
			Flags:       createFlags(),
			Action:      RunCreate,
		},
	}
}
