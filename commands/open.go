package commands

import (
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
)

// openCommand returns the command that shows path in the platform's
// default viewer.
func openCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// openResult starts the viewer and does not wait for it. Failing to open
// the file is not an error, the GIF has already been written.
func openResult(path string, logger zerolog.Logger) {
	cmd := openCommand(runtime.GOOS, path)
	if err := cmd.Start(); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("could not open result")
		return
	}
	if err := cmd.Process.Release(); err != nil {
		logger.Debug().Err(err).Msg("release viewer process")
	}
}
