package clip

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeJSON = `{
	"streams": [
		{"index": 0, "codec_type": "audio", "codec_name": "aac", "duration": "9.98"},
		{"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
		 "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001", "duration": "10.010000"}
	],
	"format": {"duration": "10.100000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe(probeJSON)
	require.NoError(t, err)
	assert.Equal(t, 10.01, info.Duration)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, "h264", info.Codec)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
}

func TestParseProbeFallsBackToFormatDuration(t *testing.T) {
	info, err := parseProbe(`{
		"streams": [{"codec_type": "video", "width": 640, "height": 480, "r_frame_rate": "0/0", "avg_frame_rate": "25"}],
		"format": {"duration": "7.5"}
	}`)
	require.NoError(t, err)
	assert.Equal(t, 7.5, info.Duration)
	assert.Equal(t, 25.0, info.FPS)
}

func TestParseProbeErrors(t *testing.T) {
	_, err := parseProbe(`{"streams": [{"codec_type": "audio"}], "format": {"duration": "3"}}`)
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = parseProbe(`{"streams": [{"codec_type": "video"}], "format": {}}`)
	assert.Error(t, err)

	_, err = parseProbe(`not json`)
	assert.Error(t, err)
}

func TestRendererProbeUsesResolvedFFprobe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a unix shell")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\ncat <<'EOF'\n" + probeJSON + "\nEOF\n"
	ffprobe := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(ffprobe, []byte(script), 0o755))

	r := NewRenderer(Tools{FFmpeg: filepath.Join(dir, "ffmpeg"), FFprobe: ffprobe}, zerolog.Nop())
	info, err := r.Probe(context.Background(), "whatever.mp4")
	require.NoError(t, err)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, "h264", info.Codec)
}

func TestProbeReportsFailingBinary(t *testing.T) {
	_, err := Probe(context.Background(), filepath.Join(t.TempDir(), "ffprobe"), "in.mp4")
	assert.Error(t, err)
}
