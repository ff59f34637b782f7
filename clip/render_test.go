package clip

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArgs(t *testing.T, p Params, captions []Caption) string {
	t.Helper()
	r := NewRenderer(Tools{FFmpeg: "ffmpeg"}, zerolog.Nop())
	return strings.Join(r.Build(p, captions).GetArgs(), " ")
}

func TestBuildPlainGIF(t *testing.T) {
	p := DefaultParams()
	p.File = "in.mp4"
	p.Start = 2
	p.Duration = 3
	p.FPS = 10
	p.Output = "out.gif"

	args := buildArgs(t, p, nil)
	assert.Contains(t, args, "-ss 2")
	assert.Contains(t, args, "-t 3")
	assert.Contains(t, args, "-i in.mp4")
	assert.Contains(t, args, "-filter_complex")
	assert.Contains(t, args, "fps=10")
	assert.Contains(t, args, "palettegen")
	assert.Contains(t, args, "paletteuse")
	assert.Contains(t, args, "-loop 0")
	assert.Contains(t, args, "-f gif")
	assert.Contains(t, args, filepath.Join("output", "out.gif"))
	assert.Contains(t, args, "-y")

	assert.NotContains(t, args, "setpts")
	assert.NotContains(t, args, "scale=")
	assert.NotContains(t, args, "drawtext")
}

func TestBuildWithEffects(t *testing.T) {
	p := DefaultParams()
	p.File = "in.mp4"
	p.Duration = 4.5
	p.Speed = 2
	p.Resize = 0.5
	p.Text = "Hello"
	p.Position = "top_left"
	p.Opacity = 0.5
	p.Color = "yellow"
	p.Loop = 3

	args := buildArgs(t, p, nil)
	assert.Contains(t, args, "-t 4.5")
	assert.Contains(t, args, "setpts=PTS/2")
	assert.Contains(t, args, "scale=iw*0.5:ih*0.5:flags=lanczos")
	assert.Contains(t, args, "drawtext=")
	assert.Contains(t, args, "text=Hello")
	assert.Contains(t, args, "fontcolor=yellow@0.5")
	assert.Contains(t, args, "fontsize=50")
	assert.Contains(t, args, "font=sans-serif")
	assert.Contains(t, args, "-loop 3")

	// speed change happens before resize, resize before the overlay
	setpts := strings.Index(args, "setpts")
	scale := strings.Index(args, "scale=")
	drawtext := strings.Index(args, "drawtext")
	assert.Less(t, setpts, scale)
	assert.Less(t, scale, drawtext)
}

func TestBuildUsesFontFile(t *testing.T) {
	p := DefaultParams()
	p.File = "in.mp4"
	p.Text = "Hi"
	p.Font = "fonts/Lato.ttf"

	args := buildArgs(t, p, nil)
	assert.Contains(t, args, "fontfile=fonts/Lato.ttf")
}

func TestBuildCaptions(t *testing.T) {
	p := DefaultParams()
	p.File = "in.mp4"

	args := buildArgs(t, p, []Caption{
		{Text: "one", Start: 0, End: 1},
		{Text: "two", Start: 1, End: 2.5},
	})
	assert.Equal(t, 2, strings.Count(args, "drawtext"))
	assert.Contains(t, args, "text=one")
	assert.Contains(t, args, "text=two")
	assert.Contains(t, args, "enable=between(t")
	assert.Contains(t, args, "boxcolor=black@0.5")
}

func TestIsFontFile(t *testing.T) {
	assert.False(t, IsFontFile("sans-serif"))
	assert.False(t, IsFontFile("Liberation-Sans"))
	assert.True(t, IsFontFile("Lato.ttf"))
	assert.True(t, IsFontFile("Lato.OTF"))
	assert.True(t, IsFontFile("/usr/share/fonts/lato"))
	assert.True(t, IsFontFile(`C:\Windows\Fonts\arial`))
}

func TestFontExists(t *testing.T) {
	assert.True(t, FontExists("sans-serif"))
	assert.False(t, FontExists(filepath.Join(t.TempDir(), "missing.ttf")))

	path := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, os.WriteFile(path, []byte("not really a font"), 0o644))
	assert.True(t, FontExists(path))
}

func TestTextArgsEscapesOptionValues(t *testing.T) {
	p := DefaultParams()
	p.Font = `C:\Fonts\a.ttf`

	args := textArgs(p, "Note: don't stop", ResolvePosition("center"))
	assert.Equal(t, `Note\: don\'t stop`, args["text"])
	assert.Equal(t, `C\:\\Fonts\\a.ttf`, args["fontfile"])
	assert.NotContains(t, args, "font")

	p.Font = "DejaVu Sans:bold"
	args = textArgs(p, `back\slash`, ResolvePosition("center"))
	assert.Equal(t, `DejaVu Sans\:bold`, args["font"])
	assert.Equal(t, `back\\slash`, args["text"])
}

func TestBuildEscapesTextAndCaptions(t *testing.T) {
	p := DefaultParams()
	p.File = "in.mp4"
	p.Text = "Note: don't stop"
	p.Font = `C:\Fonts\a.ttf`

	args := buildArgs(t, p, []Caption{{Text: "it's 5:00", Start: 0, End: 1}})
	assert.NotContains(t, args, "text=Note: don't stop")
	assert.NotContains(t, args, "text=it's 5:00")
	assert.NotContains(t, args, `fontfile=C:\Fonts`)
	assert.Equal(t, 2, strings.Count(args, "drawtext"))
}

func TestFindToolsPrefersSiblingFFprobe(t *testing.T) {
	_, err := FindTools(filepath.Join(t.TempDir(), "ffmpeg"))
	assert.ErrorIs(t, err, ErrFFmpegNotFound)

	dir := t.TempDir()
	ffmpegPath := filepath.Join(dir, "ffmpeg")
	ffprobePath := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(ffmpegPath, nil, 0o755))
	require.NoError(t, os.WriteFile(ffprobePath, nil, 0o755))

	tools, err := FindTools(ffmpegPath)
	require.NoError(t, err)
	assert.Equal(t, ffmpegPath, tools.FFmpeg)
	assert.Equal(t, ffprobePath, tools.FFprobe)
}

func TestFindToolsFallsBackToPathFFprobe(t *testing.T) {
	dir := t.TempDir()
	ffmpegPath := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(ffmpegPath, nil, 0o755))
	t.Setenv("PATH", t.TempDir())

	_, err := FindTools(ffmpegPath)
	assert.ErrorIs(t, err, ErrFFprobeNotFound)
}

func TestRenderEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg test in short mode")
	}
	tools, err := FindTools("")
	if err != nil {
		t.Skip("ffmpeg or ffprobe not installed")
	}
	tools.ProbeTimeout = 30 * time.Second
	r := NewRenderer(tools, zerolog.Nop())

	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp4")
	gen := exec.Command(tools.FFmpeg, "-y", "-f", "lavfi", "-i", "testsrc=duration=3:size=160x120:rate=10", "-c:v", "mpeg4", src)
	out, err := gen.CombinedOutput()
	require.NoError(t, err, string(out))

	info, err := r.Probe(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 160, info.Width)
	assert.Equal(t, 120, info.Height)
	assert.InDelta(t, 3, info.Duration, 0.2)

	p := DefaultParams()
	p.File = src
	p.Start = 1
	p.Duration = 1
	p.FPS = 5
	p.Speed = 2
	p.Resize = 0.5
	p.Output = "out.gif"
	p.OutputDir = filepath.Join(dir, "output")

	require.NoError(t, r.Render(context.Background(), p, nil))

	stat, err := os.Stat(p.OutputPath())
	require.NoError(t, err)
	assert.Greater(t, stat.Size(), int64(0))

	require.NoError(t, r.WritePreview(context.Background(), p.OutputPath(), p.PreviewPath(), PreviewHeight))
	_, err = os.Stat(p.PreviewPath())
	assert.NoError(t, err)
}
