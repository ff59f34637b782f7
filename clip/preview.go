package clip

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// PreviewHeight is the height of the thumbnail written by WritePreview.
const PreviewHeight = 200

func previewStream(gifPath string) *ffmpeg.Stream {
	return ffmpeg.Input(gifPath).
		Filter("select", ffmpeg.Args{"gte(n,0)"}).
		Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "mjpeg"})
}

// WritePreview grabs the first frame of gifPath and saves it as a thumbnail
// of the given height, keeping the aspect ratio.
func (r *Renderer) WritePreview(ctx context.Context, gifPath, snapshotPath string, height int) error {
	buf := bytes.NewBuffer(nil)
	if err := r.run(ctx, previewStream(gifPath).GetArgs(), buf); err != nil {
		return fmt.Errorf("extract first frame: %w", err)
	}

	img, err := imaging.Decode(buf)
	if err != nil {
		return fmt.Errorf("decode first frame: %w", err)
	}
	if img.Bounds().Dy() > height {
		img = imaging.Resize(img, 0, height, imaging.Lanczos)
	}
	if err := imaging.Save(img, snapshotPath); err != nil {
		return fmt.Errorf("save preview: %w", err)
	}
	return nil
}
