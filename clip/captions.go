package clip

import (
	"fmt"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
)

// Caption is a subtitle line placed on the output timeline, in seconds.
type Caption struct {
	Text  string
	Start float64
	End   float64
}

// LoadCaptions reads a subtitle file and keeps the lines that overlap the
// selected source window. Times are clipped to the window and divided by
// the speed factor so they line up with the sped up GIF.
func LoadCaptions(path string, start int, duration float64, speed float64) ([]Caption, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitles %s: %w", path, err)
	}
	return captionsFrom(subs, start, duration, speed), nil
}

func captionsFrom(subs *astisub.Subtitles, start int, duration float64, speed float64) []Caption {
	from := time.Duration(start) * time.Second
	to := from + time.Duration(duration*float64(time.Second))

	captions := make([]Caption, 0)
	for _, item := range subs.Items {
		if item.EndAt <= from || item.StartAt >= to {
			continue
		}
		text := strings.TrimSpace(item.String())
		if text == "" {
			continue
		}
		s := max(item.StartAt, from) - from
		e := min(item.EndAt, to) - from
		captions = append(captions, Caption{
			Text:  text,
			Start: s.Seconds() / speed,
			End:   e.Seconds() / speed,
		})
	}
	return captions
}
