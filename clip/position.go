package clip

import "fmt"

// Position holds drawtext x/y expressions for one placement.
type Position struct {
	X string
	Y string
}

const margin = 10

var (
	left    = fmt.Sprintf("%d", margin)
	right   = fmt.Sprintf("w-text_w-%d", margin)
	top     = fmt.Sprintf("%d", margin)
	bottom  = fmt.Sprintf("h-text_h-%d", margin)
	centerX = "(w-text_w)/2"
	centerY = "(h-text_h)/2"
)

var positions = map[string]Position{
	"top_left":     {X: left, Y: top},
	"top_right":    {X: right, Y: top},
	"bottom_left":  {X: left, Y: bottom},
	"bottom_right": {X: right, Y: bottom},
	"center":       {X: centerX, Y: centerY},
	"top":          {X: centerX, Y: top},
	"bottom":       {X: centerX, Y: bottom},
	"left":         {X: left, Y: centerY},
	"right":        {X: right, Y: centerY},
}

// PositionNames lists the accepted --position values.
var PositionNames = []string{"top_left", "top_right", "bottom_left", "bottom_right", "center", "top", "bottom", "left", "right"}

// ResolvePosition maps a position name to drawtext coordinates, falling
// back to the centre for unknown names.
func ResolvePosition(name string) Position {
	if pos, ok := positions[name]; ok {
		return pos
	}
	return positions["center"]
}
