package ansihtml

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/x/ansi"
)

// basic16 is the xterm default palette for the 8 standard and 8 bright
// colours.
var basic16 = [16]string{
	"#000000", "#cd0000", "#00cd00", "#cdcd00", "#0000ee", "#cd00cd", "#00cdcd", "#e5e5e5",
	"#7f7f7f", "#ff0000", "#00ff00", "#ffff00", "#5c5cff", "#ff00ff", "#00ffff", "#ffffff",
}

// cssColor returns the CSS form of a colour decoded from an SGR sequence.
// Indexes below 16 use the xterm palette so they match the 30-37 and
// 90-97 codes.
func cssColor(c color.Color) string {
	if c == nil {
		return ""
	}
	if i, ok := c.(ansi.IndexedColor); ok && i < 16 {
		return basic16[i]
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return "transparent"
	}
	return rgb(int(r>>8), int(g>>8), int(b>>8))
}

func rgb(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
