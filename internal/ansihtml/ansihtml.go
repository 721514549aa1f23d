// Package ansihtml renders terminal output containing ANSI escape
// sequences as HTML.
//
// SGR styling (bold, dim, italic, underline, strikethrough and 16, 256 and
// 24-bit colours) becomes flat <span style="..."> runs; spans are never
// nested. All other escape sequences are dropped and text is
// HTML-escaped, so the result is safe to embed in a page.
//
//	html := ansihtml.Convert("\x1b[1;31merror\x1b[0m: disk full")
//	// <span style="font-weight:bold;color:#cd0000">error</span>: disk full
package ansihtml

import (
	"html"
	"image/color"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// style is the SGR state in effect for a run of text.
type style struct {
	bold, dim, italic, underline, strike bool
	fg, bg                               string
}

func (s style) css() string {
	var parts []string
	if s.bold {
		parts = append(parts, "font-weight:bold")
	}
	if s.dim {
		parts = append(parts, "opacity:0.7")
	}
	if s.italic {
		parts = append(parts, "font-style:italic")
	}
	switch {
	case s.underline && s.strike:
		parts = append(parts, "text-decoration:underline line-through")
	case s.underline:
		parts = append(parts, "text-decoration:underline")
	case s.strike:
		parts = append(parts, "text-decoration:line-through")
	}
	if s.fg != "" {
		parts = append(parts, "color:"+s.fg)
	}
	if s.bg != "" {
		parts = append(parts, "background-color:"+s.bg)
	}
	return strings.Join(parts, ";")
}

// converter accumulates output, opening a span only when styled text is
// actually written.
type converter struct {
	out     strings.Builder
	cur     style
	open    bool
	openCSS string
}

func (c *converter) text(s string) {
	if s == "" {
		return
	}
	css := c.cur.css()
	if c.open && css != c.openCSS {
		c.out.WriteString("</span>")
		c.open = false
	}
	if !c.open && css != "" {
		c.out.WriteString(`<span style="`)
		c.out.WriteString(css)
		c.out.WriteString(`">`)
		c.open = true
		c.openCSS = css
	}
	c.out.WriteString(html.EscapeString(s))
}

func (c *converter) finish() string {
	if c.open {
		c.out.WriteString("</span>")
	}
	return c.out.String()
}

// Convert renders s as HTML.
func Convert(s string) string {
	c := &converter{}
	c.out.Grow(len(s))

	p := ansi.GetParser()
	defer ansi.PutParser(p)

	textStart := 0
	for i := 0; i < len(s); {
		seq, width, n, _ := ansi.DecodeSequence(s[i:], ansi.NormalState, p)
		if isText(seq, width) {
			i += n
			continue
		}

		c.text(s[textStart:i])
		if ansi.HasCsiPrefix(seq) && isSGR(ansi.Cmd(p.Command())) {
			c.sgr(p.Params())
		}
		// Everything else, including unterminated sequences, is dropped.
		i += n
		textStart = i
	}
	c.text(s[textStart:])
	return c.finish()
}

// isText reports whether a decoded sequence is printable output. Newlines
// and tabs count as text; other control characters do not.
func isText(seq string, width int) bool {
	switch {
	case width > 0:
		return true
	case seq == "\n" || seq == "\t":
		return true
	default:
		// Zero-width graphemes such as a lone combining mark.
		return seq != "" && seq[0] >= 0xc0
	}
}

func isSGR(cmd ansi.Cmd) bool {
	return cmd.Final() == 'm' && cmd.Prefix() == 0 && cmd.Intermediate() == 0
}

// sgr applies a Select Graphic Rendition parameter list.
func (c *converter) sgr(params ansi.Params) {
	if len(params) == 0 {
		c.cur = style{}
		return
	}

	for k := 0; k < len(params); k++ {
		switch n := params[k].Param(0); {
		case n == 0:
			c.cur = style{}
		case n == 1:
			c.cur.bold = true
		case n == 2:
			c.cur.dim = true
		case n == 3:
			c.cur.italic = true
		case n == 4:
			c.cur.underline = true
		case n == 9:
			c.cur.strike = true
		case n == 22:
			c.cur.bold, c.cur.dim = false, false
		case n == 23:
			c.cur.italic = false
		case n == 24:
			c.cur.underline = false
		case n == 29:
			c.cur.strike = false
		case n >= 30 && n <= 37:
			c.cur.fg = basic16[n-30]
		case n == 38, n == 48:
			css, used := extendedColor(params[k:])
			if used == 0 {
				return // malformed colour: ignore the rest of the list
			}
			if css != "" && n == 38 {
				c.cur.fg = css
			} else if css != "" {
				c.cur.bg = css
			}
			k += used - 1
		case n == 39:
			c.cur.fg = ""
		case n >= 40 && n <= 47:
			c.cur.bg = basic16[n-40]
		case n == 49:
			c.cur.bg = ""
		case n >= 90 && n <= 97:
			c.cur.fg = basic16[n-90+8]
		case n >= 100 && n <= 107:
			c.cur.bg = basic16[n-100+8]
		}
	}
}

// extendedColor decodes a 38 or 48 colour at the start of params and
// returns its CSS form and the number of parameters consumed. Components
// outside 0-255 yield an empty colour.
func extendedColor(params ansi.Params) (string, int) {
	var co color.Color
	used := ansi.ReadStyleColor(params, &co)
	if used == 0 {
		return "", 0
	}
	for _, p := range params[2:used] {
		if v := p.Param(0); v < 0 || v > 255 {
			return "", used
		}
	}
	return cssColor(co), used
}

// Strip removes every ANSI escape sequence from s.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Width returns the display width of s in terminal cells, ignoring escape
// sequences.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Preview truncates s to width display cells (escape sequences preserved,
// tail appended when cut) and converts the result to HTML.
func Preview(s string, width int, tail string) string {
	return Convert(ansi.Truncate(s, width, tail))
}
