package material

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned when a color string cannot be parsed.
var ErrInvalidColor = errors.New("material: invalid color")

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1]. Components are stored as float32
// because that is the precision the shading program receives.
type RGBA struct {
	R, G, B, A float32
}

// Color converts RGBA to the standard color.Color interface, rounding each
// component to 8 bits.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

func to8(x float32) uint8 {
	return uint8(clamp255(x*255 + 0.5))
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// ParseColor parses a CSS color name ("yellow", "gray"), a hex string in
// one of the forms "#RGB", "#RGBA", "#RRGGBB", "#RRGGBBAA", or the float
// form "rgba(r, g, b, a)" produced by String.
func ParseColor(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGBA{}, fmt.Errorf("%w: empty string", ErrInvalidColor)
	}
	if inner, ok := strings.CutPrefix(s, "rgba("); ok {
		return parseFloats(s, inner)
	}
	if s[0] != '#' {
		c, ok := colornames.Map[strings.ToLower(s)]
		if !ok {
			return RGBA{}, fmt.Errorf("%w: unknown color name %q", ErrInvalidColor, s)
		}
		return FromColor(c), nil
	}

	hex := s[1:]
	var r, g, b, a uint32
	a = 255

	var err error
	switch len(hex) {
	case 3: // RGB
		err = parseHex(hex, &r, &g, &b)
		r, g, b = r*17, g*17, b*17
	case 4: // RGBA
		err = parseHex(hex, &r, &g, &b, &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6: // RRGGBB
		err = parseHex(hex, &r, &g, &b)
	case 8: // RRGGBBAA
		err = parseHex(hex, &r, &g, &b, &a)
	default:
		err = fmt.Errorf("%w: %q has %d hex digits", ErrInvalidColor, s, len(hex))
	}
	if err != nil {
		return RGBA{}, err
	}

	return RGBA{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}, nil
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(s string) RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// UnmarshalText implements encoding.TextUnmarshaler so colors can be written
// as strings in TOML manifests and config files.
func (c *RGBA) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalText implements encoding.TextMarshaler. Colors that are exact
// 8-bit values use the #RRGGBBAA form; anything else uses the float form
// so that decoding returns the same bits.
func (c RGBA) MarshalText() ([]byte, error) {
	n := c.Color().(color.NRGBA)
	if FromColor(n) == c {
		return fmt.Appendf(nil, "#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
	}
	return []byte(c.String()), nil
}

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}

// parseFloats decodes the "r, g, b, a)" tail of the float form.
func parseFloats(s, inner string) (RGBA, error) {
	inner, ok := strings.CutSuffix(strings.TrimSpace(inner), ")")
	fields := strings.Split(inner, ",")
	if !ok || len(fields) != 4 {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	var v [4]float32
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %q: %w", ErrInvalidColor, s, err)
		}
		v[i] = float32(x)
	}
	return RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

// parseHex splits s into len(vals) equal-width fields and decodes each one.
func parseHex(s string, vals ...*uint32) error {
	width := len(s) / len(vals)
	for i, val := range vals {
		*val = 0
		for _, ch := range []byte(s[i*width : (i+1)*width]) {
			*val *= 16
			switch {
			case '0' <= ch && ch <= '9':
				*val += uint32(ch - '0')
			case 'a' <= ch && ch <= 'f':
				*val += uint32(ch - 'a' + 10)
			case 'A' <= ch && ch <= 'F':
				*val += uint32(ch - 'A' + 10)
			default:
				return fmt.Errorf("%w: bad hex digit %q", ErrInvalidColor, ch)
			}
		}
	}
	return nil
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// Common colors
var (
	Black  = RGB(0, 0, 0)
	White  = RGB(1, 1, 1)
	Red    = RGB(1, 0, 0)
	Gray   = RGB(0.5, 0.5, 0.5)
	Yellow = RGB(1, 1, 0)
)
