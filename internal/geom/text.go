package geom

import (
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"CanvasBoard/internal/state"
)

// Text is measured against the embedded Go Regular face so that bounds do not depend
// on the fonts installed on the machine.
var (
	fontOnce sync.Once
	ttf      *truetype.Font

	faceMu sync.Mutex
	faces  = map[float64]font.Face{}
)

func face(size float64) font.Face {
	if f, ok := faces[size]; ok {
		return f
	}
	f := NewFace(size)
	faces[size] = f
	return f
}

// NewFace returns an unshared Go Regular face for drawing text at size px.
// Faces are not safe for concurrent use.
func NewFace(size float64) font.Face {
	fontOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			panic(err) // embedded font
		}
		ttf = f
	})
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// MeasureLine returns the advance width of a single line of text at size px.
func MeasureLine(s string, size float64) float64 {
	if s == "" || size <= 0 {
		return 0
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	adv := font.MeasureString(face(size), s)
	return float64(adv) / 64
}

// LineHeight is the vertical advance of one line of text at size px.
func LineHeight(size float64) float64 { return size * LineHeightFactor }

// FontSize is the label size of el, or the default for its kind.
func FontSize(el state.Element) float64 {
	if l := el.Label(); l != nil && l.FontSize > 0 {
		return l.FontSize
	}
	if el.Kind == state.KindSticky {
		return state.DefaultStickyFontSize
	}
	return state.DefaultTextFontSize
}

// TextBounds measures a text element: the widest line plus padding (at least
// MinTextWidth) by the number of lines (at least one).
func TextBounds(el state.Element) state.Rect {
	size := FontSize(el)
	var text string
	if l := el.Label(); l != nil {
		text = l.Text
	}
	lines := strings.Split(text, "\n")
	lh := LineHeight(size)
	maxW := 0.0
	for _, line := range lines {
		maxW = math.Max(maxW, MeasureLine(line, size))
	}
	return state.Rect{
		X:      el.X,
		Y:      el.Y,
		Width:  math.Max(maxW+TextPadding, MinTextWidth),
		Height: math.Max(float64(len(lines))*lh, lh),
	}
}

// WrapWords breaks text into lines no wider than maxWidth, the way sticky notes lay
// out their content. A single word wider than maxWidth gets a line of its own.
func WrapWords(text string, size, maxWidth float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			test := word
			if line != "" {
				test = line + " " + word
			}
			if line != "" && MeasureLine(test, size) > maxWidth {
				out = append(out, line)
				line = word
				continue
			}
			line = test
		}
		out = append(out, line)
	}
	return out
}
