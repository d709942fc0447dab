package export

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/geom"
	"CanvasBoard/internal/state"
)

func TestParseColor(t *testing.T) {
	c, ok := ParseColor("#FF0000")
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, c)

	c, ok = ParseColor("#0f0")
	require.True(t, ok)
	assert.Equal(t, uint8(0xff), c.G)

	for _, s := range []string{"", "transparent", "Transparent", "red", "#12"} {
		_, ok := ParseColor(s)
		assert.False(t, ok, s)
	}
	assert.Equal(t, uint8(128), WithOpacity(color.NRGBA{A: 0xff}, 0.5).A)
	assert.Equal(t, uint8(0xff), WithOpacity(color.NRGBA{A: 0xff}, 3).A)
}

func square(id string, x, y, size float64, fill string) state.Element {
	el := state.NewElement(id, state.KindRectangle, x, y, state.Style{Stroke: "#000000", StrokeWidth: 1, Fill: fill, Opacity: 1})
	el.Width, el.Height = size, size
	return el
}

func frameOf(els ...state.Element) engine.Frame {
	return engine.Frame{Elements: els, Camera: state.NewCamera()}
}

func TestRenderPNGFollowsCamera(t *testing.T) {
	f := frameOf(square("r", 10, 10, 50, "#FF0000"))

	img := RenderPNG(f, 200, 200)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, color.NRGBAModel.Convert(img.At(35, 35)))
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, color.NRGBAModel.Convert(img.At(100, 100)))

	f.Camera = state.Camera{X: 20, Y: 0, Zoom: 2}
	img = RenderPNG(f, 200, 200)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, color.NRGBAModel.Convert(img.At(100, 100)))
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, color.NRGBAModel.Convert(img.At(30, 30)))
}

func TestPNGFitsContent(t *testing.T) {
	note := state.NewElement("s", state.KindSticky, 300, 100, state.Style{Stroke: "#1E293B", Fill: "#FEF08A", Opacity: 1})
	note.Width, note.Height = 150, 150
	note.Label().Text = "ship it"

	pen := state.NewElement("p", state.KindPen, 0, 0, state.Style{Stroke: "#1E293B", StrokeWidth: 2, Opacity: 1})
	pen.Path().Points = []state.Point{{X: 0, Y: 0}, {X: 20, Y: 20}}

	arrow := state.NewElement("a", state.KindArrow, 100, 100, state.Style{Stroke: "#1E293B", StrokeWidth: 2, Opacity: 1})
	arrow.Line().EndX, arrow.Line().EndY = 200, 150

	f := frameOf(square("r", 0, 0, 100, "transparent"), note, pen, arrow)
	f.Connectors = []engine.Connector{{
		Connection: state.Connection{ID: "c", SourceID: "r", TargetID: "s"},
		Curve:      geom.Connector(geom.Bounds(f.Elements[0]), state.AnchorRight, geom.Bounds(note), state.AnchorLeft),
	}}
	f.Camera = state.Camera{X: 999, Y: 999, Zoom: 0.1}

	path := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, PNG(path, f))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	cfg, err := png.DecodeConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 450+2*Padding, cfg.Width)
	assert.Equal(t, 250+2*Padding, cfg.Height)
}

func TestPDF(t *testing.T) {
	label := state.NewElement("t", state.KindText, 10, 10, state.Style{Stroke: "#1E293B", Opacity: 1})
	label.Label().Text = "Größe\nzwei"
	f := frameOf(square("r", 0, 0, 100, "#FFFFFF"), label)
	f.Elements = append(f.Elements, state.NewElement("e", state.KindEllipse, 50, 50, state.Style{Stroke: "#3B82F6", StrokeWidth: 2, Fill: "transparent", Opacity: 0.5}))
	f.Elements[2].Width, f.Elements[2].Height = 80, 40

	path := filepath.Join(t.TempDir(), "board.pdf")
	require.NoError(t, PDF(path, f))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestEmptyBoardsDoNotExport(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, PNG(filepath.Join(dir, "a.png"), frameOf()), ErrEmpty)
	assert.ErrorIs(t, PDF(filepath.Join(dir, "a.pdf"), frameOf()), ErrEmpty)
	_, err := os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, os.IsNotExist(err))
}
