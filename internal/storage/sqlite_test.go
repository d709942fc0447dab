package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CanvasBoard/internal/state"
)

func openTemp(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "boards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample() []state.Element {
	rect := state.NewElement("r", state.KindRectangle, 10, 20, state.Style{Stroke: "#000000", Fill: "#ffffff", StrokeWidth: 2, Opacity: 1})
	rect.Width, rect.Height = 100, 50

	pen := state.NewElement("p", state.KindPen, 1, 2, state.Style{Stroke: "#ff0000", Fill: "transparent", StrokeWidth: 3, Opacity: 0.5})
	pen.Path().Points = []state.Point{{X: 1, Y: 2}, {X: 5, Y: 9}}

	arrow := state.NewElement("a", state.KindArrow, 0, 0, state.Style{Stroke: "#000000", StrokeWidth: 2, Opacity: 1})
	arrow.Line().EndX, arrow.Line().EndY = 40, 30

	note := state.NewElement("s", state.KindSticky, 200, 200, state.Style{Fill: "#FEF08A", Opacity: 1})
	note.Width, note.Height = 150, 150
	note.Label().Text = "hello\nworld"
	note.Label().FontSize = 14
	return []state.Element{rect, pen, arrow, note}
}

func placed(els []state.Element) []state.Placed {
	out := make([]state.Placed, len(els))
	for i, el := range els {
		out[i] = state.Placed{Z: i, Element: el}
	}
	return out
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.CreateBoard(ctx, "b1", "Planning"))

	els := sample()
	conns := []state.Connection{
		{ID: "c2", SourceID: "r", TargetID: "s", SourceHandle: state.AnchorRight, TargetHandle: state.AnchorLeft},
		{ID: "c1", SourceID: "s", TargetID: "gone", SourceHandle: state.AnchorTop, TargetHandle: state.AnchorBottom},
	}
	require.NoError(t, s.Save(ctx, "b1", placed(els), nil, conns))

	gotEls, gotConns, err := s.Load(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, els, gotEls)
	assert.Equal(t, conns, gotConns, "connections keep insertion order, dangling ones included")
}

func TestSaveAppliesDiff(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.CreateBoard(ctx, "b1", "Planning"))
	els := sample()
	require.NoError(t, s.Save(ctx, "b1", placed(els), nil, nil))

	moved := els[0].Clone()
	moved.X = 500
	require.NoError(t, s.Save(ctx, "b1", []state.Placed{{Z: 3, Element: moved}}, []string{"p", "s"}, nil))

	got, conns, err := s.Load(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "r", got[1].ID, "z-order follows the saved index")
	assert.Equal(t, 500.0, got[1].X)
	assert.Empty(t, conns)
}

func TestLoadRecoversMalformedContent(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.CreateBoard(ctx, "b1", "Planning"))
	require.NoError(t, s.Save(ctx, "b1", placed(sample()), nil, nil))

	_, err := s.db.Exec(`UPDATE elements SET content = '{"points": "nope"}' WHERE id = 'p'`)
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE elements SET content = 'not json' WHERE id = 's'`)
	require.NoError(t, err)

	got, _, err := s.Load(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Empty(t, got[1].Path().Points)
	assert.Equal(t, 3.0, got[1].StrokeWidth)
	assert.Equal(t, "", got[3].Label().Text)
	assert.Equal(t, 150.0, got[3].Width)
}

func TestBoards(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, _, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrBoardNotFound)
	assert.ErrorIs(t, s.Save(ctx, "missing", nil, nil, nil), ErrBoardNotFound)

	require.NoError(t, s.CreateBoard(ctx, "b1", "One"))
	require.NoError(t, s.CreateBoard(ctx, "b2", "Two"))
	require.NoError(t, s.CreateBoard(ctx, "b1", "Ignored"))
	require.NoError(t, s.Save(ctx, "b1", placed(sample()), nil, nil))

	boards, err := s.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 2)
	names := []string{boards[0].Name, boards[1].Name}
	assert.ElementsMatch(t, []string{"One", "Two"}, names)

	require.NoError(t, s.DeleteBoard(ctx, "b1"))
	assert.ErrorIs(t, s.DeleteBoard(ctx, "b1"), ErrBoardNotFound)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM elements`).Scan(&n))
	assert.Zero(t, n, "elements go with their board")
}
