package engine

import "CanvasBoard/internal/state"

type Tool int

const (
	ToolSelect Tool = iota
	ToolHand
	ToolPen
	ToolRectangle
	ToolEllipse
	ToolDiamond
	ToolArrow
	ToolText
	ToolSticky
	ToolEraser
)

var toolNames = [...]string{"select", "hand", "pen", "rectangle", "ellipse", "diamond", "arrow", "text", "sticky", "eraser"}

func (t Tool) String() string {
	if int(t) < len(toolNames) {
		return toolNames[t]
	}
	return "unknown"
}

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolSelect, ToolHand, ToolPen, ToolRectangle, ToolEllipse, ToolDiamond, ToolArrow, ToolText, ToolSticky, ToolEraser}

// Shortcut is the single-letter key that selects the tool.
func (t Tool) Shortcut() string {
	for k, v := range shortcuts {
		if v == t {
			return k
		}
	}
	return ""
}

var shortcuts = map[string]Tool{
	"v": ToolSelect,
	"h": ToolHand,
	"p": ToolPen,
	"r": ToolRectangle,
	"o": ToolEllipse,
	"d": ToolDiamond,
	"a": ToolArrow,
	"t": ToolText,
	"s": ToolSticky,
	"e": ToolEraser,
}

// kind maps a drawing tool to the element kind it creates.
func (t Tool) kind() (state.Kind, bool) {
	switch t {
	case ToolPen:
		return state.KindPen, true
	case ToolRectangle:
		return state.KindRectangle, true
	case ToolEllipse:
		return state.KindEllipse, true
	case ToolDiamond:
		return state.KindDiamond, true
	case ToolArrow:
		return state.KindArrow, true
	case ToolText:
		return state.KindText, true
	case ToolSticky:
		return state.KindSticky, true
	}
	return "", false
}

// Cursor is the pointer shape shown while the tool is active and idle.
func (t Tool) Cursor(panning bool) string {
	switch t {
	case ToolHand:
		if panning {
			return "grabbing"
		}
		return "grab"
	case ToolPen, ToolRectangle, ToolEllipse, ToolDiamond, ToolArrow:
		return "crosshair"
	case ToolText:
		return "text"
	case ToolEraser:
		return "pointer"
	}
	return "default"
}

type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeCreating
	ModeMoving
	ModeResizing
	ModeConnecting
	ModeEditingText
)

var modeNames = [...]string{"idle", "panning", "creating", "moving", "resizing", "connecting", "editing-text"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Palettes used when creating sticky notes and colouring collaborator cursors.
var (
	StickyColors = []string{
		"#FEF3C7", "#DBEAFE", "#D1FAE5", "#FCE7F3", "#EDE9FE",
		"#FED7AA", "#DC2626", "#FCF75E", "#E3DAC9",
	}
	StrokeColors = []string{
		"#1E293B", "#FFFFFF", "#DC2626", "#2563EB", "#16A34A", "#CA8A04",
		"#9333EA", "#EC4899", "#F97316", "#E2E8F0",
	}
)

// Defaults are the style values applied to newly created elements.
type Defaults struct {
	Stroke      string
	Fill        string
	StrokeWidth float64
	FontSize    float64
}

func DefaultStyle() Defaults {
	return Defaults{
		Stroke:      "#1E293B",
		Fill:        state.Transparent,
		StrokeWidth: 2,
		FontSize:    state.DefaultTextFontSize,
	}
}
