package state

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Rect is a top-left anchored box in canvas coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindDiamond   Kind = "diamond"
	KindText      Kind = "text"
	KindSticky    Kind = "sticky"
	KindPen       Kind = "pen"
	KindArrow     Kind = "arrow"
)

// Valid reports whether k is one of the known element kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindRectangle, KindEllipse, KindDiamond, KindText, KindSticky, KindPen, KindArrow:
		return true
	}
	return false
}

// Transparent is the fill sentinel meaning "no fill".
const Transparent = "transparent"

type Style struct {
	Stroke      string
	StrokeWidth float64
	Fill        string
	Opacity     float64
}

// Body is the kind-specific payload of an element. Shapes carry none.
type Body interface {
	cloneBody() Body
}

// Path is the freehand polyline of a pen element.
type Path struct {
	Points []Point
}

func (s *Path) cloneBody() Body {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	return &Path{Points: pts}
}

// Line holds the end point of an arrow; the start is the element's X,Y.
type Line struct {
	EndX, EndY float64
}

func (l *Line) cloneBody() Body {
	c := *l
	return &c
}

// Label is the text payload of text and sticky elements.
type Label struct {
	Text     string
	FontSize float64
}

func (l *Label) cloneBody() Body {
	c := *l
	return &c
}

const (
	DefaultTextFontSize   = 16
	DefaultStickyFontSize = 14
)

type Element struct {
	ID     string
	Kind   Kind
	X, Y   float64
	Width  float64
	Height float64
	Style
	Body Body
}

// NewElement returns an element of the given kind at (x, y) with the body the kind
// requires already attached.
func NewElement(id string, kind Kind, x, y float64, style Style) Element {
	el := Element{ID: id, Kind: kind, X: x, Y: y, Style: style}
	el.Body = defaultBody(kind, x, y)
	return el
}

func defaultBody(kind Kind, x, y float64) Body {
	switch kind {
	case KindPen:
		return &Path{Points: []Point{{X: x, Y: y}}}
	case KindArrow:
		return &Line{EndX: x, EndY: y}
	case KindText:
		return &Label{FontSize: DefaultTextFontSize}
	case KindSticky:
		return &Label{FontSize: DefaultStickyFontSize}
	}
	return nil
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	if e.Body != nil {
		e.Body = e.Body.cloneBody()
	}
	return e
}

// Path returns the pen payload, or nil for any other kind.
func (e *Element) Path() *Path {
	p, _ := e.Body.(*Path)
	return p
}

// Line returns the arrow payload, or nil for any other kind.
func (e *Element) Line() *Line {
	l, _ := e.Body.(*Line)
	return l
}

// Label returns the text payload of text and sticky elements.
func (e *Element) Label() *Label {
	l, _ := e.Body.(*Label)
	return l
}

// End returns the arrow end point, falling back to the start for malformed arrows.
func (e *Element) End() Point {
	if l := e.Line(); l != nil {
		return Point{X: l.EndX, Y: l.EndY}
	}
	return Point{X: e.X, Y: e.Y}
}

// Translate moves the element and every kind-specific coordinate by (dx, dy).
func (e *Element) Translate(dx, dy float64) {
	e.X += dx
	e.Y += dy
	switch b := e.Body.(type) {
	case *Path:
		for i := range b.Points {
			b.Points[i] = b.Points[i].Add(dx, dy)
		}
	case *Line:
		b.EndX += dx
		b.EndY += dy
	}
}

// Placed pairs an element with its position in the z-order.
type Placed struct {
	Z       int
	Element Element
}

func cloneAll(els []Element) []Element {
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = el.Clone()
	}
	return out
}

// Anchor names one of the four connection points of an element.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorRight  Anchor = "right"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
)

// Anchors lists the connection anchors in hit-test order.
var Anchors = []Anchor{AnchorTop, AnchorRight, AnchorBottom, AnchorLeft}

func (a Anchor) Valid() bool {
	switch a {
	case AnchorTop, AnchorRight, AnchorBottom, AnchorLeft:
		return true
	}
	return false
}

type Connection struct {
	ID           string `json:"id"`
	SourceID     string `json:"sourceId"`
	TargetID     string `json:"targetId"`
	SourceHandle Anchor `json:"sourceHandle"`
	TargetHandle Anchor `json:"targetHandle"`
}
