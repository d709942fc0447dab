package state

import (
	"encoding/json"
	"fmt"
	"log"
)

// wireElement is the flat JSON shape elements take on the network and at rest.
type wireElement struct {
	ID          string          `json:"id"`
	Type        Kind            `json:"type"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Fill        string          `json:"fill"`
	Stroke      string          `json:"stroke"`
	StrokeWidth float64         `json:"strokeWidth"`
	Opacity     float64         `json:"opacity"`
	Text        *string         `json:"text,omitempty"`
	FontSize    *float64        `json:"fontSize,omitempty"`
	Points      json.RawMessage `json:"points,omitempty"`
	EndX        *float64        `json:"endX,omitempty"`
	EndY        *float64        `json:"endY,omitempty"`
}

// Content is the kind-specific part of an element, stored as a JSON blob by
// persistence layers that keep the common fields in columns.
type Content struct {
	Text     *string         `json:"text,omitempty"`
	FontSize *float64        `json:"fontSize,omitempty"`
	Points   json.RawMessage `json:"points,omitempty"`
	EndX     *float64        `json:"endX,omitempty"`
	EndY     *float64        `json:"endY,omitempty"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	w := wireElement{
		ID:          e.ID,
		Type:        e.Kind,
		X:           e.X,
		Y:           e.Y,
		Width:       e.Width,
		Height:      e.Height,
		Fill:        e.Fill,
		Stroke:      e.Stroke,
		StrokeWidth: e.StrokeWidth,
		Opacity:     e.Opacity,
	}
	c, err := e.content()
	if err != nil {
		return nil, err
	}
	w.Text, w.FontSize, w.Points, w.EndX, w.EndY = c.Text, c.FontSize, c.Points, c.EndX, c.EndY
	return json.Marshal(w)
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var w wireElement
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode element: %w", err)
	}
	*e = Element{
		ID:     w.ID,
		Kind:   w.Type,
		X:      w.X,
		Y:      w.Y,
		Width:  w.Width,
		Height: w.Height,
		Style: Style{
			Fill:        w.Fill,
			Stroke:      w.Stroke,
			StrokeWidth: w.StrokeWidth,
			Opacity:     w.Opacity,
		},
	}
	e.ApplyContent(Content{Text: w.Text, FontSize: w.FontSize, Points: w.Points, EndX: w.EndX, EndY: w.EndY})
	return nil
}

func (e Element) content() (Content, error) {
	var c Content
	switch b := e.Body.(type) {
	case *Path:
		pts, err := json.Marshal(b.Points)
		if err != nil {
			return c, fmt.Errorf("encode points of %s: %w", e.ID, err)
		}
		c.Points = pts
	case *Line:
		c.EndX, c.EndY = &b.EndX, &b.EndY
	case *Label:
		c.Text, c.FontSize = &b.Text, &b.FontSize
	}
	return c, nil
}

// ContentJSON encodes the kind-specific payload of the element.
func (e Element) ContentJSON() ([]byte, error) {
	c, err := e.content()
	if err != nil {
		return nil, err
	}
	return json.Marshal(c)
}

// ApplyContent installs the kind-specific payload. Fields that are missing or do not
// parse fall back to the kind default so the element itself is never lost.
func (e *Element) ApplyContent(c Content) {
	e.Body = defaultBody(e.Kind, e.X, e.Y)
	switch b := e.Body.(type) {
	case *Path:
		if len(c.Points) == 0 {
			b.Points = nil
			return
		}
		var pts []Point
		if err := json.Unmarshal(c.Points, &pts); err != nil {
			log.Printf("[STATE] element %s: unreadable points, using empty path: %v", e.ID, err)
			b.Points = nil
			return
		}
		b.Points = pts
	case *Line:
		if c.EndX != nil {
			b.EndX = *c.EndX
		}
		if c.EndY != nil {
			b.EndY = *c.EndY
		}
	case *Label:
		if c.Text != nil {
			b.Text = *c.Text
		}
		if c.FontSize != nil && *c.FontSize > 0 {
			b.FontSize = *c.FontSize
		}
	}
}

// ApplyContentJSON is ApplyContent for a raw blob; an unreadable blob yields defaults.
func (e *Element) ApplyContentJSON(blob []byte) {
	var c Content
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &c); err != nil {
			log.Printf("[STATE] element %s: unreadable content, using defaults: %v", e.ID, err)
			c = Content{}
		}
	}
	e.ApplyContent(c)
}
