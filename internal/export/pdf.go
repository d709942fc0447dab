package export

import (
	"fmt"
	"image/color"

	"github.com/jung-kurt/gofpdf"

	"CanvasBoard/internal/engine"
	"CanvasBoard/internal/state"
)

// pdfSurface draws in points, one point per canvas unit, shifted by (dx, dy).
type pdfSurface struct {
	pdf    *gofpdf.Fpdf
	dx, dy float64
	tr     func(string) string
}

func (s *pdfSurface) style(p paint) string {
	alpha := 1.0
	switch {
	case p.hasStroke:
		alpha = float64(p.stroke.A) / 0xff
	case p.hasFill:
		alpha = float64(p.fill.A) / 0xff
	}
	s.pdf.SetAlpha(alpha, "Normal")
	switch {
	case p.hasFill && p.hasStroke:
		s.pdf.SetFillColor(int(p.fill.R), int(p.fill.G), int(p.fill.B))
		s.pdf.SetDrawColor(int(p.stroke.R), int(p.stroke.G), int(p.stroke.B))
		s.pdf.SetLineWidth(p.width)
		return "FD"
	case p.hasFill:
		s.pdf.SetFillColor(int(p.fill.R), int(p.fill.G), int(p.fill.B))
		return "F"
	case p.hasStroke:
		s.pdf.SetDrawColor(int(p.stroke.R), int(p.stroke.G), int(p.stroke.B))
		s.pdf.SetLineWidth(p.width)
		return "D"
	}
	return ""
}

func (s *pdfSurface) path(pts []state.Point, closed bool, p paint) {
	style := s.style(p)
	if len(pts) < 2 || style == "" {
		return
	}
	s.pdf.MoveTo(pts[0].X+s.dx, pts[0].Y+s.dy)
	for _, pt := range pts[1:] {
		s.pdf.LineTo(pt.X+s.dx, pt.Y+s.dy)
	}
	if closed {
		s.pdf.ClosePath()
	}
	s.pdf.DrawPath(style)
}

func (s *pdfSurface) ellipse(r state.Rect, p paint) {
	style := s.style(p)
	if style == "" {
		return
	}
	s.pdf.Ellipse(r.X+r.Width/2+s.dx, r.Y+r.Height/2+s.dy, r.Width/2, r.Height/2, 0, style)
}

func (s *pdfSurface) text(txt string, x, baseline, size float64, c color.NRGBA) {
	s.pdf.SetAlpha(float64(c.A)/0xff, "Normal")
	s.pdf.SetFont("Helvetica", "", size)
	s.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	s.pdf.Text(x+s.dx, baseline+s.dy, s.tr(txt))
}

// PDF writes all content of the frame to a single page sized to fit it.
func PDF(path string, f engine.Frame) error {
	r, err := fit(f)
	if err != nil {
		return err
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: r.Width, Ht: r.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	pdf.AddPage()
	drawFrame(&pdfSurface{
		pdf: pdf,
		dx:  -r.X,
		dy:  -r.Y,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}, f)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
