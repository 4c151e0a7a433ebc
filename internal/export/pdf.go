/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"impactstudio/internal/canvas"
	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
	"impactstudio/internal/vector"
)

// Courier at this size advances 7pt per glyph, the same as the 7x13 face
// used for wrapping, so lines measured on the canvas fit in the PDF.
const pdfFontSize = 7 / 0.6

// newPDF draws the scene of d on a single page sized to the device frame.
// One frame pixel maps to one point.
func newPDF(d domain.Design, opt Options) *gofpdf.Fpdf {
	sc := BuildScene(d, opt)
	size := gofpdf.SizeType{Wd: sc.Width, Ht: sc.Height}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if sc.Title != "" {
		pdf.SetTitle(sc.Title, true)
	}
	pdf.SetAuthor("Impact Studio", false)
	if !d.UpdatedAt.IsZero() {
		pdf.SetCreationDate(d.UpdatedAt)
	}
	pdf.AddPageFormat("P", size)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	setFill(pdf, sc.Background)
	pdf.Rect(0, 0, sc.Width, sc.Height, "F")

	for _, it := range sc.Items {
		r := it.Rect
		switch it.Type {
		case domain.ElementCircle:
			setFill(pdf, it.Color)
			c := r.Center()
			pdf.Ellipse(c.X, c.Y, r.W/2, r.H/2, 0, "F")
		case domain.ElementText:
			pdf.SetFont("Courier", "", pdfFontSize)
			pdf.SetTextColor(int(it.Color.R), int(it.Color.G), int(it.Color.B))
			pdf.SetAlpha(float64(it.Color.A)/255, "Normal")
			x := r.X + canvas.TextPadding
			y := r.Y + canvas.TextPadding + it.Metrics.Ascent
			for i, line := range it.Lines {
				pdf.Text(x, y+float64(i)*it.Metrics.LineHeight(), tr(line))
			}
		case domain.ElementImage:
			setFill(pdf, placeholderFill)
			setDraw(pdf, placeholderStroke)
			pdf.SetLineWidth(1)
			pdf.Rect(r.X, r.Y, r.W, r.H, "FD")
			pdf.Line(r.X, r.Y, r.X+r.W, r.Y+r.H)
			pdf.Line(r.X+r.W, r.Y, r.X, r.Y+r.H)
		default:
			setFill(pdf, it.Color)
			pdf.Rect(r.X, r.Y, r.W, r.H, "F")
		}
		if it.Selected {
			setDraw(pdf, sc.Selection)
			pdf.SetLineWidth(2)
			pdf.Rect(r.X, r.Y, r.W, r.H, "D")
		}
	}
	pdf.SetAlpha(1, "Normal")
	return pdf
}

// WritePDF renders d as a one-page PDF to w.
func WritePDF(w io.Writer, d domain.Design, opt Options) error {
	pdf := newPDF(d, opt)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportDesignPDF writes the design of h to outPath and returns the path written.
func ExportDesignPDF(h *storage.DesignHandle, outPath string, opt Options) (string, error) {
	p, err := resolveOut(h, outPath)
	if err != nil {
		return "", err
	}
	if err := newPDF(h.Design, opt).OutputFileAndClose(p); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return p, nil
}

func setFill(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	pdf.SetAlpha(float64(c.A)/255, "Normal")
}

func setDraw(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	pdf.SetAlpha(float64(c.A)/255, "Normal")
}
