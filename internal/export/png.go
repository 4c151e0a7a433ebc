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
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"impactstudio/internal/canvas"
	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
	"impactstudio/internal/textlayout"
	"impactstudio/internal/vector"
)

// RenderPNG rasterizes d. Geometry is multiplied by opt.Scale; glyphs keep
// their bitmap size.
func RenderPNG(d domain.Design, opt Options) *image.RGBA {
	sc := BuildScene(d, opt)
	s := opt.Scale
	if s <= 0 {
		s = 1
	}
	l := opt.Layouter
	if l == nil {
		l = textlayout.Default
	}
	face, _ := l.Provider.Face()

	px := func(v float64) int { return int(math.Round(v * s)) }
	img := image.NewRGBA(image.Rect(0, 0, px(sc.Width), px(sc.Height)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: sc.Background.NRGBA()}, image.Point{}, draw.Src)

	for _, it := range sc.Items {
		r := image.Rect(px(it.Rect.X), px(it.Rect.Y), px(it.Rect.X+it.Rect.W), px(it.Rect.Y+it.Rect.H))
		src := &image.Uniform{C: it.Color.NRGBA()}
		switch it.Type {
		case domain.ElementCircle:
			draw.DrawMask(img, r, src, image.Point{}, &ellipseMask{r: r}, r.Min, draw.Over)
		case domain.ElementText:
			dr := &font.Drawer{Dst: img, Src: src, Face: face}
			x := it.Rect.X + canvas.TextPadding
			y := it.Rect.Y + canvas.TextPadding + it.Metrics.Ascent
			for i, line := range it.Lines {
				dr.Dot = fixed.P(px(x), px(y+float64(i)*it.Metrics.LineHeight()))
				dr.DrawString(line)
			}
		case domain.ElementImage:
			draw.Draw(img, r, &image.Uniform{C: placeholderFill.NRGBA()}, image.Point{}, draw.Over)
			pc := placeholderStroke.NRGBA()
			strokeRect(img, r, pc)
			line(img, r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1, pc)
			line(img, r.Max.X-1, r.Min.Y, r.Min.X, r.Max.Y-1, pc)
		default:
			draw.Draw(img, r, src, image.Point{}, draw.Over)
		}
		if it.Selected {
			strokeRect(img, r.Inset(-1), sc.Selection.NRGBA())
		}
	}
	return img
}

// WritePNG encodes the rendered design to w.
func WritePNG(w io.Writer, d domain.Design, opt Options) error {
	if err := png.Encode(w, RenderPNG(d, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// EncodePNG returns the PNG bytes of d; used for cached previews.
func EncodePNG(d domain.Design, opt Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, d, opt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportDesignPNG writes the design of h to outPath and returns the path written.
func ExportDesignPNG(h *storage.DesignHandle, outPath string, opt Options) (string, error) {
	p, err := resolveOut(h, outPath)
	if err != nil {
		return "", err
	}
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, h.Design, opt); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close png: %w", err)
	}
	return p, nil
}

// ellipseMask is opaque inside the ellipse inscribed in r.
type ellipseMask struct{ r image.Rectangle }

func (m *ellipseMask) ColorModel() color.Model { return color.AlphaModel }
func (m *ellipseMask) Bounds() image.Rectangle { return m.r }

func (m *ellipseMask) At(x, y int) color.Color {
	e := vector.EllipseShape{Rect: vector.R(float64(m.r.Min.X), float64(m.r.Min.Y), float64(m.r.Dx()), float64(m.r.Dy()))}
	if e.Hit(vector.Pt{X: float64(x) + 0.5, Y: float64(y) + 0.5}) {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// strokeRect draws a 1px border on the inside edge of r.
func strokeRect(img *image.RGBA, r image.Rectangle, col color.NRGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, col)
		img.Set(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, col)
		img.Set(r.Max.X-1, y, col)
	}
}

// line steps along the longer axis between two inclusive endpoints.
func line(img *image.RGBA, x0, y0, x1, y1 int, col color.NRGBA) {
	dx, dy := x1-x0, y1-y0
	n := max(abs(dx), abs(dy))
	if n == 0 {
		img.Set(x0, y0, col)
		return
	}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		img.Set(x0+int(math.Round(t*float64(dx))), y0+int(math.Round(t*float64(dy))), col)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
