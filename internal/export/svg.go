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
	"io"
	"os"
	"strings"

	"impactstudio/internal/canvas"
	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
	"impactstudio/internal/vector"
)

// WriteSVG renders d as a standalone SVG document sized to the device frame.
func WriteSVG(w io.Writer, d domain.Design, opt Options) error {
	sc := BuildScene(d, opt)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", sc.Width, sc.Height, sc.Width, sc.Height)
	if sc.Title != "" {
		wf("  <title>%s</title>\n", escText(sc.Title))
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" %s/>\n", sc.Width, sc.Height, svgPaint("fill", sc.Background))

	for _, it := range sc.Items {
		r := it.Rect
		switch it.Type {
		case domain.ElementCircle:
			c := r.Center()
			wf("  <ellipse id=\"%s\" cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\" %s/>\n", escAttr(it.ID), c.X, c.Y, r.W/2, r.H/2, svgPaint("fill", it.Color))
		case domain.ElementText:
			wf("  <g id=\"%s\">\n", escAttr(it.ID))
			lh := it.Metrics.LineHeight()
			x := r.X + canvas.TextPadding
			y := r.Y + canvas.TextPadding + it.Metrics.Ascent
			for i, line := range it.Lines {
				wf("    <text x=\"%g\" y=\"%g\" font-family=\"monospace\" font-size=\"%g\" %s>%s</text>\n", x, y+float64(i)*lh, lh, svgPaint("fill", it.Color), escText(line))
			}
			wf("  </g>\n")
		case domain.ElementImage:
			wf("  <g id=\"%s\">\n", escAttr(it.ID))
			wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" %s %s stroke-width=\"1\"/>\n", r.X, r.Y, r.W, r.H, svgPaint("fill", placeholderFill), svgPaint("stroke", placeholderStroke))
			wf("    <path d=\"M%g %g L%g %g M%g %g L%g %g\" fill=\"none\" %s stroke-width=\"1\"/>\n", r.X, r.Y, r.X+r.W, r.Y+r.H, r.X+r.W, r.Y, r.X, r.Y+r.H, svgPaint("stroke", placeholderStroke))
			wf("  </g>\n")
		default:
			wf("  <rect id=\"%s\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" %s/>\n", escAttr(it.ID), r.X, r.Y, r.W, r.H, svgPaint("fill", it.Color))
		}
		if it.Selected {
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" %s stroke-width=\"2\"/>\n", r.X, r.Y, r.W, r.H, svgPaint("stroke", sc.Selection))
		}
	}
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// ExportDesignSVG writes the design of h to outPath; relative paths land in
// the workspace exports folder. It returns the path written.
func ExportDesignSVG(h *storage.DesignHandle, outPath string, opt Options) (string, error) {
	p, err := resolveOut(h, outPath)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, h.Design, opt); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write svg: %w", err)
	}
	return p, nil
}

// svgPaint renders a fill or stroke attribute with opacity when alpha < 255.
func svgPaint(attr string, c vector.Color) string {
	if c.A == 255 {
		return fmt.Sprintf("%s=\"%s\"", attr, c.Hex())
	}
	return fmt.Sprintf("%s=\"%s\" %s-opacity=\"%g\"", attr, c.Hex(), attr, vector.Round(float64(c.A)/255, 3))
}

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", "\n", " ", "\r", "")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

func escAttr(s string) string { return attrEscaper.Replace(s) }

func escText(s string) string { return textEscaper.Replace(s) }
