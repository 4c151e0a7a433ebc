/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a design inside its device frame as SVG, PNG or PDF.
// All three backends draw the same Scene, so they agree on geometry, colours
// and text wrapping.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"impactstudio/internal/canvas"
	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
	"impactstudio/internal/textlayout"
	"impactstudio/internal/vector"
)

// Options shared by all exporters. Zero values pick sensible defaults.
type Options struct {
	// Device overrides the design's own device view.
	Device domain.DeviceView
	// Background fills the frame; zero means white.
	Background vector.Color
	// ShowSelection outlines the selected element.
	ShowSelection bool
	// Scale multiplies the raster size of PNG output; <= 0 means 1.
	Scale float64
	// Layouter measures text; nil means textlayout.Default.
	Layouter *textlayout.Layouter
}

var (
	placeholderFill   = vector.Color{R: 229, G: 231, B: 235, A: 255}
	placeholderStroke = vector.Color{R: 156, G: 163, B: 175, A: 255}
	selectionStroke   = vector.Color{R: 37, G: 99, B: 235, A: 255}
)

// Item is one element resolved to drawable geometry.
type Item struct {
	ID       string
	Type     domain.ElementType
	Rect     vector.Rect
	Color    vector.Color
	Lines    []string // text elements only
	Metrics  textlayout.Metrics
	Selected bool
}

// Scene is a design resolved for drawing, in frame pixels.
type Scene struct {
	Title      string
	Width      float64
	Height     float64
	Background vector.Color
	Items      []Item
	// Selection outline colour; transparent when selections are hidden.
	Selection vector.Color
}

// BuildScene resolves d for drawing. Unknown colours fall back to black.
func BuildScene(d domain.Design, opt Options) Scene {
	dev := d.Device
	if opt.Device != "" {
		dev = opt.Device
	}
	l := opt.Layouter
	if l == nil {
		l = textlayout.Default
	}
	bg := opt.Background
	if bg == (vector.Color{}) {
		bg = vector.White
	}
	sc := Scene{
		Title:      d.Name,
		Width:      float64(dev.FrameWidth()),
		Height:     domain.FrameHeight,
		Background: bg,
		Items:      make([]Item, 0, len(d.Elements)),
	}
	if opt.ShowSelection {
		sc.Selection = selectionStroke
	}
	for _, el := range d.Elements {
		it := Item{
			ID:       el.ID,
			Type:     el.Type,
			Rect:     canvas.Bounds(l, el),
			Color:    vector.ColorOr(el.Color, vector.Black),
			Selected: opt.ShowSelection && (el.Selected || (d.SelectedID != "" && el.ID == d.SelectedID)),
		}
		if el.Type == domain.ElementText {
			box := canvas.TextBox(l, el)
			it.Lines = box.Lines
			it.Metrics = box.Metrics
		}
		sc.Items = append(sc.Items, it)
	}
	return sc
}

// resolveOut places relative output paths under <design dir>/exports.
func resolveOut(h *storage.DesignHandle, outPath string) (string, error) {
	if h == nil {
		return "", fmt.Errorf("design handle is nil")
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(h.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	return outPath, nil
}
