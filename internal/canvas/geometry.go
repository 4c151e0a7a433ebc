/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"impactstudio/internal/domain"
	"impactstudio/internal/textlayout"
	"impactstudio/internal/vector"
)

// TextBox lays out the content of a text element inside its padded width.
func TextBox(l *textlayout.Layouter, el domain.Element) textlayout.Box {
	if l == nil {
		l = textlayout.Default
	}
	inner := el.Width.Or(DefaultSize) - 2*TextPadding
	return l.Wrap(el.Content, inner)
}

// Bounds returns the on-canvas rectangle of el. An auto height is measured
// from the wrapped content plus padding.
func Bounds(l *textlayout.Layouter, el domain.Element) vector.Rect {
	w := el.Width.Or(DefaultSize)
	h := el.Height.Value
	if el.Height.Auto {
		h = TextBox(l, el).Height + 2*TextPadding
	}
	return vector.R(el.X, el.Y, w, h)
}

// Shape returns the hit-test shape of el; circles hit inside the inscribed ellipse.
func Shape(l *textlayout.Layouter, el domain.Element) vector.Shape {
	r := Bounds(l, el)
	if el.Type == domain.ElementCircle {
		return vector.EllipseShape{Rect: r}
	}
	return vector.RectShape{Rect: r}
}

// HitTest returns the index of the top-most element at (x, y) or -1.
func (e *Editor) HitTest(x, y float64) int {
	shapes := make([]vector.Shape, len(e.elements))
	for i, el := range e.elements {
		shapes[i] = Shape(e.layout, el)
	}
	return vector.TopMost(shapes, vector.Pt{X: x, Y: y})
}

// ContentBounds is the union of all element bounds; ok is false when empty.
func (e *Editor) ContentBounds() (vector.Rect, bool) {
	shapes := make([]vector.Shape, len(e.elements))
	for i, el := range e.elements {
		shapes[i] = Shape(e.layout, el)
	}
	return vector.BoundsOf(shapes)
}
