/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Shape is something placed on the canvas that can be hit-tested.
type Shape interface {
	Bounds() Rect
	Hit(p Pt) bool
}

// RectShape hits anywhere inside its rectangle, edges included.
type RectShape struct{ Rect Rect }

func (s RectShape) Bounds() Rect  { return s.Rect }
func (s RectShape) Hit(p Pt) bool { return s.Rect.Contains(p) }

// EllipseShape is the ellipse inscribed in Rect.
type EllipseShape struct{ Rect Rect }

func (s EllipseShape) Bounds() Rect { return s.Rect }

func (s EllipseShape) Hit(p Pt) bool {
	rx := s.Rect.W / 2
	ry := s.Rect.H / 2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := s.Rect.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// TopMost returns the index of the last shape hit by p (later shapes paint on
// top), or -1 when nothing is hit.
func TopMost(shapes []Shape, p Pt) int {
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i] != nil && shapes[i].Hit(p) {
			return i
		}
	}
	return -1
}

// BoundsOf returns the union of all shape bounds; ok is false for no shapes.
func BoundsOf(shapes []Shape) (b Rect, ok bool) {
	for _, s := range shapes {
		if s == nil {
			continue
		}
		if !ok {
			b, ok = s.Bounds(), true
			continue
		}
		b = b.Union(s.Bounds())
	}
	return b, ok
}
