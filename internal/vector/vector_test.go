/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	if r.Contains(Pt{9.5, 20}) {
		t.Fatalf("point left of rect should not be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestUnionAndIntersects(t *testing.T) {
	a, b := R(0, 0, 10, 10), R(20, 5, 10, 10)
	u := a.Union(b)
	if u != R(0, 0, 30, 15) {
		t.Fatalf("union %+v", u)
	}
	if a.Intersects(b) || !a.Intersects(R(5, 5, 10, 10)) {
		t.Fatalf("intersects wrong")
	}
}

func TestEllipseHit(t *testing.T) {
	e := EllipseShape{R(0, 0, 100, 100)}
	if !e.Hit(Pt{50, 50}) {
		t.Fatalf("center should hit")
	}
	if e.Hit(Pt{2, 2}) {
		t.Fatalf("bounding box corner is outside the ellipse")
	}
	if (EllipseShape{R(0, 0, 0, 10)}).Hit(Pt{0, 5}) {
		t.Fatalf("degenerate ellipse should not hit")
	}
}

func TestTopMostPrefersLaterShapes(t *testing.T) {
	shapes := []Shape{RectShape{R(0, 0, 100, 100)}, EllipseShape{R(50, 50, 100, 100)}}
	if i := TopMost(shapes, Pt{100, 100}); i != 1 {
		t.Fatalf("want 1, got %d", i)
	}
	if i := TopMost(shapes, Pt{10, 10}); i != 0 {
		t.Fatalf("want 0, got %d", i)
	}
	if i := TopMost(shapes, Pt{500, 500}); i != -1 {
		t.Fatalf("want -1, got %d", i)
	}
	b, ok := BoundsOf(shapes)
	if !ok || b != R(0, 0, 150, 150) {
		t.Fatalf("bounds %+v ok=%v", b, ok)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#3b82f6":   {0x3b, 0x82, 0xf6, 255},
		"#FFF":      White,
		"#00000080": {0, 0, 0, 0x80},
		" Red ":     {255, 0, 0, 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %+v err=%v", in, got, err)
		}
	}
	for _, bad := range []string{"", "#12", "rgb(1,2,3)", "#zzzzzz"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
	if ColorOr("nope", Black) != Black {
		t.Fatalf("fallback not used")
	}
	if (Color{0x3b, 0x82, 0xf6, 255}).Hex() != "#3b82f6" {
		t.Fatalf("hex")
	}
}
