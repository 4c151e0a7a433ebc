/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and word-wraps text for canvas text elements.
// It is deterministic: the default face is x/image basicfont 7x13, which the
// PNG exporter also draws with, so measured and rendered sizes agree.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Metrics are font metrics in pixels.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// LineHeight is the distance between two baselines.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Provider supplies the face used for measuring.
type Provider interface {
	Face() (font.Face, Metrics)
}

// BasicProvider uses basicfont.Face7x13.
type BasicProvider struct{}

func (BasicProvider) Face() (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Box is laid out text.
type Box struct {
	Lines   []string
	Width   float64 // widest line
	Height  float64 // len(Lines) * line height
	Metrics Metrics
}

// Layouter breaks text into lines no wider than maxWidth where possible.
// A single word wider than maxWidth stays on its own line.
type Layouter struct{ Provider Provider }

func New(p Provider) *Layouter {
	if p == nil {
		p = BasicProvider{}
	}
	return &Layouter{Provider: p}
}

// Default is the layouter shared by the canvas and the exporters.
var Default = New(BasicProvider{})

// Wrap lays out text; explicit newlines always break. maxWidth <= 0 disables wrapping.
func (l *Layouter) Wrap(text string, maxWidth float64) Box {
	face, met := l.Provider.Face()
	d := &font.Drawer{Face: face}
	box := Box{Metrics: met}
	for _, para := range strings.Split(text, "\n") {
		cur, curW := "", 0.0
		for _, word := range strings.Fields(para) {
			cand := word
			if cur != "" {
				cand = cur + " " + word
			}
			w := advance(d, cand)
			if cur != "" && maxWidth > 0 && w > maxWidth {
				box.add(cur, curW)
				cur, curW = word, advance(d, word)
				continue
			}
			cur, curW = cand, w
		}
		box.add(cur, curW)
	}
	box.Height = float64(len(box.Lines)) * met.LineHeight()
	return box
}

func (b *Box) add(line string, w float64) {
	b.Lines = append(b.Lines, line)
	if w > b.Width {
		b.Width = w
	}
}

// Measure returns the single-line width and line height of s.
func (l *Layouter) Measure(s string) (w, h float64) {
	face, met := l.Provider.Face()
	return advance(&font.Drawer{Face: face}, s), met.LineHeight()
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s).Round())
}
