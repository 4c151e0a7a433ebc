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
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"impactstudio/internal/domain"
)

// Property edits apply to the selected element only. Without a selection
// they return nil and change nothing.

func (e *Editor) SetWidth(w float64) error {
	return e.setSize("width", domain.Px(w), false)
}

// SetHeight accepts domain.AutoSize for text elements.
func (e *Editor) SetHeight(h domain.Dimension) error {
	return e.setSize("height", h, true)
}

func (e *Editor) setSize(prop string, d domain.Dimension, isHeight bool) error {
	i := e.indexOf(e.selectedID)
	if i < 0 {
		return nil
	}
	if err := validateSize(e.elements[i].Type, d, isHeight); err != nil {
		return fmt.Errorf("set %s: %w", prop, err)
	}
	if isHeight {
		e.elements[i].Height = d
	} else {
		e.elements[i].Width = d
	}
	e.edited(i, prop, d.String())
	return nil
}

// validateSize rejects negative and non-finite sizes; auto is only valid for
// the height of a text element.
func validateSize(t domain.ElementType, d domain.Dimension, isHeight bool) error {
	if d.Auto {
		if isHeight && t == domain.ElementText {
			return nil
		}
		return fmt.Errorf("%w: auto is only allowed for text height", ErrInvalidSize)
	}
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) || d.Value < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSize, d.Value)
	}
	return nil
}

func (e *Editor) SetColor(c string) error {
	i := e.indexOf(e.selectedID)
	if i < 0 {
		return nil
	}
	if c == "" {
		return fmt.Errorf("set color: %w: empty colour", ErrInvalidValue)
	}
	e.elements[i].Color = c
	e.edited(i, "color", c)
	return nil
}

// SetContent edits the text of the selected text element.
func (e *Editor) SetContent(s string) error {
	i := e.indexOf(e.selectedID)
	if i < 0 {
		return nil
	}
	if e.elements[i].Type != domain.ElementText {
		return fmt.Errorf("set content: %w", ErrNotText)
	}
	e.elements[i].Content = s
	e.edited(i, "content", s)
	return nil
}

// Move repositions the selected element.
func (e *Editor) Move(x, y float64) error {
	i := e.indexOf(e.selectedID)
	if i < 0 {
		return nil
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return fmt.Errorf("move: %w: non-finite position", ErrInvalidValue)
	}
	e.elements[i].X, e.elements[i].Y = x, y
	e.edited(i, "position", fmt.Sprintf("%v,%v", x, y))
	return nil
}

// Properties lists the names SetProperty understands.
func Properties() []string { return []string{"width", "height", "color", "content", "x", "y"} }

// SetProperty applies raw text input from a property panel. Numeric input must
// parse as a decimal number; "auto" is accepted for text height.
func (e *Editor) SetProperty(name, raw string) error {
	if e.indexOf(e.selectedID) < 0 {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "width":
		v, err := parseNumber(raw)
		if err != nil {
			return fmt.Errorf("set width: %w", err)
		}
		return e.SetWidth(v)
	case "height":
		if strings.EqualFold(strings.TrimSpace(raw), "auto") {
			return e.SetHeight(domain.AutoSize)
		}
		v, err := parseNumber(raw)
		if err != nil {
			return fmt.Errorf("set height: %w", err)
		}
		return e.SetHeight(domain.Px(v))
	case "color", "colour":
		return e.SetColor(strings.TrimSpace(raw))
	case "content", "text":
		return e.SetContent(raw)
	case "x", "y":
		v, err := parseNumber(raw)
		if err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		el, _ := e.Selected()
		if strings.EqualFold(strings.TrimSpace(name), "x") {
			return e.Move(v, el.Y)
		}
		return e.Move(el.X, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, raw)
	}
	return v, nil
}

func (e *Editor) edited(i int, prop, value string) {
	e.log.Debug("element edited", slog.String("id", e.elements[i].ID), slog.String("prop", prop), slog.String("value", value))
	e.commit("edit:" + e.elements[i].ID + ":" + prop)
}
