/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ElementType is the kind of a placed canvas element.
type ElementType string

const (
	ElementRectangle ElementType = "rectangle"
	ElementCircle    ElementType = "circle"
	ElementText      ElementType = "text"
	ElementImage     ElementType = "image"
)

func (t ElementType) Valid() bool {
	switch t {
	case ElementRectangle, ElementCircle, ElementText, ElementImage:
		return true
	}
	return false
}

// Dimension is a numeric size or the symbolic "auto" (text height).
// JSON form is a number or the string "auto".
type Dimension struct {
	Value float64
	Auto  bool
}

// Px returns a fixed dimension.
func Px(v float64) Dimension { return Dimension{Value: v} }

// AutoSize is the symbolic "auto" dimension.
var AutoSize = Dimension{Auto: true}

// Or returns the numeric value, or fallback when the dimension is auto.
func (d Dimension) Or(fallback float64) float64 {
	if d.Auto {
		return fallback
	}
	return d.Value
}

func (d Dimension) String() string {
	if d.Auto {
		return "auto"
	}
	return strconv.FormatFloat(d.Value, 'f', -1, 64)
}

// ParseDimension accepts "auto" or a decimal number. It does not range-check.
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "auto") {
		return AutoSize, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("parse dimension %q: %w", s, err)
	}
	return Px(v), nil
}

func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Auto {
		return []byte(`"auto"`), nil
	}
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
		return nil, fmt.Errorf("dimension %v is not finite", d.Value)
	}
	return json.Marshal(d.Value)
}

func (d *Dimension) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "auto" {
			return fmt.Errorf("dimension: unexpected string %q", s)
		}
		*d = AutoSize
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("dimension: %w", err)
	}
	*d = Px(v)
	return nil
}

// Element is one placed visual object on the design canvas.
// Content is only meaningful for text elements.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    Dimension   `json:"width"`
	Height   Dimension   `json:"height"`
	Color    string      `json:"color"`
	Content  string      `json:"content,omitempty"`
	Selected bool        `json:"selected"`
}

// Tool is the active creation mode of the canvas.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolText      Tool = "text"
	ToolImage     Tool = "image"
)

// ElementType reports which element a canvas click creates with this tool.
// The select tool creates nothing.
func (t Tool) ElementType() (ElementType, bool) {
	switch t {
	case ToolRectangle:
		return ElementRectangle, true
	case ToolCircle:
		return ElementCircle, true
	case ToolText:
		return ElementText, true
	case ToolImage:
		return ElementImage, true
	}
	return "", false
}

func (t Tool) Valid() bool {
	if t == ToolSelect {
		return true
	}
	_, ok := t.ElementType()
	return ok
}

// IconKind discriminates the Icon variant.
type IconKind int

const (
	IconSymbol IconKind = iota
	IconComponent
)

// Icon is either a literal symbol or a reference to a named icon component
// that the renderer knows how to draw.
type Icon struct {
	Kind      IconKind
	Symbol    string
	Component string
}

func SymbolIcon(s string) Icon       { return Icon{Kind: IconSymbol, Symbol: s} }
func ComponentIcon(name string) Icon { return Icon{Kind: IconComponent, Component: name} }
func (i Icon) IsComponent() bool     { return i.Kind == IconComponent }

// IconRenderer resolves icons for a concrete output (terminal, SVG, ...).
type IconRenderer interface {
	RenderSymbol(symbol string) string
	RenderComponent(name string) string
}

// Render resolves the icon with r.
func (i Icon) Render(r IconRenderer) string {
	if i.Kind == IconComponent {
		return r.RenderComponent(i.Component)
	}
	return r.RenderSymbol(i.Symbol)
}

// ToolInfo describes a toolbar entry.
type ToolInfo struct {
	Tool  Tool
	Label string
	Icon  Icon
}

// Tools returns the toolbar in display order.
func Tools() []ToolInfo {
	return []ToolInfo{
		{Tool: ToolSelect, Label: "Select", Icon: ComponentIcon("MousePointer")},
		{Tool: ToolRectangle, Label: "Rectangle", Icon: SymbolIcon("□")},
		{Tool: ToolCircle, Label: "Circle", Icon: SymbolIcon("○")},
		{Tool: ToolText, Label: "Text", Icon: SymbolIcon("T")},
		{Tool: ToolImage, Label: "Image", Icon: ComponentIcon("Image")},
	}
}

// DeviceView selects the preview frame. It never changes element coordinates.
type DeviceView string

const (
	DeviceMobile  DeviceView = "mobile"
	DeviceTablet  DeviceView = "tablet"
	DeviceDesktop DeviceView = "desktop"
)

// FrameHeight is the fixed preview/export frame height in pixels.
const FrameHeight = 800

// FrameWidth returns the frame width in pixels; unknown views fall back to desktop.
func (d DeviceView) FrameWidth() int {
	switch d {
	case DeviceMobile:
		return 375
	case DeviceTablet:
		return 768
	default:
		return 1280
	}
}

func (d DeviceView) Valid() bool {
	return d == DeviceMobile || d == DeviceTablet || d == DeviceDesktop
}

// ParseDevice parses a device view name case-insensitively.
func ParseDevice(s string) (DeviceView, error) {
	d := DeviceView(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown device view %q", s)
	}
	return d, nil
}

// Design is the persisted state of one canvas session.
type Design struct {
	Name        string     `json:"name"`
	Device      DeviceView `json:"device"`
	ActiveColor string     `json:"activeColor"`
	Elements    []Element  `json:"elements"`
	SelectedID  string     `json:"selectedId,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
