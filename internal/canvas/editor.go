/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package canvas is the design canvas state machine: an active tool, a list of
// placed elements and a selection stored as an element ID. Every change of the
// element list (including selection) is pushed to an optional observer.
//
// An Editor is owned by a single session and is not safe for concurrent use.
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"impactstudio/internal/domain"
	applog "impactstudio/internal/log"
	"impactstudio/internal/textlayout"
	"impactstudio/internal/undo"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrUnknownDevice   = errors.New("unknown device view")
	ErrUnknownElement  = errors.New("unknown element")
	ErrUnknownProperty = errors.New("unknown property")
	ErrInvalidSize     = errors.New("invalid size")
	ErrInvalidValue    = errors.New("invalid value")
	ErrNotText         = errors.New("element is not text")
)

const (
	DefaultSize  = 100.0
	DefaultColor = "#3b82f6"
	DefaultText  = "Double click to edit"
	// TextPadding is the inner padding of a text box on each side.
	TextPadding = 8.0
)

// Observer receives the full element list after every change.
type Observer func([]domain.Element)

type Option func(*Editor)

// WithObserver registers the change observer.
func WithObserver(fn Observer) Option { return func(e *Editor) { e.observer = fn } }

// WithIDGenerator replaces the UUIDv7 element ID source.
func WithIDGenerator(fn func() string) Option { return func(e *Editor) { e.newID = fn } }

// WithClock replaces time.Now for history and UpdatedAt stamps.
func WithClock(fn func() time.Time) Option { return func(e *Editor) { e.now = fn } }

// WithHistory configures the undo history caps.
func WithHistory(cfg undo.Config) Option { return func(e *Editor) { e.historyCfg = cfg } }

// WithLayouter sets the text measurer used for auto heights.
func WithLayouter(l *textlayout.Layouter) Option { return func(e *Editor) { e.layout = l } }

type Editor struct {
	name        string
	tool        domain.Tool
	device      domain.DeviceView
	activeColor string
	// elements never carry Selected=true; the flag is derived from selectedID.
	elements   []domain.Element
	selectedID string
	updatedAt  time.Time

	observer   Observer
	newID      func() string
	now        func() time.Time
	history    *undo.History
	historyCfg undo.Config
	layout     *textlayout.Layouter
	log        *slog.Logger
}

// New returns an empty editor: tool select, desktop view, default colour.
func New(opts ...Option) *Editor {
	e := &Editor{
		tool:        domain.ToolSelect,
		device:      domain.DeviceDesktop,
		activeColor: DefaultColor,
		newID:       newElementID,
		now:         time.Now,
		historyCfg:  undo.Config{MaxDepth: 200},
		layout:      textlayout.Default,
	}
	for _, o := range opts {
		o(e)
	}
	e.log = applog.WithComponent("canvas")
	e.history = undo.NewHistory(e.historyCfg)
	e.history.Reset(e.snapshot("init"))
	return e
}

func newElementID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e *Editor) Name() string              { return e.name }
func (e *Editor) SetName(name string)       { e.name = name }
func (e *Editor) Tool() domain.Tool         { return e.tool }
func (e *Editor) ActiveColor() string       { return e.activeColor }
func (e *Editor) Device() domain.DeviceView { return e.device }

// FrameWidth is the preview frame width of the current device view.
func (e *Editor) FrameWidth() int { return e.device.FrameWidth() }

// SelectTool changes the creation mode. The selection is kept.
func (e *Editor) SelectTool(t domain.Tool) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTool, t)
	}
	e.tool = t
	return nil
}

// SetDevice switches the preview frame. Element coordinates are not touched.
func (e *Editor) SetDevice(d domain.DeviceView) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, d)
	}
	e.device = d
	return nil
}

// SetActiveColor sets the colour given to subsequently created elements.
func (e *Editor) SetActiveColor(c string) error {
	if c == "" {
		return fmt.Errorf("%w: empty colour", ErrInvalidValue)
	}
	e.activeColor = c
	return nil
}

// ClickCanvas handles a click on empty canvas. With the select tool it does
// nothing; otherwise it creates an element of the tool's type at (x, y),
// selects it and returns it.
func (e *Editor) ClickCanvas(x, y float64) (domain.Element, bool) {
	typ, ok := e.tool.ElementType()
	if !ok {
		return domain.Element{}, false
	}
	el := domain.Element{
		ID:     e.newID(),
		Type:   typ,
		X:      x,
		Y:      y,
		Width:  domain.Px(DefaultSize),
		Height: domain.Px(DefaultSize),
		Color:  e.activeColor,
	}
	if typ == domain.ElementText {
		el.Height = domain.AutoSize
		el.Content = DefaultText
	}
	e.elements = append(e.elements, el)
	e.selectedID = el.ID
	e.log.Debug("element created", slog.String("id", el.ID), slog.String("type", string(typ)),
		slog.Float64("x", x), slog.Float64("y", y))
	e.commit("create")
	el.Selected = true
	return el, true
}

// ClickElement selects exactly the element with id, whatever the tool. It
// never creates anything.
func (e *Editor) ClickElement(id string) error {
	if e.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}
	if e.selectedID == id {
		return nil
	}
	e.selectedID = id
	e.selectionChanged()
	return nil
}

// Click routes a click at (x, y) the way a host without per-element event
// handlers needs it: a hit on an element selects the top-most one and the
// click stops there; otherwise it reaches the canvas. It returns the affected
// element and whether it was created.
func (e *Editor) Click(x, y float64) (el domain.Element, created bool, ok bool) {
	if i := e.HitTest(x, y); i >= 0 {
		id := e.elements[i].ID
		_ = e.ClickElement(id)
		el, _ = e.Selected()
		return el, false, true
	}
	el, ok = e.ClickCanvas(x, y)
	return el, ok, ok
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	if e.selectedID == "" {
		return
	}
	e.selectedID = ""
	e.selectionChanged()
}

// Selected returns the selected element.
func (e *Editor) Selected() (domain.Element, bool) {
	i := e.indexOf(e.selectedID)
	if i < 0 {
		return domain.Element{}, false
	}
	el := e.elements[i]
	el.Selected = true
	return el, true
}

// Elements returns a copy of the element list in paint order with the
// Selected flag derived from the current selection.
func (e *Editor) Elements() []domain.Element {
	out := make([]domain.Element, len(e.elements))
	copy(out, e.elements)
	for i := range out {
		out[i].Selected = out[i].ID == e.selectedID
	}
	return out
}

// Delete removes the selected element and clears the selection.
func (e *Editor) Delete() bool {
	i := e.indexOf(e.selectedID)
	if i < 0 {
		return false
	}
	id := e.selectedID
	e.elements = append(e.elements[:i:i], e.elements[i+1:]...)
	e.selectedID = ""
	e.log.Debug("element deleted", slog.String("id", id))
	e.commit("delete")
	return true
}

func (e *Editor) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range e.elements {
		if e.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Design returns the persistable state of the session.
func (e *Editor) Design() domain.Design {
	return domain.Design{
		Name:        e.name,
		Device:      e.device,
		ActiveColor: e.activeColor,
		Elements:    e.Elements(),
		SelectedID:  e.selectedID,
		UpdatedAt:   e.updatedAt,
	}
}

// Load replaces the session with d and resets the undo history. When
// d.SelectedID is empty the first element flagged Selected is used.
func (e *Editor) Load(d domain.Design) error {
	device := d.Device
	if device == "" {
		device = domain.DeviceDesktop
	}
	if !device.Valid() {
		return fmt.Errorf("load design: %w: %q", ErrUnknownDevice, d.Device)
	}
	seen := make(map[string]bool, len(d.Elements))
	elements := make([]domain.Element, 0, len(d.Elements))
	selected := d.SelectedID
	for _, el := range d.Elements {
		if el.ID == "" || seen[el.ID] {
			return fmt.Errorf("load design: %w: missing or duplicate id %q", ErrInvalidValue, el.ID)
		}
		if !el.Type.Valid() {
			return fmt.Errorf("load design: %w: element %s has type %q", ErrInvalidValue, el.ID, el.Type)
		}
		if err := validateSize(el.Type, el.Width, false); err != nil {
			return fmt.Errorf("load design: element %s width: %w", el.ID, err)
		}
		if err := validateSize(el.Type, el.Height, true); err != nil {
			return fmt.Errorf("load design: element %s height: %w", el.ID, err)
		}
		seen[el.ID] = true
		if selected == "" && el.Selected {
			selected = el.ID
		}
		el.Selected = false
		elements = append(elements, el)
	}
	if selected != "" && !seen[selected] {
		selected = ""
	}
	e.name = d.Name
	e.device = device
	e.activeColor = d.ActiveColor
	if e.activeColor == "" {
		e.activeColor = DefaultColor
	}
	e.elements = elements
	e.selectedID = selected
	e.updatedAt = d.UpdatedAt
	e.history.Reset(e.snapshot("load"))
	e.notify()
	return nil
}

type state struct {
	Elements   []domain.Element `json:"elements"`
	SelectedID string           `json:"selectedId,omitempty"`
}

func (e *Editor) snapshot(label string) undo.Snapshot {
	b, err := json.Marshal(state{Elements: e.elements, SelectedID: e.selectedID})
	if err != nil {
		// sizes are validated before they reach the list, so this is a bug
		e.log.Error("snapshot failed", slog.Any("err", err))
	}
	return undo.Snapshot{Label: label, Blob: b, TS: e.now()}
}

func (e *Editor) restore(s undo.Snapshot) error {
	var st state
	if err := json.Unmarshal(s.Blob, &st); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	e.elements = st.Elements
	e.selectedID = st.SelectedID
	if e.indexOf(e.selectedID) < 0 {
		e.selectedID = ""
	}
	e.updatedAt = e.now()
	e.notify()
	return nil
}

// Undo reverts the last element change. Selection-only changes are not undo
// steps of their own; the state Undo returns to carries the selection that
// was active right before the undone change.
func (e *Editor) Undo() bool {
	s, ok := e.history.Undo()
	if !ok {
		return false
	}
	if err := e.restore(s); err != nil {
		e.log.Error("undo failed", slog.Any("err", err))
		return false
	}
	return true
}

func (e *Editor) Redo() bool {
	s, ok := e.history.Redo()
	if !ok {
		return false
	}
	if err := e.restore(s); err != nil {
		e.log.Error("redo failed", slog.Any("err", err))
		return false
	}
	return true
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// commit records the new state in history and notifies the observer.
func (e *Editor) commit(label string) {
	e.updatedAt = e.now()
	e.history.Push(e.snapshot(label))
	e.notify()
}

// selectionChanged folds the new selection into the current history entry.
func (e *Editor) selectionChanged() {
	e.history.Amend(e.snapshot("select"))
	e.notify()
}

func (e *Editor) notify() {
	if e.observer != nil {
		e.observer(e.Elements())
	}
}
