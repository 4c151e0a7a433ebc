/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func snap(label, blob string, ts time.Time) Snapshot {
	return Snapshot{Label: label, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoBasic(t *testing.T) {
	h := NewHistory(Config{})
	t0 := time.Now()
	h.Reset(snap("base", "a", t0))
	h.Push(snap("edit", "b", t0.Add(time.Millisecond)))
	h.Push(snap("edit", "c", t0.Add(2*time.Millisecond)))
	s, ok := h.Undo()
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, s.Blob)
	}
	s, ok = h.Undo()
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("undo expected 'a', got ok=%v blob=%q", ok, s.Blob)
	}
	if _, ok := h.Undo(); ok {
		t.Fatalf("base state must not be undone")
	}
	s, ok = h.Redo()
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo expected 'b', got ok=%v blob=%q", ok, s.Blob)
	}
	if !h.CanRedo() || !h.CanUndo() {
		t.Fatalf("expected both undo and redo to be available")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory(Config{})
	t0 := time.Now()
	h.Reset(snap("base", "a", t0))
	h.Push(snap("edit", "b", t0))
	h.Undo()
	h.Push(snap("edit", "c", t0))
	if h.CanRedo() {
		t.Fatalf("redo should be cleared by a new change")
	}
}

func TestCoalesceSameLabel(t *testing.T) {
	h := NewHistory(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	h.Reset(snap("base", "0", t0))
	h.Push(snap("color", "1", t0))
	h.Push(snap("color", "2", t0.Add(10*time.Millisecond)))
	h.Push(snap("width", "3", t0.Add(20*time.Millisecond)))
	if _, depth, _ := h.Stats(); depth != 3 {
		t.Fatalf("expected base + coalesced color + width, got depth %d", depth)
	}
	s, _ := h.Undo()
	if string(s.Blob) != "2" {
		t.Fatalf("expected coalesced snapshot '2', got %q", s.Blob)
	}
}

func TestCapsKeepCurrentState(t *testing.T) {
	h := NewHistory(Config{MaxBytes: 12, MaxDepth: 3})
	t0 := time.Now()
	h.Reset(snap("base", "xxxxx", t0))
	for i := 0; i < 10; i++ {
		h.Push(snap("edit", "xxxxx", t0.Add(time.Duration(i)*time.Millisecond)))
	}
	tb, depth, _ := h.Stats()
	if depth > 2 || depth < 1 || tb > 12 {
		t.Fatalf("caps not enforced: bytes=%d depth=%d", tb, depth)
	}
	h2 := NewHistory(Config{MaxBytes: 1})
	h2.Reset(snap("base", "too big", t0))
	if _, depth, _ := h2.Stats(); depth != 1 {
		t.Fatalf("current state must survive the byte cap")
	}
}

func TestAmendRewritesCurrentState(t *testing.T) {
	h := NewHistory(Config{MinInterval: time.Second})
	t0 := time.Now()
	h.Reset(snap("base", "a", t0))
	h.Push(snap("edit", "b", t0))
	h.Amend(snap("select", "b+sel", t0.Add(time.Hour)))
	if _, undoDepth, _ := h.Stats(); undoDepth != 2 {
		t.Fatalf("amend added a step: depth %d", undoDepth)
	}
	// label and time are kept, so a quick same-label push still coalesces
	h.Push(snap("edit", "c", t0.Add(time.Millisecond)))
	if _, undoDepth, _ := h.Stats(); undoDepth != 2 {
		t.Fatalf("push after amend did not coalesce: depth %d", undoDepth)
	}
	h.Undo()
	if s, _ := h.Redo(); string(s.Blob) != "c" {
		t.Fatalf("redo = %q", s.Blob)
	}
}

func TestAmendBeforeUndoTarget(t *testing.T) {
	h := NewHistory(Config{})
	t0 := time.Now()
	h.Reset(snap("base", "a", t0))
	h.Amend(snap("select", "a+sel", t0))
	h.Push(snap("delete", "b", t0))
	if s, ok := h.Undo(); !ok || string(s.Blob) != "a+sel" {
		t.Fatalf("undo = %q ok=%v", s.Blob, ok)
	}
}
