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
	"sync"
	"time"
)

// Snapshot is a reversible state blob. Blob content is opaque to the history;
// its size is estimated as len(Blob). Label names the change that produced it
// and is used for coalescing.
type Snapshot struct {
	Label string
	Blob  []byte
	TS    time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; oldest entries are pruned when exceeded (0 means 16 MiB).
	MaxBytes int
	// MaxDepth limits the number of undo entries kept (0 means unlimited).
	MaxDepth int
	// MinInterval coalesces consecutive snapshots with the same label captured
	// within the interval. Zero disables coalescing.
	MinInterval time.Duration
}

// History is a linear undo/redo history of states. The top of the undo stack
// is always the current state; the entry below it is what Undo returns.
// It is safe for concurrent use.
type History struct {
	cfg        Config
	mu         sync.Mutex
	undo       []Snapshot
	redo       []Snapshot
	totalBytes int
}

func NewHistory(cfg Config) *History {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024
	}
	return &History{cfg: cfg}
}

// Reset drops all entries and seeds the history with the current state.
func (h *History) Reset(base Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = []Snapshot{base}
	h.redo = nil
	h.totalBytes = len(base.Blob)
}

// Push records the state after a change and clears the redo stack. The seeded
// base state is never coalesced away.
func (h *History) Push(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.redo = nil
	if n := len(h.undo); n > 1 && h.cfg.MinInterval > 0 {
		last := h.undo[n-1]
		if last.Label == s.Label && s.TS.Sub(last.TS) < h.cfg.MinInterval {
			h.totalBytes += len(s.Blob) - len(last.Blob)
			h.undo[n-1] = s
			h.enforceCapsLocked()
			return
		}
	}
	h.undo = append(h.undo, s)
	h.totalBytes += len(s.Blob)
	h.enforceCapsLocked()
}

// Amend overwrites the current state without adding an undo step. The
// current entry keeps its label and time so coalescing is unaffected.
func (h *History) Amend(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.undo)
	if n == 0 {
		return
	}
	top := h.undo[n-1]
	s.Label, s.TS = top.Label, top.TS
	h.totalBytes += len(s.Blob) - len(top.Blob)
	h.undo[n-1] = s
}

// Undo steps back and returns the state to restore.
func (h *History) Undo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.undo)
	if n < 2 {
		return Snapshot{}, false
	}
	top := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.totalBytes -= len(top.Blob)
	h.redo = append(h.redo, top)
	return h.undo[n-2], true
}

// Redo re-applies the last undone state and returns it.
func (h *History) Redo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.redo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, s)
	h.totalBytes += len(s.Blob)
	h.enforceCapsLocked()
	return s, true
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 1
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (totalBytes, undoDepth, redoDepth int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.totalBytes, len(h.undo), len(h.redo)
}

// enforceCapsLocked drops the oldest entries but always keeps the current state.
func (h *History) enforceCapsLocked() {
	if h.cfg.MaxDepth > 0 && len(h.undo) > h.cfg.MaxDepth {
		drop := len(h.undo) - h.cfg.MaxDepth
		for i := 0; i < drop; i++ {
			h.totalBytes -= len(h.undo[i].Blob)
		}
		h.undo = append([]Snapshot{}, h.undo[drop:]...)
	}
	for h.totalBytes > h.cfg.MaxBytes && len(h.undo) > 1 {
		h.totalBytes -= len(h.undo[0].Blob)
		h.undo = h.undo[1:]
	}
}
