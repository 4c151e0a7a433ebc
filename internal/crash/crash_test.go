/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
)

func TestWriteReportInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Impact Studio Crash Report") || !strings.Contains(s, "Panic: boom") {
		t.Fatalf("unexpected report: %s", s)
	}
	if strings.Contains(s, "Design:") {
		t.Fatalf("report without design must not name one")
	}
}

func newHandle(t *testing.T) *storage.DesignHandle {
	t.Helper()
	h, err := storage.InitDesign(filepath.Join(t.TempDir(), "home"+storage.DesignExt), domain.Design{Device: domain.DeviceMobile})
	if err != nil {
		t.Fatalf("InitDesign: %v", err)
	}
	return h
}

// Recover writes the report under backups/, autosaves the in-memory design
// and calls exitFn with 2.
func TestRecover_ReportAndAutosave(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	h := newHandle(t)
	h.Design.Elements = append(h.Design.Elements, domain.Element{
		ID: "x", Type: domain.ElementCircle, Width: domain.Px(100), Height: domain.Px(100), Color: "#3b82f6",
	})

	func() {
		defer Recover(h)
		panic("boom")
	}()

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	files, err := os.ReadDir(filepath.Join(h.Root, storage.BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	var report, snapshot string
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log"):
			report = f.Name()
		case strings.Contains(f.Name(), ".crash-"):
			snapshot = f.Name()
		}
	}
	if report == "" || snapshot == "" {
		t.Fatalf("missing report (%q) or snapshot (%q)", report, snapshot)
	}
	b, _ := os.ReadFile(filepath.Join(h.Root, storage.BackupsDirName, report))
	if !strings.Contains(string(b), "Panic: boom") || !strings.Contains(string(b), "(1 elements)") {
		t.Fatalf("report content: %s", b)
	}
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("exit called without panic")
	}
}

func TestRecover_EmptyHandleWritesTempReport(t *testing.T) {
	oldStderr := os.Stderr
	devnull, _ := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	os.Stderr = devnull
	defer func() { os.Stderr = oldStderr; _ = devnull.Close() }()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(&storage.DesignHandle{})
		panic("early")
	}()
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}
