/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package bundle

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
)

func newDesign(t *testing.T) *storage.DesignHandle {
	t.Helper()
	root := t.TempDir()
	h, err := storage.InitDesign(filepath.Join(root, "poster"+storage.DesignExt), domain.Design{
		Device: domain.DeviceTablet,
		Elements: []domain.Element{
			{ID: "a", Type: domain.ElementRectangle, Width: domain.Px(100), Height: domain.Px(50), Color: "#111111"},
		},
	})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "exports", "png"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "exports", "png", "poster-tablet.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	return h
}

func TestPackAndInstall(t *testing.T) {
	h := newDesign(t)
	zipPath := filepath.Join(t.TempDir(), "poster.zip")
	m, err := Pack(h, zipPath)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if m.Design != "poster" || m.Elements != 1 || len(m.Files) != 2 {
		t.Fatalf("manifest: %+v", m)
	}
	got, err := ReadManifest(zipPath)
	if err != nil || got.File != "poster"+storage.DesignExt {
		t.Fatalf("read manifest: %+v %v", got, err)
	}

	dst := t.TempDir()
	p, n, err := Install(dst, zipPath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if n != 2 {
		t.Fatalf("installed %d files, want 2", n)
	}
	h2, err := storage.Open(p)
	if err != nil {
		t.Fatalf("open installed design: %v", err)
	}
	if len(h2.Design.Elements) != 1 || h2.Design.Device != domain.DeviceTablet {
		t.Fatalf("installed design: %+v", h2.Design)
	}
	if _, err := os.Stat(filepath.Join(dst, "exports", "png", "poster-tablet.png")); err != nil {
		t.Fatalf("export not installed: %v", err)
	}

	// a second install keeps what is already there
	if _, n, err := Install(dst, zipPath); err != nil || n != 0 {
		t.Fatalf("reinstall: n=%d err=%v", n, err)
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "b.zip")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestInstallRejectsTraversal(t *testing.T) {
	p := writeZip(t, map[string]string{
		ManifestName:      `{"design":"x","file":"x.design.json"}`,
		"../evil.txt":     "nope",
		"x.design.json":   `{"name":"x","device":"desktop","activeColor":"#000000","elements":[],"updatedAt":"2025-01-01T00:00:00Z"}`,
		"exports/a/b.svg": "<svg/>",
	})
	if _, _, err := Install(t.TempDir(), p); err == nil {
		t.Fatal("expected traversal error")
	}
}

func TestInstallRejectsInvalidDesign(t *testing.T) {
	p := writeZip(t, map[string]string{
		ManifestName:    `{"design":"x","file":"x.design.json"}`,
		"x.design.json": `{"elements":"not a list"}`,
	})
	if _, _, err := Install(t.TempDir(), p); err == nil {
		t.Fatal("expected schema error")
	}
}

func TestReadManifestMissing(t *testing.T) {
	p := writeZip(t, map[string]string{"readme.txt": "hi"})
	if _, err := ReadManifest(p); err == nil {
		t.Fatal("expected missing manifest error")
	}
}
