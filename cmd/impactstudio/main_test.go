/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"impactstudio/internal/catalog"
	"impactstudio/internal/config"
	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut, config.Defaults(), "")
	code = a.run(context.Background(), args)
	return code, out.String(), errOut.String()
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	code, out, errOut := runCLI(t, args...)
	if code != 0 {
		t.Fatalf("%v: exit %d\nstdout: %s\nstderr: %s", args, code, out, errOut)
	}
	return out
}

func TestUsageErrorsExitTwo(t *testing.T) {
	cases := [][]string{
		{"bogus"},
		{"projects", "-nope"},
		{"projects", "stray"},
		{"index"},
		{"design", "tool"},
		{"design", "tool", "x.design.json", "circle", "ten", "5"},
		{"design", "export", "x.design.json", "gif", "out.gif"},
		{"design", "frobnicate", "x.design.json"},
	}
	for _, args := range cases {
		code, _, errOut := runCLI(t, args...)
		if code != 2 {
			t.Errorf("%v: exit %d, want 2", args, code)
		}
		if !strings.HasPrefix(errOut, "Error:") {
			t.Errorf("%v: stderr %q", args, errOut)
		}
	}
}

func TestVersionAndHelp(t *testing.T) {
	if out := mustRun(t, "version"); strings.TrimSpace(out) == "" {
		t.Fatal("empty version")
	}
	if out := mustRun(t); !strings.Contains(out, "Usage:") {
		t.Fatalf("usage missing: %q", out)
	}
	if out := mustRun(t, "design", "help"); !strings.Contains(out, "design restore") {
		t.Fatalf("design usage missing: %q", out)
	}
}

func TestActiveFiltersFooterAndNames(t *testing.T) {
	f := catalog.Filters{Category: "Photographer", Location: "bali"}
	if got := activeFilters(f); !slices.Equal(got, []string{"category=Photographer", "location=bali"}) {
		t.Fatalf("activeFilters = %v", got)
	}
	if got := filterNames(f); !slices.Equal(got, []string{"category", "location"}) {
		t.Fatalf("filterNames = %v", got)
	}
	out := mustRun(t, "projects", "-category", "Photographer")
	if !strings.Contains(out, "1 of 8 projects (category=Photographer)") {
		t.Fatalf("footer: %q", out)
	}
}

func TestProjectsFilterJSON(t *testing.T) {
	out := mustRun(t, "projects", "-type", "NGO", "-search", "forest", "-json")
	var ps []domain.Project
	if err := json.Unmarshal([]byte(out), &ps); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(ps) != 1 || ps[0].Title != "Forest Fire Early Warning System" {
		t.Fatalf("got %+v", ps)
	}
}

func TestProjectsTableAndEmpty(t *testing.T) {
	out := mustRun(t, "projects", "-category", "Photographer")
	if !strings.Contains(out, "Accessible Tourism Guide") || !strings.Contains(out, "category=Photographer") {
		t.Fatalf("table: %q", out)
	}
	out = mustRun(t, "projects", "-search", "no such project anywhere")
	if !strings.Contains(out, "No projects match the current filters.") {
		t.Fatalf("empty: %q", out)
	}
	out = mustRun(t, "projects", "-list", "types")
	if !strings.Contains(out, "NGO") {
		t.Fatalf("types: %q", out)
	}
	if code, _, _ := runCLI(t, "projects", "-list", "owners"); code != 2 {
		t.Fatalf("unknown list exit %d", code)
	}
}

func projectIDs(t *testing.T, out string) []int {
	t.Helper()
	var ps []domain.Project
	if err := json.Unmarshal([]byte(out), &ps); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	ids := make([]int, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}

func TestIndexSearchMatchesInMemory(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"-type", "NGO"},
		{"-search", "forest"},
		{"-category", "Web Developer", "-location", "bali"},
	} {
		want := projectIDs(t, mustRun(t, append([]string{"projects", "-json"}, args...)...))
		got := projectIDs(t, mustRun(t, append([]string{"index", dir, "-json"}, args...)...))
		if !slices.Equal(got, want) {
			t.Fatalf("%v: index %v, memory %v", args, got, want)
		}
	}
	if _, err := os.Stat(storage.IndexPath(dir)); err != nil {
		t.Fatalf("index file: %v", err)
	}
}

func showDesign(t *testing.T, path string) domain.Design {
	t.Helper()
	var d domain.Design
	if err := json.Unmarshal([]byte(mustRun(t, "design", "show", path, "-json")), &d); err != nil {
		t.Fatalf("decode design: %v", err)
	}
	return d
}

func TestDesignEditingFlow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "landing"+storage.DesignExt)

	mustRun(t, "design", "init", path, "mobile")
	if d := showDesign(t, path); d.Device != domain.DeviceMobile || d.Name != "landing" || len(d.Elements) != 0 {
		t.Fatalf("init: %+v", d)
	}
	if code, _, _ := runCLI(t, "design", "init", path); code != 1 {
		t.Fatalf("second init exit %d, want 1", code)
	}

	mustRun(t, "design", "color", path, "#ff0000")
	out := mustRun(t, "design", "tool", path, "rectangle", "10", "20")
	if !strings.Contains(out, "Created rectangle") {
		t.Fatalf("tool: %q", out)
	}
	d := showDesign(t, path)
	if len(d.Elements) != 1 || d.Elements[0].Color != "#ff0000" || !d.Elements[0].Selected {
		t.Fatalf("after create: %+v", d.Elements)
	}
	id := d.Elements[0].ID

	mustRun(t, "design", "set", path, "width", "250")
	if d := showDesign(t, path); d.Elements[0].Width.Value != 250 {
		t.Fatalf("width: %+v", d.Elements[0])
	}
	if code, _, _ := runCLI(t, "design", "set", path, "width", "-3"); code != 1 {
		t.Fatalf("invalid width exit %d", code)
	}

	mustRun(t, "design", "deselect", path)
	if out := mustRun(t, "design", "set", path, "color", "#000000"); !strings.Contains(out, "nothing changed") {
		t.Fatalf("set without selection: %q", out)
	}
	if out := mustRun(t, "design", "click", path, "20", "30"); !strings.Contains(out, id) {
		t.Fatalf("click select: %q", out)
	}
	if out := mustRun(t, "design", "click", path, "900", "700"); !strings.Contains(out, "Nothing at") {
		t.Fatalf("click empty: %q", out)
	}

	mustRun(t, "design", "device", path, "desktop")
	if d := showDesign(t, path); d.Device != domain.DeviceDesktop || d.Elements[0].X != 10 {
		t.Fatalf("device: %+v", d)
	}

	mustRun(t, "design", "select", path, id)
	mustRun(t, "design", "delete", path)
	if d := showDesign(t, path); len(d.Elements) != 0 {
		t.Fatalf("delete: %+v", d.Elements)
	}

	hist := mustRun(t, "design", "history", path)
	if !strings.HasPrefix(hist, "1  ") || !strings.Contains(hist, "0 elements") {
		t.Fatalf("history: %q", hist)
	}
	mustRun(t, "design", "restore", path, "2")
	if d := showDesign(t, path); len(d.Elements) != 1 || d.Elements[0].ID != id {
		t.Fatalf("restore: %+v", d.Elements)
	}
	if code, _, _ := runCLI(t, "design", "restore", path, "999"); code != 1 {
		t.Fatalf("missing snapshot exit %d", code)
	}

	table := mustRun(t, "design", "show", path)
	for _, want := range []string{"Device: desktop (1280x800)", "↖ Select", "□ Rectangle", "▣ Image", id} {
		if !strings.Contains(table, want) {
			t.Errorf("show missing %q:\n%s", want, table)
		}
	}
}

func TestDesignToolOnElementSelectsIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack"+storage.DesignExt)
	mustRun(t, "design", "init", path)
	mustRun(t, "design", "tool", path, "rectangle", "10", "10")
	rect := showDesign(t, path).Elements[0]
	mustRun(t, "design", "deselect", path)

	out := mustRun(t, "design", "tool", path, "circle", "50", "50")
	if !strings.Contains(out, "Selected rectangle "+rect.ID) {
		t.Fatalf("tool on element: %q", out)
	}
	d := showDesign(t, path)
	if len(d.Elements) != 1 || !d.Elements[0].Selected || d.SelectedID != rect.ID {
		t.Fatalf("after tool click: %+v", d)
	}

	// off the element the same tool draws
	if out := mustRun(t, "design", "tool", path, "circle", "400", "400"); !strings.Contains(out, "Created circle") {
		t.Fatalf("tool on empty canvas: %q", out)
	}
}

func TestDesignUnknownToolFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a"+storage.DesignExt)
	mustRun(t, "design", "init", path)
	code, _, errOut := runCLI(t, "design", "tool", path, "triangle", "1", "1")
	if code != 1 || !strings.Contains(errOut, "unknown tool") {
		t.Fatalf("exit %d stderr %q", code, errOut)
	}
}

func TestDesignExportAndPreview(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card"+storage.DesignExt)
	mustRun(t, "design", "init", path, "tablet")
	mustRun(t, "design", "tool", path, "text", "40", "40")
	mustRun(t, "design", "tool", path, "circle", "200", "200")

	for _, f := range []string{"svg", "png", "pdf"} {
		out := filepath.Join(dir, "out."+f)
		mustRun(t, "design", "export", path, f, out, "-device", "mobile")
		if st, err := os.Stat(out); err != nil || st.Size() == 0 {
			t.Fatalf("%s export: %v", f, err)
		}
	}

	out := mustRun(t, "design", "batch", path, "web", "-devices", "mobile,desktop")
	if n := strings.Count(out, "Exported "); n != 4 {
		t.Fatalf("web batch wrote %d files:\n%s", n, out)
	}

	png := filepath.Join(dir, "preview.png")
	if out := mustRun(t, "design", "preview", path, png); !strings.Contains(out, "rendered") {
		t.Fatalf("first preview: %q", out)
	}
	if out := mustRun(t, "design", "preview", path, png); !strings.Contains(out, "cached") {
		t.Fatalf("second preview: %q", out)
	}
	mustRun(t, "design", "set", path, "color", "#00ff00")
	if out := mustRun(t, "design", "preview", path, png); !strings.Contains(out, "rendered") {
		t.Fatalf("preview after edit: %q", out)
	}
	b, err := os.ReadFile(png)
	if err != nil || !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("preview file: %v", err)
	}

	zipPath := filepath.Join(dir, "card.zip")
	if out := mustRun(t, "design", "pack", path, zipPath); !strings.Contains(out, "Packed") {
		t.Fatalf("pack: %q", out)
	}
	other := t.TempDir()
	mustRun(t, "design", "unpack", zipPath, other)
	if d := showDesign(t, filepath.Join(other, "card"+storage.DesignExt)); len(d.Elements) != 2 {
		t.Fatalf("unpacked design: %+v", d.Elements)
	}
}
