/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/xml"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
)

func sampleDesign() domain.Design {
	return domain.Design{
		Name:        "Landing <draft>",
		Device:      domain.DeviceMobile,
		ActiveColor: "#3b82f6",
		UpdatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		SelectedID:  "t1",
		Elements: []domain.Element{
			{ID: "r1", Type: domain.ElementRectangle, X: 10, Y: 10, Width: domain.Px(100), Height: domain.Px(50), Color: "#ff0000"},
			{ID: "c1", Type: domain.ElementCircle, X: 200, Y: 10, Width: domain.Px(100), Height: domain.Px(100), Color: "#00ff00"},
			{ID: "t1", Type: domain.ElementText, X: 10, Y: 200, Width: domain.Px(120), Height: domain.AutoSize, Color: "#000000", Content: "Hello & welcome to the canvas"},
			{ID: "i1", Type: domain.ElementImage, X: 10, Y: 400, Width: domain.Px(100), Height: domain.Px(100), Color: "#3b82f6"},
		},
	}
}

func TestBuildScene_FrameAndItems(t *testing.T) {
	sc := BuildScene(sampleDesign(), Options{})
	if sc.Width != 375 || sc.Height != domain.FrameHeight {
		t.Fatalf("frame = %vx%v, want 375x%d", sc.Width, sc.Height, domain.FrameHeight)
	}
	if len(sc.Items) != 4 {
		t.Fatalf("items = %d", len(sc.Items))
	}
	txt := sc.Items[2]
	if len(txt.Lines) < 2 {
		t.Fatalf("expected wrapped text, got %q", txt.Lines)
	}
	if txt.Rect.H <= 0 {
		t.Fatalf("auto height not measured: %+v", txt.Rect)
	}
	for _, it := range sc.Items {
		if it.Selected {
			t.Fatalf("selection shown without ShowSelection")
		}
	}

	sc = BuildScene(sampleDesign(), Options{Device: domain.DeviceDesktop, ShowSelection: true})
	if sc.Width != 1280 {
		t.Fatalf("device override width = %v", sc.Width)
	}
	if !sc.Items[2].Selected || sc.Items[0].Selected {
		t.Fatalf("selection flags wrong: %+v", sc.Items)
	}
}

func TestWriteSVG_WellFormed(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sampleDesign(), Options{ShowSelection: true}); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	s := buf.String()
	for _, want := range []string{`width="375px"`, `<ellipse id="c1"`, `Hello &amp;`, `Landing &lt;draft&gt;`, `stroke="#2563eb"`} {
		if !strings.Contains(s, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	dec := xml.NewDecoder(strings.NewReader(s))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("svg not well-formed: %v", err)
		}
	}
}

func TestRenderPNG_Pixels(t *testing.T) {
	img := RenderPNG(sampleDesign(), Options{})
	if b := img.Bounds(); b.Dx() != 375 || b.Dy() != 800 {
		t.Fatalf("bounds = %v", b)
	}
	eq := func(x, y int, want color.RGBA) {
		t.Helper()
		if got := img.RGBAAt(x, y); got != want {
			t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
		}
	}
	white := color.RGBA{255, 255, 255, 255}
	eq(50, 30, color.RGBA{255, 0, 0, 255})  // rectangle
	eq(250, 60, color.RGBA{0, 255, 0, 255}) // circle centre
	eq(201, 11, white)                      // circle bounding-box corner
	eq(5, 5, white)
	eq(60, 450, color.RGBA{156, 163, 175, 255}) // cross of the image placeholder

	scaled := RenderPNG(sampleDesign(), Options{Scale: 2})
	if b := scaled.Bounds(); b.Dx() != 750 || b.Dy() != 1600 {
		t.Fatalf("scaled bounds = %v", b)
	}
}

func TestEncodePNG_Decodes(t *testing.T) {
	b, err := EncodePNG(sampleDesign(), Options{})
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(b)); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestWritePDF_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleDesign(), Options{}); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:8])
	}
	if buf.Len() < 500 {
		t.Fatalf("pdf suspiciously small: %d bytes", buf.Len())
	}
}

func initHandle(t *testing.T) *storage.DesignHandle {
	t.Helper()
	root := t.TempDir()
	h, err := storage.InitDesign(filepath.Join(root, "landing"+storage.DesignExt), sampleDesign())
	if err != nil {
		t.Fatalf("InitDesign: %v", err)
	}
	return h
}

func TestExportFile_RelativeGoesToExports(t *testing.T) {
	h := initHandle(t)
	for _, f := range []Format{FormatSVG, FormatPNG, FormatPDF} {
		p, err := ExportFile(h, f, "out."+string(f), Options{})
		if err != nil {
			t.Fatalf("ExportFile %s: %v", f, err)
		}
		if want := filepath.Join(h.Root, "exports", "out."+string(f)); p != want {
			t.Fatalf("path = %s, want %s", p, want)
		}
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PNG "); err != nil || f != FormatPNG {
		t.Fatalf("ParseFormat = %q, %v", f, err)
	}
	if _, err := ParseFormat("cbz"); err == nil {
		t.Fatalf("expected error for cbz")
	}
}

func TestBatchExport_WebPreset(t *testing.T) {
	h := initHandle(t)
	paths, err := BatchExport(h, BatchOptions{Preset: PresetWeb, Devices: []domain.DeviceView{domain.DeviceMobile, domain.DeviceDesktop}})
	if err != nil {
		t.Fatalf("batch export web: %v", err)
	}
	want := []string{
		filepath.Join(h.Root, "exports", "web", "png", "landing-mobile.png"),
		filepath.Join(h.Root, "exports", "web", "png", "landing-desktop.png"),
		filepath.Join(h.Root, "exports", "web", "svg", "landing-mobile.svg"),
		filepath.Join(h.Root, "exports", "web", "svg", "landing-desktop.svg"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], p)
		}
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
}

func TestBatchExport_PrintPreset(t *testing.T) {
	h := initHandle(t)
	paths, err := BatchExport(h, BatchOptions{Preset: PresetPrint})
	if err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	want := filepath.Join(h.Root, "exports", "print", "pdf", "landing-mobile.pdf")
	if len(paths) != 1 || paths[0] != want {
		t.Fatalf("paths = %v, want [%s]", paths, want)
	}
}

func TestBatchExport_RejectsUnknownFormatAndDevice(t *testing.T) {
	h := initHandle(t)
	if _, err := BatchExport(h, BatchOptions{Formats: []string{"epub"}}); err == nil {
		t.Fatalf("expected unknown format error")
	}
	if _, err := BatchExport(h, BatchOptions{Devices: []domain.DeviceView{"watch"}}); err == nil {
		t.Fatalf("expected unknown device error")
	}
}
