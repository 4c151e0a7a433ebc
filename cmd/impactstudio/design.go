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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"impactstudio/internal/bundle"
	"impactstudio/internal/canvas"
	"impactstudio/internal/domain"
	"impactstudio/internal/export"
	applog "impactstudio/internal/log"
	"impactstudio/internal/storage"
	"impactstudio/internal/telemetry"
	"impactstudio/internal/undo"
)

// snapshotsKept bounds the per-design history in the workspace index.
const snapshotsKept = 50

func (a *app) designUsage() {
	w := a.out
	_, _ = fmt.Fprintln(w, "Design commands:")
	_, _ = fmt.Fprintln(w, "  design init <file> [device]                 Create a design (mobile|tablet|desktop)")
	_, _ = fmt.Fprintln(w, "  design show <file> [-json]                  Print frame, toolbar and elements")
	_, _ = fmt.Fprintln(w, "  design tool <file> <tool> <x> <y>           Click the canvas with a tool")
	_, _ = fmt.Fprintln(w, "  design click <file> <x> <y>                 Select the top-most element at a point")
	_, _ = fmt.Fprintln(w, "  design select <file> <id>                   Select an element by id")
	_, _ = fmt.Fprintln(w, "  design deselect <file>                      Clear the selection")
	_, _ = fmt.Fprintln(w, "  design set <file> <prop> <value>            Edit the selected element (width|height|color|content|x|y)")
	_, _ = fmt.Fprintln(w, "  design delete <file>                        Delete the selected element")
	_, _ = fmt.Fprintln(w, "  design device <file> <device>               Switch the preview frame")
	_, _ = fmt.Fprintln(w, "  design color <file> <color>                 Set the colour for new elements")
	_, _ = fmt.Fprintln(w, "  design export <file> <svg|png|pdf> <out>    Render the design [-device d] [-scale n] [-selection]")
	_, _ = fmt.Fprintln(w, "  design batch <file> <web|print>             Export a preset [-devices mobile,desktop]")
	_, _ = fmt.Fprintln(w, "  design preview <file> <out.png>             Write a cached PNG preview")
	_, _ = fmt.Fprintln(w, "  design pack <file> <out.zip>                Bundle the design with its exports")
	_, _ = fmt.Fprintln(w, "  design unpack <bundle.zip> <dir>            Install a bundle into a workspace")
	_, _ = fmt.Fprintln(w, "  design history <file> [n]                   List stored snapshots, newest first")
	_, _ = fmt.Fprintln(w, "  design restore <file> <n>                   Restore snapshot n from 'history'")
}

func (a *app) cmdDesign(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		a.designUsage()
		return nil
	}
	if len(args) < 2 {
		return usageErr("design %s requires <file>", args[0])
	}
	sub, path, rest := args[0], args[1], args[2:]
	ctx = applog.WithDesign(ctx, path)
	need := func(n int, what string) error {
		if len(rest) < n {
			return usageErr("design %s requires %s", sub, what)
		}
		return nil
	}

	switch sub {
	case "init":
		return a.designInit(ctx, path, rest)
	case "show":
		return a.designShow(path, rest)
	case "tool":
		if err := need(3, "<tool> <x> <y>"); err != nil {
			return err
		}
		x, y, err := parsePoint(rest[1], rest[2])
		if err != nil {
			return err
		}
		return a.edit(ctx, path, "tool", func(ed *canvas.Editor) (bool, error) {
			if err := ed.SelectTool(domain.Tool(strings.ToLower(rest[0]))); err != nil {
				return false, err
			}
			// a hit on an existing element selects it whatever the tool
			el, created, ok := ed.Click(x, y)
			switch {
			case !ok:
				a.println("Select tool: nothing created.")
				return false, nil
			case !created:
				a.printf("Selected %s %s\n", el.Type, el.ID)
				return true, nil
			}
			telemetry.ElementCreated(string(el.Type))
			a.printf("Created %s %s at (%g, %g)\n", el.Type, el.ID, el.X, el.Y)
			return true, nil
		})
	case "click":
		if err := need(2, "<x> <y>"); err != nil {
			return err
		}
		x, y, err := parsePoint(rest[0], rest[1])
		if err != nil {
			return err
		}
		return a.edit(ctx, path, "click", func(ed *canvas.Editor) (bool, error) {
			el, _, ok := ed.Click(x, y)
			if !ok {
				a.printf("Nothing at (%g, %g).\n", x, y)
				return false, nil
			}
			a.printf("Selected %s %s\n", el.Type, el.ID)
			return true, nil
		})
	case "select":
		if err := need(1, "<id>"); err != nil {
			return err
		}
		return a.edit(ctx, path, "select", func(ed *canvas.Editor) (bool, error) {
			if err := ed.ClickElement(rest[0]); err != nil {
				return false, err
			}
			a.printf("Selected %s\n", rest[0])
			return true, nil
		})
	case "deselect":
		return a.edit(ctx, path, "deselect", func(ed *canvas.Editor) (bool, error) {
			ed.Deselect()
			return true, nil
		})
	case "set":
		if err := need(2, "<prop> <value>"); err != nil {
			return err
		}
		return a.edit(ctx, path, "set", func(ed *canvas.Editor) (bool, error) {
			if _, ok := ed.Selected(); !ok {
				a.println("No element selected; nothing changed.")
				return false, nil
			}
			if err := ed.SetProperty(rest[0], strings.Join(rest[1:], " ")); err != nil {
				return false, err
			}
			el, _ := ed.Selected()
			a.printf("Updated %s: %s\n", el.ID, rest[0])
			return true, nil
		})
	case "delete":
		return a.edit(ctx, path, "delete", func(ed *canvas.Editor) (bool, error) {
			el, ok := ed.Selected()
			if !ed.Delete() || !ok {
				a.println("No element selected; nothing deleted.")
				return false, nil
			}
			a.printf("Deleted %s %s\n", el.Type, el.ID)
			return true, nil
		})
	case "device":
		if err := need(1, "<device>"); err != nil {
			return err
		}
		dev, err := domain.ParseDevice(rest[0])
		if err != nil {
			return err
		}
		return a.edit(ctx, path, "device", func(ed *canvas.Editor) (bool, error) {
			if err := ed.SetDevice(dev); err != nil {
				return false, err
			}
			a.printf("Device %s (%dx%d)\n", dev, ed.FrameWidth(), domain.FrameHeight)
			return true, nil
		})
	case "color":
		if err := need(1, "<color>"); err != nil {
			return err
		}
		return a.edit(ctx, path, "color", func(ed *canvas.Editor) (bool, error) {
			if err := ed.SetActiveColor(rest[0]); err != nil {
				return false, err
			}
			return true, nil
		})
	case "export":
		return a.designExport(ctx, path, rest)
	case "batch":
		return a.designBatch(path, rest)
	case "preview":
		if err := need(1, "<out.png>"); err != nil {
			return err
		}
		return a.designPreview(ctx, path, rest[0])
	case "pack":
		if err := need(1, "<out.zip>"); err != nil {
			return err
		}
		h, err := a.open(path)
		if err != nil {
			return err
		}
		m, err := bundle.Pack(h, rest[0])
		if err != nil {
			return err
		}
		a.printf("Packed %d files into %s\n", len(m.Files), rest[0])
		return nil
	case "unpack":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		p, n, err := bundle.Install(rest[0], path)
		if err != nil {
			return err
		}
		a.printf("Installed %d files; design at %s\n", n, p)
		return nil
	case "history":
		return a.designHistory(ctx, path, rest)
	case "restore":
		if err := need(1, "<n>"); err != nil {
			return err
		}
		return a.designRestore(ctx, path, rest[0])
	}
	return usageErr("unknown design command %q", sub)
}

func parsePoint(xs, ys string) (float64, float64, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return 0, 0, usageErr("x %q is not a number", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return 0, 0, usageErr("y %q is not a number", ys)
	}
	return x, y, nil
}

// open loads the design into a.cur so a crash can autosave it.
func (a *app) open(path string) (*storage.DesignHandle, error) {
	h, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	if h.Recovered {
		a.log.Warn("design recovered from backup", slog.String("path", path))
		_, _ = fmt.Fprintln(a.errOut, "Warning: design file was unreadable; loaded the latest backup.")
	}
	*a.cur = *h
	return a.cur, nil
}

func (a *app) newEditor(h *storage.DesignHandle) (*canvas.Editor, error) {
	var ed *canvas.Editor
	ed = canvas.New(
		canvas.WithHistory(undo.Config{MaxDepth: a.cfg.Canvas.HistoryDepth}),
		canvas.WithObserver(func([]domain.Element) {
			if ed != nil {
				h.Design = ed.Design()
			}
		}),
	)
	if err := ed.Load(h.Design); err != nil {
		return nil, err
	}
	return ed, nil
}

// edit runs fn on an editor loaded from path and saves when fn reports a change.
func (a *app) edit(ctx context.Context, path, op string, fn func(*canvas.Editor) (bool, error)) error {
	h, err := a.open(path)
	if err != nil {
		return err
	}
	ed, err := a.newEditor(h)
	if err != nil {
		return err
	}
	changed, err := fn(ed)
	if err != nil || !changed {
		return err
	}
	h.Design = ed.Design()
	if err := storage.Save(h); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "design saved", slog.String("op", op), slog.Int("elements", len(h.Design.Elements)))
	a.snapshot(ctx, h)
	return nil
}

// snapshot records the saved state in the workspace index. Failures are logged only.
func (a *app) snapshot(ctx context.Context, h *storage.DesignHandle) {
	blob, err := json.Marshal(h.Design)
	if err != nil {
		return
	}
	db, err := storage.InitOrOpenIndex(h.Root)
	if err != nil {
		a.log.WarnContext(ctx, "snapshot skipped", slog.Any("err", err))
		return
	}
	defer func() { _ = db.Close() }()
	if err := storage.SaveSnapshot(ctx, db, h.Key(), blob, time.Now()); err != nil {
		a.log.WarnContext(ctx, "snapshot failed", slog.Any("err", err))
		return
	}
	if _, err := storage.PruneSnapshots(ctx, db, h.Key(), snapshotsKept); err != nil {
		a.log.WarnContext(ctx, "snapshot prune failed", slog.Any("err", err))
	}
}

func (a *app) designInit(ctx context.Context, path string, rest []string) error {
	devName := a.cfg.Canvas.DefaultDevice
	if len(rest) > 0 {
		devName = rest[0]
	}
	dev, err := domain.ParseDevice(devName)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(path)
	color := a.cfg.Canvas.ActiveColor
	if color == "" {
		color = canvas.DefaultColor
	}
	h, err := storage.InitDesign(abs, domain.Design{Device: dev, ActiveColor: color, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	*a.cur = *h
	a.snapshot(ctx, h)
	a.printf("Created design %q at %s (%s, %dx%d)\n", h.Design.Name, abs, dev, dev.FrameWidth(), domain.FrameHeight)
	return nil
}

// termIcons draws toolbar icons as terminal text.
type termIcons struct{}

func (termIcons) RenderSymbol(s string) string { return s }

func (termIcons) RenderComponent(name string) string {
	switch name {
	case "MousePointer":
		return "↖"
	case "Image":
		return "▣"
	}
	return "[" + name + "]"
}

func (a *app) designShow(path string, rest []string) error {
	fs := flag.NewFlagSet("design show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asJSON := fs.Bool("json", false, "print the design JSON")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}
	h, err := a.open(path)
	if err != nil {
		return err
	}
	ed, err := a.newEditor(h)
	if err != nil {
		return err
	}
	if *asJSON {
		return a.writeJSON(ed.Design())
	}

	a.printf("Design: %s\n", ed.Name())
	a.printf("Device: %s (%dx%d)\n", ed.Device(), ed.FrameWidth(), domain.FrameHeight)
	a.printf("Active colour: %s\n", ed.ActiveColor())
	var tools []string
	for _, ti := range domain.Tools() {
		tools = append(tools, ti.Icon.Render(termIcons{})+" "+ti.Label)
	}
	a.printf("Tools: %s\n", strings.Join(tools, "  "))
	if b, ok := ed.ContentBounds(); ok {
		a.printf("Content: %gx%g at (%g, %g)\n", b.W, b.H, b.X, b.Y)
	}

	els := ed.Elements()
	if len(els) == 0 {
		a.println("No elements.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tID\tTYPE\tX\tY\tWIDTH\tHEIGHT\tCOLOR\tCONTENT")
	for _, el := range els {
		mark := ""
		if el.Selected {
			mark = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\t%s\t%s\t%s\t%s\n", mark, el.ID, el.Type, el.X, el.Y, el.Width, el.Height, el.Color, el.Content)
	}
	return tw.Flush()
}

func (a *app) designExport(ctx context.Context, path string, rest []string) error {
	if len(rest) < 2 {
		return usageErr("design export requires <svg|png|pdf> <out>")
	}
	f, err := export.ParseFormat(rest[0])
	if err != nil {
		return usageErr("%v", err)
	}
	out := rest[1]
	fs := flag.NewFlagSet("design export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	device := fs.String("device", "", "device view override")
	scale := fs.Float64("scale", 1, "PNG scale factor")
	sel := fs.Bool("selection", false, "outline the selected element")
	if err := parseFlags(fs, rest[2:]); err != nil {
		return err
	}
	opt := export.Options{Scale: *scale, ShowSelection: *sel}
	if *device != "" {
		if opt.Device, err = domain.ParseDevice(*device); err != nil {
			return err
		}
	}
	h, err := a.open(path)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(out) {
		// relative to the working directory, not the workspace exports folder
		if out, err = filepath.Abs(out); err != nil {
			return err
		}
	}
	p, err := export.ExportFile(h, f, out, opt)
	if err != nil {
		return err
	}
	dev := opt.Device
	if dev == "" {
		dev = h.Design.Device
	}
	telemetry.DesignExported(string(f), string(dev))
	a.log.InfoContext(ctx, "design exported", slog.String("format", string(f)), slog.String("out", p))
	a.printf("Exported %s\n", p)
	return nil
}

func (a *app) designBatch(path string, rest []string) error {
	if len(rest) < 1 {
		return usageErr("design batch requires <web|print>")
	}
	preset := export.PresetName(strings.ToLower(rest[0]))
	if preset != export.PresetWeb && preset != export.PresetPrint {
		return usageErr("unknown preset %q", rest[0])
	}
	fs := flag.NewFlagSet("design batch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	devices := fs.String("devices", "", "comma separated device views")
	if err := parseFlags(fs, rest[1:]); err != nil {
		return err
	}
	opt := export.BatchOptions{Preset: preset}
	for _, d := range strings.Split(*devices, ",") {
		if strings.TrimSpace(d) == "" {
			continue
		}
		dev, err := domain.ParseDevice(d)
		if err != nil {
			return err
		}
		opt.Devices = append(opt.Devices, dev)
	}
	h, err := a.open(path)
	if err != nil {
		return err
	}
	paths, err := export.BatchExport(h, opt)
	for _, p := range paths {
		a.printf("Exported %s\n", p)
	}
	return err
}

// previewKey includes a content hash so any change to the design misses the cache.
func previewKey(h *storage.DesignHandle) (storage.PreviewKey, error) {
	blob, err := json.Marshal(h.Design)
	if err != nil {
		return storage.PreviewKey{}, err
	}
	sum := sha256.Sum256(blob)
	return storage.PreviewKey{
		Design: h.Key() + "@" + hex.EncodeToString(sum[:8]),
		Device: string(h.Design.Device),
		W:      h.Design.Device.FrameWidth(),
		H:      domain.FrameHeight,
	}, nil
}

func (a *app) designPreview(ctx context.Context, path, out string) error {
	h, err := a.open(path)
	if err != nil {
		return err
	}
	key, err := previewKey(h)
	if err != nil {
		return err
	}
	db, err := storage.InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	rendered := false
	png, err := storage.GetOrCreatePreview(ctx, db, key, func(context.Context) ([]byte, error) {
		rendered = true
		return export.EncodePNG(h.Design, export.Options{})
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	state := "cached"
	if rendered {
		state = "rendered"
	}
	a.printf("Preview %s (%s, %d bytes)\n", out, state, len(png))
	return nil
}

func (a *app) designHistory(ctx context.Context, path string, rest []string) error {
	limit := 10
	if len(rest) > 0 {
		n, err := strconv.Atoi(rest[0])
		if err != nil || n <= 0 {
			return usageErr("history limit %q is not a positive number", rest[0])
		}
		limit = n
	}
	h, err := a.open(path)
	if err != nil {
		return err
	}
	db, err := storage.InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	snaps, err := storage.ListSnapshots(ctx, db, h.Key(), limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		a.println("No snapshots.")
		return nil
	}
	for i, s := range snaps {
		var d domain.Design
		n := -1
		if json.Unmarshal(s.Blob, &d) == nil {
			n = len(d.Elements)
		}
		a.printf("%d  %s  %d elements\n", i+1, s.TS.Local().Format(time.DateTime), n)
	}
	return nil
}

func (a *app) designRestore(ctx context.Context, path, nth string) error {
	n, err := strconv.Atoi(nth)
	if err != nil || n <= 0 {
		return usageErr("snapshot number %q is not a positive number", nth)
	}
	h, err := a.open(path)
	if err != nil {
		return err
	}
	db, err := storage.InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	snaps, err := storage.ListSnapshots(ctx, db, h.Key(), n)
	_ = db.Close()
	if err != nil {
		return err
	}
	if n > len(snaps) {
		return errors.New("no such snapshot")
	}
	var d domain.Design
	if err := json.Unmarshal(snaps[n-1].Blob, &d); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return a.edit(ctx, path, "restore", func(ed *canvas.Editor) (bool, error) {
		if err := ed.Load(d); err != nil {
			return false, err
		}
		a.printf("Restored snapshot %d (%d elements)\n", n, len(d.Elements))
		return true, nil
	})
}
