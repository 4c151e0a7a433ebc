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
	"fmt"
	"path/filepath"
	"strings"

	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
)

// Format is an output file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts svg, png or pdf in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// ExportFile dispatches to the exporter for f and returns the path written.
func ExportFile(h *storage.DesignHandle, f Format, outPath string, opt Options) (string, error) {
	switch f {
	case FormatSVG:
		return ExportDesignSVG(h, outPath, opt)
	case FormatPNG:
		return ExportDesignPNG(h, outPath, opt)
	case FormatPDF:
		return ExportDesignPDF(h, outPath, opt)
	}
	return "", fmt.Errorf("unknown format: %s", f)
}

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across formats and device views.
//
// Path semantics:
//   - If OutDir is empty or relative, it is created under <workspace>/exports/<preset>/.
//   - Files are named <design>-<device>.<format> inside a subfolder per format.
type BatchOptions struct {
	Preset        PresetName
	Formats       []string            // svg, png, pdf; empty means preset defaults
	Devices       []domain.DeviceView // empty means the design's own device
	Scale         float64             // PNG only
	ShowSelection *bool               // when set, overrides the preset default
	OutDir        string
}

// BatchExport runs exports according to the given preset and returns the
// written paths in format, then device order.
func BatchExport(h *storage.DesignHandle, opt BatchOptions) ([]string, error) {
	if h == nil {
		return nil, fmt.Errorf("design handle is nil")
	}
	names := opt.Formats
	if len(names) == 0 {
		names = presetDefaultFormats(opt.Preset)
	}
	formats := make([]Format, 0, len(names))
	for _, n := range names {
		f, err := ParseFormat(n)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}

	devices := opt.Devices
	if len(devices) == 0 {
		devices = []domain.DeviceView{h.Design.Device}
	}
	for _, d := range devices {
		if !d.Valid() {
			return nil, fmt.Errorf("unknown device view %q", d)
		}
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
		if baseOut == "" {
			baseOut = "batch"
		}
	}

	sel := presetShowSelection(opt.Preset)
	if opt.ShowSelection != nil {
		sel = *opt.ShowSelection
	}
	stem := strings.TrimSuffix(filepath.Base(h.Path), storage.DesignExt)

	var out []string
	for _, f := range formats {
		for _, dev := range devices {
			name := filepath.Join(baseOut, string(f), fmt.Sprintf("%s-%s.%s", stem, dev, f))
			p, err := ExportFile(h, f, name, Options{Device: dev, Scale: opt.Scale, ShowSelection: sel})
			if err != nil {
				return out, fmt.Errorf("%s %s: %w", f, dev, err)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf"}
	default:
		return []string{"png"}
	}
}

func presetShowSelection(p PresetName) bool {
	return p != PresetWeb && p != PresetPrint
}
