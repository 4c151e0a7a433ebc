/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package bundle packs a design file together with its exports into a single
// zip archive and installs such archives into another workspace.
package bundle

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	applog "impactstudio/internal/log"
	"impactstudio/internal/storage"
)

// ManifestName is the archive entry describing the bundle.
const ManifestName = "bundle.manifest.json"

const exportsDir = "exports"

// Manifest is written at the root of every bundle.
type Manifest struct {
	Design   string    `json:"design"`
	File     string    `json:"file"`
	Device   string    `json:"device"`
	Elements int       `json:"elements"`
	Created  time.Time `json:"created"`
	Files    []string  `json:"files"`
}

// Pack writes the design file and everything under <workspace>/exports into destZip.
func Pack(h *storage.DesignHandle, destZip string) (Manifest, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "pack").With(slog.String("design", h.Path))
	if strings.TrimSpace(destZip) == "" {
		return Manifest{}, errors.New("destination zip is required")
	}
	m := Manifest{
		Design:   h.Design.Name,
		File:     filepath.Base(h.Path),
		Device:   string(h.Design.Device),
		Elements: len(h.Design.Elements),
		Created:  time.Now().UTC(),
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return m, fmt.Errorf("ensure zip dir: %w", err)
	}
	zf, err := os.Create(destZip)
	if err != nil {
		return m, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	add := func(src, name string) error {
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		m.Files = append(m.Files, name)
		return nil
	}
	if err := add(h.Path, m.File); err != nil {
		return m, fmt.Errorf("add design: %w", err)
	}
	exports := filepath.Join(h.Root, exportsDir)
	if _, err := os.Stat(exports); err == nil {
		err = filepath.WalkDir(exports, func(p string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || p == destZip {
				return err
			}
			rel, err := filepath.Rel(h.Root, p)
			if err != nil {
				return err
			}
			return add(p, filepath.ToSlash(rel))
		})
		if err != nil {
			l.Error("bundle build failed", slog.Any("err", err))
			return m, fmt.Errorf("build zip: %w", err)
		}
	}

	mw, err := zw.Create(ManifestName)
	if err != nil {
		return m, fmt.Errorf("add manifest: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return m, fmt.Errorf("write manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return m, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("bundle packed", slog.Int("files", len(m.Files)), slog.String("zip", destZip))
	return m, nil
}

// ReadManifest returns the manifest of a bundle without extracting it.
func ReadManifest(zipPath string) (Manifest, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return Manifest{}, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()
	for _, f := range r.File {
		if f.Name != ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Manifest{}, err
		}
		defer func() { _ = rc.Close() }()
		var m Manifest
		if err := json.NewDecoder(rc).Decode(&m); err != nil {
			return Manifest{}, fmt.Errorf("decode manifest: %w", err)
		}
		return m, nil
	}
	return Manifest{}, errors.New("bundle has no manifest")
}

// Install extracts a bundle into root. Existing files are skipped, the design
// file is schema-checked before it is written. It returns the installed design
// path and the number of files written.
func Install(root, zipPath string) (string, int, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "install").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return "", 0, errors.New("workspace root is required")
	}
	m, err := ReadManifest(zipPath)
	if err != nil {
		return "", 0, err
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", 0, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := path.Clean(f.Name)
		if name == ManifestName || f.FileInfo().IsDir() {
			continue
		}
		if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return "", installed, fmt.Errorf("bundle entry %q escapes the workspace", f.Name)
		}
		if name != m.File && !strings.HasPrefix(name, exportsDir+"/") {
			l.Warn("skip foreign entry", slog.String("entry", name))
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(name))
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return "", installed, err
		}
		if name == m.File {
			if err := storage.ValidateDesignJSON(data); err != nil {
				return "", installed, fmt.Errorf("bundle design: %w", err)
			}
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", installed, err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return "", installed, err
		}
		installed++
	}
	l.Info("bundle installed", slog.Int("files", installed))
	return filepath.Join(root, m.File), installed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
