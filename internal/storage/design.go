/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"impactstudio/internal/domain"
)

const (
	// DesignExt is the conventional suffix of design files.
	DesignExt      = ".design.json"
	BackupsDirName = "backups"
	// MaxBackups is how many backups per design file are kept.
	MaxBackups = 20
)

// DesignHandle tracks a design file on disk. Root is the workspace directory
// containing the file; it also holds backups/ and the .ims index.
type DesignHandle struct {
	Root   string
	Path   string
	Design domain.Design
	// Recovered is set when Open had to fall back to a backup.
	Recovered bool
}

// Key identifies the design inside the workspace index.
func (h *DesignHandle) Key() string { return filepath.Base(h.Path) }

// InitDesign creates a new design file at path, creating parent directories.
// It fails if the file already exists.
func InitDesign(path string, d domain.Design) (*DesignHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("design path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("design %s already exists", path)
	}
	root := filepath.Dir(path)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create design dir: %w", err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), DesignExt)
	}
	if d.Device == "" {
		d.Device = domain.DeviceDesktop
	}
	if d.Elements == nil {
		d.Elements = []domain.Element{}
	}
	h := &DesignHandle{Root: root, Path: path, Design: d}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads a design file. If the file is missing, unparsable or fails schema
// validation, the latest backup is used instead and Recovered is set.
func Open(path string) (*DesignHandle, error) {
	root := filepath.Dir(path)
	d, err := readDesign(path)
	if err != nil {
		bd, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open design: %w; backup attempt: %v", err, berr)
		}
		return &DesignHandle{Root: root, Path: path, Design: *bd, Recovered: true}, nil
	}
	return &DesignHandle{Root: root, Path: path, Design: *d}, nil
}

func readDesign(path string) (*domain.Design, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateDesignJSON(b); err != nil {
		return nil, err
	}
	var d domain.Design
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse design: %w", err)
	}
	return &d, nil
}

// Save writes h.Design with transactional semantics after copying the previous
// file (if any) into backups/.
func Save(h *DesignHandle) error {
	if h == nil {
		return errors.New("nil DesignHandle")
	}
	if h.Root == "" || h.Path == "" {
		return errors.New("invalid DesignHandle: missing paths")
	}
	if h.Design.Elements == nil {
		h.Design.Elements = []domain.Element{}
	}
	data, err := json.MarshalIndent(h.Design, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal design: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	// a recovered handle means the file on disk is broken; do not back it up
	if _, statErr := os.Stat(h.Path); statErr == nil && !h.Recovered {
		stamp := time.Now().UTC().Format("20060102-150405.000000000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(h.Path), stamp))
		if cerr := copyFile(h.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current design: %w", cerr)
		}
		pruneBackups(h.Path, MaxBackups)
	}

	temp := filepath.Join(h.Root, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(h.Path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp design: %w", werr)
	}
	if rerr := replaceFile(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace design: %w", rerr)
	}
	h.Recovered = false
	return nil
}

// removeBeforeRename is set where rename cannot replace an existing file.
var removeBeforeRename = runtime.GOOS == "windows"

// replaceFile moves src over dst. Elsewhere than Windows the rename is atomic
// and dst is never missing.
func replaceFile(src, dst string) error {
	if removeBeforeRename {
		if _, err := os.Stat(dst); err == nil {
			_ = os.Remove(dst)
		}
	}
	return os.Rename(src, dst)
}

// SaveAs writes the design to a new path and points the handle at it.
func SaveAs(h *DesignHandle, newPath string) error {
	if h == nil {
		return errors.New("nil DesignHandle")
	}
	if newPath == "" {
		return errors.New("new path is empty")
	}
	root := filepath.Dir(newPath)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create design dir: %w", err)
	}
	h.Root = root
	h.Path = newPath
	return Save(h)
}

// Backups lists backup files of the design at path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	// the timestamp in the name sorts lexicographically
	sort.Strings(out)
	return out, nil
}

func pruneBackups(path string, keep int) {
	all, err := Backups(path)
	if err != nil || len(all) <= keep {
		return
	}
	for _, p := range all[:len(all)-keep] {
		_ = os.Remove(p)
	}
}

func openFromLatestBackup(path string) (*domain.Design, error) {
	candidates, err := Backups(path)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	latest := candidates[len(candidates)-1]
	d, err := readDesign(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	return d, nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// AutosaveCrashSnapshot writes the in-memory design of h next to the backups
// without touching the design file itself. Used after a panic, when the file
// on disk may be older than the session state.
func AutosaveCrashSnapshot(h *DesignHandle) (string, error) {
	if h == nil || h.Root == "" || h.Path == "" {
		return "", errors.New("invalid DesignHandle")
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(h.Design, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal design: %w", err)
	}
	stamp := time.Now().UTC().Format("20060102-150405.000000000")
	p := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", filepath.Base(h.Path), stamp))
	if err := writeFileSync(p, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return p, nil
}
