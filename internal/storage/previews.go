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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PreviewKey identifies a cached preview render.
type PreviewKey struct {
	Design string
	Device string
	W, H   int
}

// GetPreview returns the cached PNG for key, or nil when absent, and marks it used.
func GetPreview(ctx context.Context, db *sql.DB, key PreviewKey) ([]byte, error) {
	var blob []byte
	err := db.QueryRowContext(ctx, `SELECT png FROM previews WHERE design=? AND device=? AND w=? AND h=?`,
		key.Design, key.Device, key.W, key.H).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	now := time.Now().UTC().Format(tsLayout)
	_, _ = db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE design=? AND device=? AND w=? AND h=?`,
		now, key.Design, key.Device, key.W, key.H)
	return blob, nil
}

// PutPreview upserts a PNG preview and evicts least recently used rows so the
// cache stays within MaxPreviewBytes.
func PutPreview(ctx context.Context, db *sql.DB, key PreviewKey, png []byte) error {
	if key.Design == "" {
		return errors.New("design key is required")
	}
	now := time.Now().UTC().Format(tsLayout)
	_, err := db.ExecContext(ctx, `INSERT INTO previews(design, device, w, h, png, size, updated_at, last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(design, device, w, h) DO UPDATE SET png=excluded.png, size=excluded.size,
			updated_at=excluded.updated_at, last_access=excluded.last_access`,
		key.Design, key.Device, key.W, key.H, png, len(png), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	return EvictPreviewsToFit(ctx, db, MaxPreviewBytes())
}

// GetOrCreatePreview returns the cached preview or renders, stores and returns a new one.
func GetOrCreatePreview(ctx context.Context, db *sql.DB, key PreviewKey, render func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := GetPreview(ctx, db, key); err != nil || b != nil {
		return b, err
	}
	data, err := render(ctx)
	if err != nil {
		return nil, err
	}
	if err := PutPreview(ctx, db, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictPreviewsToFit deletes least recently used previews until the total size is <= capBytes.
func EvictPreviewsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	if capBytes <= 0 {
		return nil
	}
	total, err := TotalPreviewBytes(ctx, db)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := db.QueryContext(ctx, `SELECT id, size FROM previews
		ORDER BY CASE WHEN last_access IS NULL THEN 0 ELSE 1 END, last_access, id`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	for rows.Next() && total > capBytes {
		var id, size int64
		if err := rows.Scan(&id, &size); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		total -= size
	}
	// the cursor must be closed before writing on a single connection
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(victims)), ",") + `)`
	if _, err := db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict previews: %w", err)
	}
	return nil
}

// TotalPreviewBytes sums the stored preview sizes.
func TotalPreviewBytes(ctx context.Context, db *sql.DB) (int64, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum previews size: %w", err)
	}
	return total, nil
}

// MaxPreviewBytes reads IMS_PREVIEWS_MAX_BYTES, defaulting to 64 MiB.
func MaxPreviewBytes() int64 {
	const def = 64 * 1024 * 1024
	n, err := strconv.ParseInt(os.Getenv("IMS_PREVIEWS_MAX_BYTES"), 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
