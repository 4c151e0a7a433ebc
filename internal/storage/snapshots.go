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
	"time"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(design, ts, blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT ts, blob FROM snapshots WHERE design = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT ts, blob FROM snapshots WHERE design = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE design = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE design = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// tsLayout is fixed-width so stamps sort lexicographically in SQL.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Snapshot is one stored design state.
type Snapshot struct {
	TS   time.Time
	Blob []byte
}

// SaveSnapshot stores a design state blob (canvas JSON) under the design key.
func SaveSnapshot(ctx context.Context, db *sql.DB, design string, blob []byte, ts time.Time) error {
	if design == "" {
		return errors.New("design key is required")
	}
	if _, err := db.ExecContext(ctx, insertSnapshotSQL, design, ts.UTC().Format(tsLayout), blob); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest snapshot; ok is false when there is none.
func LatestSnapshot(ctx context.Context, db *sql.DB, design string) (s Snapshot, ok bool, err error) {
	var tsStr string
	err = db.QueryRowContext(ctx, selectLatestSnapshotSQL, design).Scan(&tsStr, &s.Blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("latest snapshot: %w", err)
	}
	// keep the blob even if the stamp is unreadable
	s.TS, _ = time.Parse(tsLayout, tsStr)
	return s, true, nil
}

// ListSnapshots returns up to limit snapshots, newest first.
func ListSnapshots(ctx context.Context, db *sql.DB, design string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, listSnapshotsSQL, design, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		var tsStr string
		var s Snapshot
		if err := rows.Scan(&tsStr, &s.Blob); err != nil {
			return nil, err
		}
		s.TS, _ = time.Parse(tsLayout, tsStr)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps the newest keepLast snapshots and returns how many were deleted.
func PruneSnapshots(ctx context.Context, db *sql.DB, design string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, design, design, keepLast)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}
