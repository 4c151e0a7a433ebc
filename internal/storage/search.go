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
	"encoding/json"
	"fmt"
	"strings"

	"impactstudio/internal/catalog"
	"impactstudio/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertProjectSQL = `INSERT INTO projects(id, position, type, title_lc, description_lc, organization_lc, location_lc, doc)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const insertCategorySQL = `INSERT OR IGNORE INTO project_categories(project_id, category) VALUES (?, ?)`

// language=SQL
// dialect=SQLite
const insertSkillSQL = `INSERT INTO project_skills(project_id, position, skill_lc) VALUES (?, ?, ?)`

// SyncProjects replaces the catalog mirror with projects, keeping their order.
func SyncProjects(ctx context.Context, db *sql.DB, projects []domain.Project) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sync: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, q := range []string{`DELETE FROM project_skills`, `DELETE FROM project_categories`, `DELETE FROM projects`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clear mirror: %w", err)
		}
	}
	for pos, p := range projects {
		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal project %d: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, insertProjectSQL, p.ID, pos, string(p.Type),
			strings.ToLower(p.Title), strings.ToLower(p.Description), strings.ToLower(p.Organization),
			strings.ToLower(p.Location), string(doc)); err != nil {
			return fmt.Errorf("insert project %d: %w", p.ID, err)
		}
		for _, c := range p.Categories {
			if _, err := tx.ExecContext(ctx, insertCategorySQL, p.ID, c); err != nil {
				return fmt.Errorf("insert category: %w", err)
			}
		}
		for i, s := range p.NeededSkills {
			if _, err := tx.ExecContext(ctx, insertSkillSQL, p.ID, i, strings.ToLower(s)); err != nil {
				return fmt.Errorf("insert skill: %w", err)
			}
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES('projects_synced', datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`); err != nil {
		return fmt.Errorf("record sync: %w", err)
	}
	return tx.Commit()
}

// CountProjects returns the number of mirrored projects.
func CountProjects(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// SearchProjects runs the catalog filters in SQL. Results match catalog.Apply
// over the mirrored projects, in the same order.
func SearchProjects(ctx context.Context, db *sql.DB, f catalog.Filters) ([]domain.Project, error) {
	var args []any
	var sb strings.Builder
	sb.WriteString("SELECT p.doc FROM projects p WHERE 1=1\n")
	if f.Category != "" {
		sb.WriteString(" AND EXISTS (SELECT 1 FROM project_categories c WHERE c.project_id = p.id AND c.category = ?)\n")
		args = append(args, f.Category)
	}
	if f.Type != "" {
		sb.WriteString(" AND p.type = ?\n")
		args = append(args, f.Type)
	}
	if f.Location != "" {
		sb.WriteString(" AND instr(p.location_lc, ?) > 0\n")
		args = append(args, strings.ToLower(f.Location))
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		sb.WriteString(" AND (instr(p.title_lc, ?) > 0 OR instr(p.description_lc, ?) > 0 OR instr(p.organization_lc, ?) > 0\n")
		sb.WriteString("   OR EXISTS (SELECT 1 FROM project_skills s WHERE s.project_id = p.id AND instr(s.skill_lc, ?) > 0))\n")
		args = append(args, q, q, q, q)
	}
	sb.WriteString("ORDER BY p.position")

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []domain.Project{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var p domain.Project
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
