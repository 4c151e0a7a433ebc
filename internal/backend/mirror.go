/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"impactstudio/internal/domain"
	applog "impactstudio/internal/log"
)

// dialect=PostgreSQL
const upsertProjectSQL = `INSERT INTO projects(id, position, type, title_lc, description_lc, organization_lc, location_lc, doc, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position, type = EXCLUDED.type,
		title_lc = EXCLUDED.title_lc, description_lc = EXCLUDED.description_lc,
		organization_lc = EXCLUDED.organization_lc, location_lc = EXCLUDED.location_lc,
		doc = EXCLUDED.doc, updated_at = now()`

// SeedProjects upserts projects into the mirror, keeping their order in the
// position column. Rows whose id is not in projects are removed.
func SeedProjects(ctx context.Context, db *sql.DB, projects []domain.Project) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(projects))
	for pos, p := range projects {
		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal project %d: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, upsertProjectSQL, p.ID, pos, string(p.Type),
			strings.ToLower(p.Title), strings.ToLower(p.Description), strings.ToLower(p.Organization),
			strings.ToLower(p.Location), string(doc)); err != nil {
			return fmt.Errorf("upsert project %d: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_categories WHERE project_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear categories %d: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_skills WHERE project_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear skills %d: %w", p.ID, err)
		}
		for _, c := range p.Categories {
			if _, err := tx.ExecContext(ctx, `INSERT INTO project_categories(project_id, category) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, p.ID, c); err != nil {
				return fmt.Errorf("insert category: %w", err)
			}
		}
		for i, s := range p.NeededSkills {
			if _, err := tx.ExecContext(ctx, `INSERT INTO project_skills(project_id, position, skill_lc) VALUES ($1, $2, $3)`,
				p.ID, i, strings.ToLower(s)); err != nil {
				return fmt.Errorf("insert skill: %w", err)
			}
		}
		ids = append(ids, int64(p.ID))
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE NOT (id = ANY($1))`, ids)
	if err != nil {
		return fmt.Errorf("prune projects: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	pruned, _ := res.RowsAffected()
	applog.WithComponent("backend").Info("catalog seeded", slog.Int("projects", len(projects)), slog.Int64("pruned", pruned))
	return nil
}

// CountProjects returns the number of mirrored projects.
func CountProjects(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}
