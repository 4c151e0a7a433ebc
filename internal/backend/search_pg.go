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
	"strings"

	"impactstudio/internal/catalog"
	"impactstudio/internal/domain"
)

// SearchPG runs the catalog filters against the Postgres mirror. Matching uses
// strpos over the lower-cased columns, so results equal catalog.Apply over the
// seeded projects, in the same order.
func SearchPG(ctx context.Context, db *sql.DB, f catalog.Filters) ([]domain.Project, error) {
	var (
		args []any
		b    strings.Builder
	)
	// Helper to add parameter and return placeholder like $n
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString("SELECT p.doc::text FROM projects p WHERE TRUE ")
	if f.Category != "" {
		b.WriteString(" AND EXISTS (SELECT 1 FROM project_categories c WHERE c.project_id = p.id AND c.category = " + place(f.Category) + ") ")
	}
	if f.Type != "" {
		b.WriteString(" AND p.type = " + place(f.Type) + " ")
	}
	if f.Location != "" {
		b.WriteString(" AND strpos(p.location_lc, " + place(strings.ToLower(f.Location)) + ") > 0 ")
	}
	if f.Search != "" {
		q := place(strings.ToLower(f.Search))
		b.WriteString(" AND (strpos(p.title_lc, " + q + ") > 0 OR strpos(p.description_lc, " + q + ") > 0 OR strpos(p.organization_lc, " + q + ") > 0 ")
		b.WriteString("   OR EXISTS (SELECT 1 FROM project_skills s WHERE s.project_id = p.id AND strpos(s.skill_lc, " + q + ") > 0)) ")
	}
	b.WriteString(" ORDER BY p.position, p.id")

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search pg query: %w", err)
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
