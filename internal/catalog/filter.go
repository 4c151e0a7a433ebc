/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package catalog holds the static volunteer project listing and the filter
// engine over it. Filtering is a pure function of (projects, Filters); the
// Browser type keeps the current Filters for one session.
package catalog

import (
	"strings"

	"impactstudio/internal/domain"
)

// Filters are the four independent predicates. An empty field matches everything.
type Filters struct {
	Category string `json:"category,omitempty"`
	Search   string `json:"search,omitempty"`
	Type     string `json:"type,omitempty"`
	Location string `json:"location,omitempty"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Category == "" && f.Search == "" && f.Type == "" && f.Location == ""
}

// Match reports whether p satisfies every set predicate.
func Match(p domain.Project, f Filters) bool {
	if f.Category != "" && !p.HasCategory(f.Category) {
		return false
	}
	if f.Type != "" && string(p.Type) != f.Type {
		return false
	}
	if f.Location != "" && !containsFold(p.Location, f.Location) {
		return false
	}
	if f.Search != "" && !matchesSearch(p, f.Search) {
		return false
	}
	return true
}

func matchesSearch(p domain.Project, q string) bool {
	if containsFold(p.Title, q) || containsFold(p.Description, q) || containsFold(p.Organization, q) {
		return true
	}
	for _, s := range p.NeededSkills {
		if containsFold(s, q) {
			return true
		}
	}
	return false
}

// containsFold is a case-insensitive substring test. The query is not trimmed.
func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Apply returns the projects matching f in their original order. The result is
// a fresh slice of copies; it never aliases projects.
func Apply(projects []domain.Project, f Filters) []domain.Project {
	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if Match(p, f) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Sample returns a copy of the built-in dataset in its original order.
func Sample() []domain.Project {
	return Apply(sample, Filters{})
}

// Categories lists the distinct categories of projects in first-seen order.
func Categories(projects []domain.Project) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range projects {
		for _, c := range p.Categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Locations lists the distinct locations of projects in first-seen order.
func Locations(projects []domain.Project) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range projects {
		if p.Location != "" && !seen[p.Location] {
			seen[p.Location] = true
			out = append(out, p.Location)
		}
	}
	return out
}
