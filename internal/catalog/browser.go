/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"impactstudio/internal/domain"
)

// Result is the outcome of one recomputation.
type Result struct {
	Projects []domain.Project
	// Total is the size of the unfiltered set.
	Total   int
	Filters Filters
}

// Filtered reports whether any filter was applied.
func (r Result) Filtered() bool { return !r.Filters.IsZero() }

// Empty reports whether nothing matched. An empty unfiltered result only
// happens for an empty dataset.
func (r Result) Empty() bool { return len(r.Projects) == 0 }

// Browser owns the filter state of one listing session. Not safe for concurrent use.
type Browser struct {
	projects []domain.Project
	filters  Filters
	onChange func(Result)
}

// NewBrowser creates a browser over a private copy of projects.
func NewBrowser(projects []domain.Project) *Browser {
	return &Browser{projects: Apply(projects, Filters{})}
}

// OnChange registers fn to receive every recomputed result. nil unregisters.
func (b *Browser) OnChange(fn func(Result)) { b.onChange = fn }

// Filters returns the current filter state.
func (b *Browser) Filters() Filters { return b.filters }

// Result recomputes the current view.
func (b *Browser) Result() Result {
	return Result{Projects: Apply(b.projects, b.filters), Total: len(b.projects), Filters: b.filters}
}

func (b *Browser) SetCategory(c string) Result { b.filters.Category = c; return b.changed() }
func (b *Browser) SetSearch(q string) Result   { b.filters.Search = q; return b.changed() }
func (b *Browser) SetType(t string) Result     { b.filters.Type = t; return b.changed() }
func (b *Browser) SetLocation(l string) Result { b.filters.Location = l; return b.changed() }

// SetFilters replaces all four filters at once.
func (b *Browser) SetFilters(f Filters) Result { b.filters = f; return b.changed() }

// Reset clears all filters and restores the full set in original order.
func (b *Browser) Reset() Result { return b.SetFilters(Filters{}) }

func (b *Browser) changed() Result {
	r := b.Result()
	if b.onChange != nil {
		b.onChange(r)
	}
	return r
}
