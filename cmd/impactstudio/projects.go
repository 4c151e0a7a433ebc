/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"impactstudio/internal/backend"
	"impactstudio/internal/catalog"
	"impactstudio/internal/domain"
	"impactstudio/internal/storage"
	"impactstudio/internal/telemetry"
)

type filterFlags struct {
	f    catalog.Filters
	json bool
}

func newFilterSet(name string, ff *filterFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&ff.f.Category, "category", "", "exact volunteer role")
	fs.StringVar(&ff.f.Search, "search", "", "text in title, description, organization or skills")
	fs.StringVar(&ff.f.Type, "type", "", "exact organisation type")
	fs.StringVar(&ff.f.Location, "location", "", "text in the location")
	fs.BoolVar(&ff.json, "json", false, "print JSON")
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageErr("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return usageErr("%s: unexpected argument %q", fs.Name(), fs.Arg(0))
	}
	return nil
}

// activeFilters lists the set filters as name=value. Telemetry only gets the names.
func activeFilters(f catalog.Filters) []string {
	var out []string
	for _, kv := range [][2]string{{"category", f.Category}, {"search", f.Search}, {"type", f.Type}, {"location", f.Location}} {
		if kv[1] != "" {
			out = append(out, kv[0]+"="+kv[1])
		}
	}
	return out
}

func filterNames(f catalog.Filters) []string {
	names := activeFilters(f)
	for i, kv := range names {
		names[i], _, _ = strings.Cut(kv, "=")
	}
	return names
}

func (a *app) cmdProjects(args []string) error {
	var ff filterFlags
	fs := newFilterSet("projects", &ff)
	list := fs.String("list", "", "list categories, locations or types instead of projects")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	all := catalog.Sample()
	switch *list {
	case "":
	case "categories":
		return a.printValues(catalog.Categories(all), ff.json)
	case "locations":
		return a.printValues(catalog.Locations(all), ff.json)
	case "types":
		var ts []string
		for _, t := range domain.AllProjectTypes() {
			ts = append(ts, string(t))
		}
		return a.printValues(ts, ff.json)
	default:
		return usageErr("projects: unknown list %q", *list)
	}

	b := catalog.NewBrowser(all)
	res := b.SetFilters(ff.f)
	telemetry.ProjectsFiltered(filterNames(ff.f), len(res.Projects))
	return a.printProjects(res, ff.json)
}

func (a *app) printValues(vs []string, asJSON bool) error {
	if asJSON {
		return a.writeJSON(vs)
	}
	for _, v := range vs {
		a.println(v)
	}
	return nil
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (a *app) printProjects(res catalog.Result, asJSON bool) error {
	if asJSON {
		return a.writeJSON(res.Projects)
	}
	if res.Empty() {
		if res.Filtered() {
			a.println("No projects match the current filters.")
		} else {
			a.println("No projects available.")
		}
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tLOCATION\tVOLUNTEERS\tURGENCY")
	for _, p := range res.Projects {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%s\n", p.ID, p.Title, p.Type, p.Location, p.Volunteers, p.MaxVolunteers, p.Urgency)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.Filtered() {
		a.printf("%d of %d projects (%s)\n", len(res.Projects), res.Total, strings.Join(activeFilters(res.Filters), ", "))
	} else {
		a.printf("%d projects\n", res.Total)
	}
	return nil
}

// cmdIndex keeps a SQLite mirror of the catalog in <dir>/.ims and searches it.
func (a *app) cmdIndex(ctx context.Context, args []string) error {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return usageErr("index requires <dir>")
	}
	root, _ := filepath.Abs(args[0])
	var ff filterFlags
	fs := newFilterSet("index", &ff)
	rebuild := fs.Bool("rebuild", false, "drop and rebuild the index")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	all := catalog.Sample()
	if *rebuild {
		if err := storage.RebuildIndex(ctx, root, all); err != nil {
			return err
		}
	} else if rebuilt, err := storage.DetectAndRebuildIndex(ctx, root, all); err != nil {
		return err
	} else if rebuilt {
		a.log.Info("index rebuilt", slog.String("root", root))
	}

	db, err := storage.InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if n, err := storage.CountProjects(ctx, db); err != nil {
		return err
	} else if n != len(all) {
		if err := storage.SyncProjects(ctx, db, all); err != nil {
			return err
		}
	}
	return a.searchWith(ctx, db, ff, len(all), storage.SearchProjects)
}

// cmdMirror seeds the Postgres mirror and searches it.
func (a *app) cmdMirror(ctx context.Context, args []string) error {
	var ff filterFlags
	fs := newFilterSet("mirror", &ff)
	seed := fs.Bool("seed", true, "upsert the catalog before searching")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	db, err := backend.Open(ctx, a.cfg.Postgres.ConnString(a.pgPass))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	all := catalog.Sample()
	if *seed {
		if err := backend.SeedProjects(ctx, db, all); err != nil {
			return err
		}
	}
	total, err := backend.CountProjects(ctx, db)
	if err != nil {
		return err
	}
	return a.searchWith(ctx, db, ff, total, backend.SearchPG)
}

type searchFunc func(context.Context, *sql.DB, catalog.Filters) ([]domain.Project, error)

func (a *app) searchWith(ctx context.Context, db *sql.DB, ff filterFlags, total int, search searchFunc) error {
	ps, err := search(ctx, db, ff.f)
	if err != nil {
		return err
	}
	telemetry.ProjectsFiltered(filterNames(ff.f), len(ps))
	return a.printProjects(catalog.Result{Projects: ps, Total: total, Filters: ff.f}, ff.json)
}
