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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"impactstudio/internal/config"
	"impactstudio/internal/crash"
	applog "impactstudio/internal/log"
	"impactstudio/internal/storage"
	"impactstudio/internal/telemetry"
	"impactstudio/internal/version"
)

// errUsage marks argument errors; they exit with 2 instead of 1.
var errUsage = errors.New("usage")

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

type app struct {
	out    io.Writer
	errOut io.Writer
	cfg    config.AppConfig
	pgPass string
	log    *slog.Logger
	// cur is the design being edited; crash.Recover autosaves it.
	cur *storage.DesignHandle
}

func newApp(out, errOut io.Writer, cfg config.AppConfig, pgPass string) *app {
	return &app{
		out:    out,
		errOut: errOut,
		cfg:    cfg,
		pgPass: pgPass,
		log:    applog.WithComponent("cli"),
		cur:    new(storage.DesignHandle),
	}
}

func (a *app) printf(format string, args ...any) { _, _ = fmt.Fprintf(a.out, format, args...) }
func (a *app) println(args ...any)               { _, _ = fmt.Fprintln(a.out, args...) }

func (a *app) usage() {
	w := a.out
	_, _ = fmt.Fprintln(w, "Impact Studio")
	_, _ = fmt.Fprintf(w, "Version: %s\n\n", version.String())
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  impactstudio version                                    Show version")
	_, _ = fmt.Fprintln(w, "  impactstudio projects [filters] [-json] [-list what]    Browse the volunteer projects")
	_, _ = fmt.Fprintln(w, "  impactstudio index <dir> [filters] [-rebuild]           Search through the SQLite index in <dir>")
	_, _ = fmt.Fprintln(w, "  impactstudio mirror [filters] [-seed=false]             Seed and search the Postgres mirror")
	_, _ = fmt.Fprintln(w, "  impactstudio design <command> <file> ...                Edit a design file (see 'design help')")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Filters: -category <role> -search <text> -type <type> -location <text>")
}

// run executes one command and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return 0
	}
	a.log.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))
	telemetry.Command(args[0])

	var err error
	switch args[0] {
	case "version", "--version", "-v":
		a.println(version.String())
	case "help", "--help", "-h":
		a.usage()
	case "projects":
		err = a.cmdProjects(args[1:])
	case "index":
		err = a.cmdIndex(ctx, args[1:])
	case "mirror":
		err = a.cmdMirror(ctx, args[1:])
	case "design":
		err = a.cmdDesign(ctx, args[1:])
	default:
		err = usageErr("unknown command %q", args[0])
	}
	if err == nil {
		return 0
	}
	a.log.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
	_, _ = fmt.Fprintln(a.errOut, "Error:", err)
	if errors.Is(err, errUsage) {
		a.usage()
		return 2
	}
	return 1
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, pw, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	if cfgErr != nil {
		applog.WithComponent("cli").Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	tcfg := telemetry.FromEnv()
	tcfg.OptIn = tcfg.OptIn || cfg.General.TelemetryOptIn
	telemetry.NewDefault(tcfg)

	a := newApp(os.Stdout, os.Stderr, cfg, pw)
	defer crash.Recover(a.cur)

	ctx := context.Background()
	code := a.run(ctx, os.Args[1:])
	telemetry.Flush(ctx)
	return code
}
