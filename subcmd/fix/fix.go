// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fix provides fix subcommand.
package fix

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/dwyu/analysis"
	"go.chromium.org/infra/build/dwyu/execute"
	"go.chromium.org/infra/build/dwyu/fixdeps"
	"go.chromium.org/infra/build/dwyu/o11y/clog"
	"go.chromium.org/infra/build/dwyu/toolsupport/shutil"
	"go.chromium.org/infra/build/dwyu/ui"
)

// WorkspaceEnv is set by `bazel run` to the workspace root.
const WorkspaceEnv = "BUILD_WORKSPACE_DIRECTORY"

const usage = `apply fixes of analyze reports to BUILD files

 $ bazel run @dwyu//:fix -- -fix_all
 $ dwyu fix -workspace <dir> -fix_unused [-dry_run]

It reads the reports written by analyze under the bazel output
directory, and edits BUILD files with buildozer:
 -fix_unused removes unused deps and implementation_deps.
 -fix_deps_which_should_be_private moves deps to implementation_deps.
 -fix_missing_deps adds deps providing invalid includes, found by
   bazel query in the transitive dependencies.

Reports are found under the bazel-bin convenience symlink, unless
-search_path, -use_bazel_info or -dwyu_log_file is given.
`

// Cmd returns the Command for the `fix` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "fix <args>...",
		ShortDesc: "apply fixes of analyze reports",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	workspace        string
	searchPath       string
	useBazelInfo     bool
	logFile          string
	fixUnused        bool
	fixPrivate       bool
	fixMissing       bool
	fixAll           bool
	useCquery        bool
	bazelArgs        string
	bazelStartupArgs string
	buildozer        string
	buildozerArgs    string
	dryRun           bool

	// executor runs bazel and buildozer. localexec if nil.
	executor execute.Executor
}

func (c *run) init() {
	c.Flags.StringVar(&c.workspace, "workspace", "", "workspace root. $"+WorkspaceEnv+" if empty")
	c.Flags.StringVar(&c.searchPath, "search_path", "", "directory to search reports in, or bazel-bin dir for -dwyu_log_file")
	c.Flags.BoolVar(&c.useBazelInfo, "use_bazel_info", false, "use bazel info to find reports instead of the bazel-bin symlink")
	c.Flags.StringVar(&c.logFile, "dwyu_log_file", "", "log of the build running analyze. only reports in the log are fixed")
	c.Flags.BoolVar(&c.fixUnused, "fix_unused", false, "remove unused deps and implementation_deps")
	c.Flags.BoolVar(&c.fixPrivate, "fix_deps_which_should_be_private", false, "move deps used only privately to implementation_deps")
	c.Flags.BoolVar(&c.fixMissing, "fix_missing_deps", false, "add deps providing invalid includes")
	c.Flags.BoolVar(&c.fixAll, "fix_all", false, "apply all fixes")
	c.Flags.BoolVar(&c.useCquery, "use_cquery", false, "use bazel cquery instead of query")
	c.Flags.StringVar(&c.bazelArgs, "bazel_args", "", "space separated args of bazel query and info")
	c.Flags.StringVar(&c.bazelStartupArgs, "bazel_startup_args", "", "space separated bazel startup args")
	c.Flags.StringVar(&c.buildozer, "buildozer", "buildozer", "buildozer binary")
	c.Flags.StringVar(&c.buildozerArgs, "buildozer_args", "", "space separated extra buildozer args")
	c.Flags.BoolVar(&c.dryRun, "dry_run", false, "print buildozer commands and modified BUILD files instead of modifying them")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, a.GetOut())
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			ui.Default.Errorf("%v", err)
		}
		return 1
	}
	return 0
}

func (c *run) requestedFixes() fixdeps.RequestedFixes {
	return fixdeps.RequestedFixes{
		RemoveUnused: c.fixUnused || c.fixAll,
		MoveToImpl:   c.fixPrivate || c.fixAll,
		AddMissing:   c.fixMissing || c.fixAll,
	}
}

func (c *run) run(ctx context.Context, out io.Writer) error {
	fixes := c.requestedFixes()
	if !fixes.Any() {
		return fmt.Errorf("no fix requested: %w", flag.ErrHelp)
	}
	workspace := c.workspace
	if workspace == "" {
		workspace = os.Getenv(WorkspaceEnv)
	}
	if workspace == "" {
		return fmt.Errorf("no -workspace and $%s is not set: %w", WorkspaceEnv, flag.ErrHelp)
	}
	clog.Infof(ctx, "workspace: %s", workspace)

	bazelArgs, err := shutil.Split(c.bazelArgs)
	if err != nil {
		return fmt.Errorf("bad -bazel_args: %w", err)
	}
	startupArgs, err := shutil.Split(c.bazelStartupArgs)
	if err != nil {
		return fmt.Errorf("bad -bazel_startup_args: %w", err)
	}
	buildozerArgs, err := shutil.Split(c.buildozerArgs)
	if err != nil {
		return fmt.Errorf("bad -buildozer_args: %w", err)
	}

	reports, err := c.reports(ctx, workspace, startupArgs, bazelArgs)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "%d reports", len(reports))

	resolver := &fixdeps.Resolver{
		Query: &fixdeps.BazelQuery{
			Workspace:   workspace,
			UseCquery:   c.useCquery,
			StartupArgs: startupArgs,
			Args:        bazelArgs,
			Executor:    c.executor,
		},
	}
	buildozer := &fixdeps.Buildozer{
		Buildozer: c.buildozer,
		Args:      buildozerArgs,
		Workspace: workspace,
		Dry:       c.dryRun,
		Executor:  c.executor,
		Out:       out,
	}
	for i, fname := range reports {
		ui.Default.Progress("fix %d/%d %s", i+1, len(reports), fname)
		report, err := analysis.LoadResult(fname)
		if err != nil {
			return err
		}
		err = fixdeps.Apply(ctx, report, fixes, resolver, buildozer)
		if err != nil {
			return fmt.Errorf("failed to fix %s: %w", report.Target, err)
		}
	}
	buildozer.Summary.Print(out)
	return nil
}

func (c *run) reports(ctx context.Context, workspace string, startupArgs, bazelArgs []string) ([]string, error) {
	dir := c.searchPath
	if dir == "" {
		spin := ui.Default.NewSpinner()
		spin.Start("finding bazel-bin")
		var err error
		dir, err = fixdeps.BazelBin(ctx, c.executor, workspace, c.useBazelInfo, startupArgs, bazelArgs)
		spin.Stop(err)
		if err != nil {
			return nil, err
		}
	}
	clog.Infof(ctx, "reports dir: %s", dir)
	if c.logFile != "" {
		return fixdeps.ReportsFromExecutionLog(c.logFile, dir)
	}
	return fixdeps.GatherReports(dir)
}
