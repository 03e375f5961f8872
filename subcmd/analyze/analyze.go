// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package analyze provides analyze subcommand.
package analyze

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	log "github.com/golang/glog"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/dwyu/analysis"
	"go.chromium.org/infra/build/dwyu/o11y/clog"
	"go.chromium.org/infra/build/dwyu/scandeps"
	"go.chromium.org/infra/build/dwyu/toolsupport/flagutil"
	"go.chromium.org/infra/build/dwyu/toolsupport/gccutil"
)

const usage = `analyze includes of a module against its dependencies

 $ dwyu analyze -target <label> -output <report> -target_info <json> \
     [-public_files <files>] [-private_files <files>] \
     [-deps <jsons>] [-implementation_deps <jsons>]

It checks that every include of the public and private files is
provided by a direct dependency or the module itself, and that every
dependency is used. The result is written to <report> as JSON.
On findings, it prints them and exits with 1.

<json> files describe a module:
  {"target": "//foo:bar", "header_files": ["foo/bar.h"], ...}
`

// Cmd returns the Command for the `analyze` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "analyze <args>...",
		ShortDesc: "analyze includes of a module",
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

	target                  string
	output                  string
	publicFiles             flagutil.Strings
	privateFiles            flagutil.Strings
	targetInfo              string
	deps                    flagutil.Strings
	implementationDeps      flagutil.Strings
	ignoredIncludesConfig   string
	toolchainHeadersInfo    string
	mode                    scandeps.Mode
	cc                      string
	optimizeImplementations bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.target, "target", "", "label of the module under inspection")
	c.Flags.StringVar(&c.output, "output", "", "report file to write")
	c.Flags.Var(&c.publicFiles, "public_files", "public files of the module. comma separated, repeatable")
	c.Flags.Var(&c.privateFiles, "private_files", "private files of the module. comma separated, repeatable")
	c.Flags.StringVar(&c.targetInfo, "target_info", "", "json file describing the module under inspection")
	c.Flags.Var(&c.deps, "deps", "json files describing modules in deps. comma separated, repeatable")
	c.Flags.Var(&c.implementationDeps, "implementation_deps", "json files describing modules in implementation_deps. comma separated, repeatable")
	c.Flags.StringVar(&c.ignoredIncludesConfig, "ignored_includes_config", "", "json or yaml file of include paths and patterns to ignore")
	c.Flags.StringVar(&c.toolchainHeadersInfo, "toolchain_headers_info", "", "json file of toolchain headers to ignore instead of the standard library headers")
	c.mode = scandeps.ModeFull
	c.Flags.Var(&c.mode, "mode", "include extraction mode: full (preprocessor), fast (line lexer) or syntax (C++ parser)")
	c.Flags.StringVar(&c.cc, "cc", "cc", "gcc compatible preprocessor for full mode")
	c.Flags.BoolVar(&c.optimizeImplementations, "optimize_implementation_deps", false, "report deps used only by private files")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	result, err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	if !result.OK() {
		fmt.Fprint(a.GetOut(), result)
	}
	return result.ExitCode()
}

func (c *run) run(ctx context.Context) (*analysis.Result, error) {
	switch {
	case c.target == "":
		return nil, fmt.Errorf("missing -target: %w", flag.ErrHelp)
	case c.output == "":
		return nil, fmt.Errorf("missing -output: %w", flag.ErrHelp)
	case c.targetInfo == "":
		return nil, fmt.Errorf("missing -target_info: %w", flag.ErrHelp)
	case len(c.publicFiles) == 0 && len(c.privateFiles) == 0:
		return nil, fmt.Errorf("need at least one of -public_files and -private_files: %w", flag.ErrHelp)
	}
	ctx = clog.WithLabels(ctx, map[string]string{"target": c.target})

	ignore, err := scandeps.LoadIgnoreRules(c.ignoredIncludesConfig, c.toolchainHeadersInfo)
	if err != nil {
		return nil, err
	}
	sui, err := analysis.LoadSystemUnderInspection(c.targetInfo, c.deps, c.implementationDeps)
	if err != nil {
		return nil, err
	}
	if sui.Target.Name != c.target {
		clog.Warningf(ctx, "target_info %s is for %s", c.targetInfo, sui.Target.Name)
	}
	ex, err := scandeps.NewExtractor(c.mode, scandeps.PreprocessOptions{
		CC: c.cc,
		Params: gccutil.Params{
			Defines:        sui.Defines,
			Includes:       sui.Includes,
			QuoteIncludes:  sui.QuoteIncludes,
			SystemIncludes: sui.SystemIncludes,
		},
	})
	if err != nil {
		return nil, err
	}
	public, err := scandeps.Collect(ctx, ex, c.publicFiles, ignore)
	if err != nil {
		return nil, err
	}
	private, err := scandeps.Collect(ctx, ex, c.privateFiles, ignore)
	if err != nil {
		return nil, err
	}
	result := analysis.Evaluate(public, private, sui, c.optimizeImplementations)
	result.Target = c.target
	result.Report = c.output
	err = result.WriteFile(c.output)
	if err != nil {
		return nil, err
	}
	if log.V(1) {
		clog.Infof(ctx, "result:\n%s", result)
	}
	return result, nil
}

