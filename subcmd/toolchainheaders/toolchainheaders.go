// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package toolchainheaders provides toolchain_headers subcommand.
package toolchainheaders

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/dwyu/o11y/clog"
	"go.chromium.org/infra/build/dwyu/toolsupport/flagutil"
	"go.chromium.org/infra/build/dwyu/toolsupport/gccutil"
	"go.chromium.org/infra/build/dwyu/ui"
)

const usage = `list headers provided by the C/C++ toolchain

 $ dwyu toolchain_headers -output <json> [-cc <cc>]
 $ dwyu toolchain_headers -output <json> -include_directories <dirs>
 $ dwyu toolchain_headers -output <json> -gcc_like_include_paths_info <file>

It writes include paths of all headers below the builtin include
search dirs of the toolchain as JSON array. analyze ignores them,
instead of the standard library headers, with -toolchain_headers_info.

Search dirs are taken from -include_directories, from a file with
the output of "cc -E -x c++ -v /dev/null", or by running -cc.
`

// Cmd returns the Command for the `toolchain_headers` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "toolchain_headers <args>...",
		ShortDesc: "list headers provided by the toolchain",
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

	cc                 string
	includeDirectories flagutil.Strings
	gccInfo            string
	output             string
}

func (c *run) init() {
	c.Flags.StringVar(&c.cc, "cc", "cc", "gcc compatible compiler to ask for builtin include search dirs")
	c.Flags.Var(&c.includeDirectories, "include_directories", "include search dirs of the toolchain. comma separated, repeatable")
	c.Flags.StringVar(&c.gccInfo, "gcc_like_include_paths_info", "", "file with the verbose preprocessor output of the toolchain")
	c.Flags.StringVar(&c.output, "output", "", "json file to write headers to")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) searchDirs(ctx context.Context) ([]string, error) {
	switch {
	case len(c.includeDirectories) > 0 && c.gccInfo != "":
		return nil, fmt.Errorf("-include_directories and -gcc_like_include_paths_info are exclusive: %w", flag.ErrHelp)
	case len(c.includeDirectories) > 0:
		return c.includeDirectories, nil
	case c.gccInfo != "":
		buf, err := os.ReadFile(c.gccInfo)
		if err != nil {
			return nil, err
		}
		dirs := gccutil.ParseSearchDirs(buf)
		if len(dirs) == 0 {
			return nil, fmt.Errorf("no include search dirs in %s", c.gccInfo)
		}
		return dirs, nil
	}
	return gccutil.SearchDirs(ctx, c.cc)
}

func (c *run) run(ctx context.Context) error {
	if c.output == "" {
		return fmt.Errorf("missing -output: %w", flag.ErrHelp)
	}
	dirs, err := c.searchDirs(ctx)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "search dirs: %q", dirs)

	spin := ui.Default.NewSpinner()
	spin.Start("gathering toolchain headers")
	headers, err := gccutil.GatherHeaders(ctx, dirs)
	if err != nil {
		spin.Stop(err)
		return err
	}
	spin.Done("%d headers", len(headers))

	buf, err := json.MarshalIndent(headers, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.output, append(buf, '\n'), 0644)
}
