// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `help` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>]",
		ShortDesc: "prints help about a command",
		LongDesc: `Prints commands and logging flags, or help about a specific command.

A typical session runs "analyze" from the bazel aspect for every cc target,
then "fix" on the resulting reports from the workspace.`,
		CommandRun: func() subcommands.CommandRun {
			return &run{}
		},
	}
}

type run struct {
	subcommands.CommandRunBase
}

func (*run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) > 0 {
		return subcommands.CmdHelp.CommandRun().Run(a, args, env)
	}
	out := a.GetOut()
	subcommands.Usage(out, a, false)
	fmt.Fprintln(out, "Logging flags accepted by all commands (before the command name):")
	flag.CommandLine.SetOutput(out)
	flag.PrintDefaults()
	return 0
}
