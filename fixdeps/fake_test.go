// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fixdeps

import (
	"context"

	rpb "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"

	"go.chromium.org/infra/build/dwyu/execute"
)

type fakeResult struct {
	stdout, stderr string
	exitCode       int
	err            error
}

// fakeExecutor records cmds and returns results in order.
// The last result is reused when results run out.
type fakeExecutor struct {
	results []fakeResult
	cmds    []*execute.Cmd
}

func (f *fakeExecutor) Run(ctx context.Context, cmd *execute.Cmd) error {
	f.cmds = append(f.cmds, cmd)
	var r fakeResult
	if len(f.results) > 0 {
		r = f.results[0]
		if len(f.results) > 1 {
			f.results = f.results[1:]
		}
	}
	if r.err != nil {
		return r.err
	}
	cmd.StdoutWriter().Write([]byte(r.stdout))
	cmd.StderrWriter().Write([]byte(r.stderr))
	cmd.SetActionResult(&rpb.ActionResult{ExitCode: int32(r.exitCode)})
	if r.exitCode != 0 {
		return &execute.ExitError{ExitCode: r.exitCode}
	}
	return nil
}

func (f *fakeExecutor) args() [][]string {
	var args [][]string
	for _, c := range f.cmds {
		args = append(args, c.Args)
	}
	return args
}
