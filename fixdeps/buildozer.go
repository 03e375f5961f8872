// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fixdeps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.chromium.org/infra/build/dwyu/execute"
	"go.chromium.org/infra/build/dwyu/execute/localexec"
	"go.chromium.org/infra/build/dwyu/o11y/clog"
)

// ErrUnexpectedStatus is returned when buildozer exits with a status
// other than success, failure or no-op.
var ErrUnexpectedStatus = errors.New("unexpected buildozer exit status")

// Patcher edits BUILD files.
type Patcher interface {
	Execute(ctx context.Context, task, target string) error
}

// Buildozer edits BUILD files by buildozer.
type Buildozer struct {
	// Buildozer is the buildozer binary. "buildozer" if empty.
	Buildozer string

	// Args are extra buildozer args.
	Args []string

	// Workspace is the directory buildozer runs in.
	Workspace string

	// Dry prints the modified BUILD files to stdout instead of
	// modifying them.
	Dry bool

	// Out receives buildozer output of dry runs. os.Stdout if nil.
	Out io.Writer

	// Executor runs buildozer. localexec if nil.
	Executor execute.Executor

	// Summary records buildozer commands.
	Summary Summary
}

// buildozer exit codes.
// https://github.com/bazelbuild/buildtools/tree/master/buildozer#error-code
const (
	buildozerSuccess  = 0
	buildozerFailure  = 2
	buildozerNoEffect = 3
)

// Command returns command line args to run task on target.
func (b *Buildozer) Command(task, target string) []string {
	bin := b.Buildozer
	if bin == "" {
		bin = "buildozer"
	}
	cmd := []string{bin}
	cmd = append(cmd, b.Args...)
	if b.Dry {
		cmd = append(cmd, "-stdout")
	}
	return append(cmd, task, target)
}

// Execute runs buildozer task on target and records the status in
// the summary.
// Failed or ineffective commands are not errors.
func (b *Buildozer) Execute(ctx context.Context, task, target string) error {
	cmd := execute.NewCmd("BUILDOZER "+target, b.Command(task, target)...)
	cmd.Dir = b.Workspace
	var ex execute.Executor = localexec.LocalExec{}
	if b.Executor != nil {
		ex = b.Executor
	}
	err := ex.Run(ctx, cmd)
	var eerr *execute.ExitError
	if err != nil && !errors.As(err, &eerr) {
		return fmt.Errorf("failed to run %s: %w", cmd.Command(), err)
	}
	command := cmd.Command()
	if b.Dry {
		out := b.Out
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintf(out, "%s\n%s", command, cmd.Stdout())
	}
	clog.Infof(ctx, "buildozer %q on %s: exit=%d", task, target, cmd.ExitCode())
	switch cmd.ExitCode() {
	case buildozerSuccess:
		b.Summary.Succeeded = append(b.Summary.Succeeded, command)
	case buildozerFailure:
		b.Summary.Failed = append(b.Summary.Failed, command)
	case buildozerNoEffect:
		b.Summary.NoEffect = append(b.Summary.NoEffect, command)
	default:
		return fmt.Errorf("%w %d for %s\n%s", ErrUnexpectedStatus, cmd.ExitCode(), command, cmd.Stderr())
	}
	return nil
}
