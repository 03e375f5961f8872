// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	rpb "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	log "github.com/golang/glog"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.chromium.org/infra/build/dwyu/execute"
	"go.chromium.org/infra/build/dwyu/o11y/clog"
	"go.chromium.org/infra/build/dwyu/sync/semaphore"
)

// WorkerName is a name used for worker of the cmd in action result.
const WorkerName = "local"

// LocalExec implements execute.Executor interface that runs commands locally.
type LocalExec struct{}

// Run runs cmd with LocalExec.
func Run(ctx context.Context, cmd *execute.Cmd) error {
	return LocalExec{}.Run(ctx, cmd)
}

// Run runs a cmd.
// It returns *execute.ExitError if the cmd exits with non-zero code.
// stdout and stderr are available from cmd in either case.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	res, err := run(ctx, cmd)
	if err != nil {
		return err
	}
	cmd.StdoutWriter().Write(res.StdoutRaw)
	cmd.StderrWriter().Write(res.StderrRaw)
	cmd.SetActionResult(res)

	clog.Infof(ctx, "%s exit=%d stdout=%d stderr=%d in %s", cmd.Desc, res.ExitCode, len(res.StdoutRaw), len(res.StderrRaw), cmd.Duration())

	if res.ExitCode != 0 {
		return &execute.ExitError{ExitCode: int(res.ExitCode)}
	}
	return nil
}

var forkSema = semaphore.New("fork", runtime.NumCPU())

func run(ctx context.Context, cmd *execute.Cmd) (*rpb.ActionResult, error) {
	if len(cmd.Args) == 0 {
		return nil, fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	if len(cmd.Env) > 0 {
		c.Env = cmd.Env
	}
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	s := time.Now()

	err := forkSema.Do(ctx, func(ctx context.Context) error {
		return c.Start()
	})
	if err != nil {
		var eerr *exec.Error
		if errors.As(err, &eerr) {
			// executable not found etc.
			return nil, fmt.Errorf("failed to start %s: %w", cmd.Args[0], err)
		}
		return nil, err
	}
	err = c.Wait()
	log.V(1).Infof("%s %q %v", cmd.ID, cmd.Args, err)
	e := time.Now()

	result := &rpb.ActionResult{
		ExitCode:  exitCode(err),
		StdoutRaw: stdout.Bytes(),
		StderrRaw: stderr.Bytes(),
		ExecutionMetadata: &rpb.ExecutedActionMetadata{
			Worker:                      WorkerName,
			ExecutionStartTimestamp:     timestamppb.New(s),
			ExecutionCompletedTimestamp: timestamppb.New(e),
		},
	}
	if result.ExitCode != 0 {
		log.V(1).Infof("%s cmd: %q dir: %q error: %v", cmd.ID, cmd.Args, cmd.Dir, err)
	}
	return result, nil
}

func exitCode(err error) int32 {
	if err == nil {
		return 0
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 1
	}
	if w, ok := eerr.ProcessState.Sys().(syscall.WaitStatus); ok {
		return int32(w.ExitStatus())
	}
	return 1
}
