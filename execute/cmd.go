// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute runs external tools such as the preprocessor,
// bazel and buildozer.
package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	rpb "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/google/uuid"

	"go.chromium.org/infra/build/dwyu/toolsupport/shutil"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// Cmd includes all the information required to run an external tool.
type Cmd struct {
	// ID is used as a unique identifier for this cmd in logs.
	ID string

	// Desc is a short, human-readable identifier that is shown to the user.
	// Example: "PREPROCESS foo/bar.cc"
	Desc string

	// Args holds command line arguments.
	Args []string

	// Env specifies the environment of the process.
	// If empty, the process inherits the environment of dwyu.
	Env []string

	// Dir specifies the working directory of the cmd.
	Dir string

	stdoutWriter, stderrWriter io.Writer
	stdoutBuffer, stderrBuffer bytes.Buffer

	actionResult *rpb.ActionResult
}

// NewCmd creates a new cmd with a fresh ID.
func NewCmd(desc string, args ...string) *Cmd {
	return &Cmd{
		ID:   uuid.New().String(),
		Desc: desc,
		Args: args,
	}
}

// String returns an ID of the cmd.
func (c *Cmd) String() string {
	return c.ID
}

// Command returns a command line string.
func (c *Cmd) Command() string {
	return shutil.Join(c.Args)
}

// SetStdoutWriter sets w for stdout.
func (c *Cmd) SetStdoutWriter(w io.Writer) {
	c.stdoutWriter = w
}

// SetStderrWriter sets w for stderr.
func (c *Cmd) SetStderrWriter(w io.Writer) {
	c.stderrWriter = w
}

// StdoutWriter returns a writer set for stdout.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdoutBuffer.Reset()
	if c.stdoutWriter == nil {
		return &c.stdoutBuffer
	}
	return io.MultiWriter(c.stdoutWriter, &c.stdoutBuffer)
}

// StderrWriter returns a writer set for stderr.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderrBuffer.Reset()
	if c.stderrWriter == nil {
		return &c.stderrBuffer
	}
	return io.MultiWriter(c.stderrWriter, &c.stderrBuffer)
}

// Stdout returns stdout output of the cmd.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns stderr output of the cmd.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// SetActionResult sets action result to the cmd.
func (c *Cmd) SetActionResult(result *rpb.ActionResult) {
	c.actionResult = result
}

// ActionResult returns the action result of the cmd.
func (c *Cmd) ActionResult() *rpb.ActionResult {
	return c.actionResult
}

// ExitCode returns exit code of the cmd, or -1 if it has not run.
func (c *Cmd) ExitCode() int {
	if c.actionResult == nil {
		return -1
	}
	return int(c.actionResult.GetExitCode())
}

// Duration returns wall time of the cmd execution.
func (c *Cmd) Duration() time.Duration {
	md := c.actionResult.GetExecutionMetadata()
	if md == nil {
		return 0
	}
	s := md.GetExecutionStartTimestamp().AsTime()
	e := md.GetExecutionCompletedTimestamp().AsTime()
	return e.Sub(s)
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}
