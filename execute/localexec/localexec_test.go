// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package localexec

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"go.chromium.org/infra/build/dwyu/execute"
)

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
	ctx := context.Background()

	for _, tc := range []struct {
		name       string
		script     string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "success",
			script:     "echo out; echo err >&2",
			wantExit:   0,
			wantStdout: "out\n",
			wantStderr: "err\n",
		},
		{
			name:       "no-op",
			script:     "echo fixed; exit 3",
			wantExit:   3,
			wantStdout: "fixed\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmd := execute.NewCmd(tc.name, "sh", "-c", tc.script)
			cmd.Dir = t.TempDir()
			err := Run(ctx, cmd)
			if tc.wantExit == 0 && err != nil {
				t.Errorf("Run(%q)=%v; want nil", cmd.Command(), err)
			}
			if tc.wantExit != 0 {
				var eerr *execute.ExitError
				if !errors.As(err, &eerr) || eerr.ExitCode != tc.wantExit {
					t.Errorf("Run(%q)=%v; want exit=%d", cmd.Command(), err, tc.wantExit)
				}
			}
			if got := cmd.ExitCode(); got != tc.wantExit {
				t.Errorf("ExitCode()=%d; want %d", got, tc.wantExit)
			}
			if got := string(cmd.Stdout()); got != tc.wantStdout {
				t.Errorf("Stdout()=%q; want %q", got, tc.wantStdout)
			}
			if got := string(cmd.Stderr()); got != tc.wantStderr {
				t.Errorf("Stderr()=%q; want %q", got, tc.wantStderr)
			}
			if got := cmd.ActionResult().GetExecutionMetadata().GetWorker(); got != WorkerName {
				t.Errorf("worker=%q; want %q", got, WorkerName)
			}
		})
	}
}

func TestRun_NotFound(t *testing.T) {
	ctx := context.Background()
	cmd := execute.NewCmd("missing", "dwyu-no-such-command-for-test")
	err := Run(ctx, cmd)
	if err == nil {
		t.Fatalf("Run(%q)=nil; want error", cmd.Command())
	}
	var eerr *execute.ExitError
	if errors.As(err, &eerr) {
		t.Errorf("Run(%q)=%v; want start error, not exit error", cmd.Command(), err)
	}
}

func TestRun_NoArgs(t *testing.T) {
	ctx := context.Background()
	cmd := &execute.Cmd{ID: "empty"}
	if err := Run(ctx, cmd); err == nil {
		t.Errorf("Run(empty)=nil; want error")
	}
}
