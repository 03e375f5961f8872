// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fixdeps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.chromium.org/infra/build/dwyu/analysis"
	"go.chromium.org/infra/build/dwyu/execute"
	"go.chromium.org/infra/build/dwyu/execute/localexec"
)

// ErrNoReports is returned when no report is found.
var ErrNoReports = errors.New("did not find any DWYU report files. Did you forget to run DWYU beforehand? Maybe the wrong output directory was searched, see `dwyu help fix`")

// ReportAnchor is the prefix of the report line printed by analyze.
const ReportAnchor = "DWYU Report: "

// GatherReports returns report files under searchDir.
func GatherReports(searchDir string) ([]string, error) {
	var reports []string
	err := filepath.WalkDir(searchDir, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), analysis.ReportSuffix) {
			reports = append(reports, fname)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to gather reports in %s: %w", searchDir, err)
	}
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	return reports, nil
}

// ReportsFromExecutionLog returns report files mentioned in the log of
// a build which ran analyze, mapped below binDir.
func ReportsFromExecutionLog(logFile, binDir string) ([]string, error) {
	f, err := os.Open(logFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sep := string(filepath.Separator) + "bin" + string(filepath.Separator)
	var reports []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if !strings.HasPrefix(line, ReportAnchor) {
			continue
		}
		report := strings.TrimSpace(strings.TrimPrefix(line, ReportAnchor))
		_, rel, ok := strings.Cut(report, sep)
		if !ok {
			return nil, fmt.Errorf("report %q in %s is not in bin dir", report, logFile)
		}
		reports = append(reports, filepath.Join(binDir, rel))
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", logFile, err)
	}
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	return reports, nil
}

// BazelBin returns the bazel output dir of the workspace.
// It uses `bazel info bazel-bin` if useInfo is true, or follows the
// bazel-bin convenience symlink.
func BazelBin(ctx context.Context, ex execute.Executor, workspace string, useInfo bool, startupArgs, args []string) (string, error) {
	if !useInfo {
		link := filepath.Join(workspace, "bazel-bin")
		dir, err := filepath.EvalSymlinks(link)
		if err != nil {
			return "", fmt.Errorf("convenience symlink %s does not exist: %w", link, err)
		}
		return dir, nil
	}
	cmdArgs := []string{"bazel"}
	cmdArgs = append(cmdArgs, startupArgs...)
	cmdArgs = append(cmdArgs, "info")
	cmdArgs = append(cmdArgs, args...)
	cmdArgs = append(cmdArgs, "bazel-bin")
	cmd := execute.NewCmd("INFO bazel-bin", cmdArgs...)
	cmd.Dir = workspace
	if ex == nil {
		ex = localexec.LocalExec{}
	}
	err := ex.Run(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w\n%s", cmd.Command(), err, cmd.Stderr())
	}
	return strings.TrimSpace(string(cmd.Stdout())), nil
}
