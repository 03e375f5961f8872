// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package analyze

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.chromium.org/infra/build/dwyu/analysis"
	"go.chromium.org/infra/build/dwyu/scandeps"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	fname := filepath.Join(dir, name)
	err := os.MkdirAll(filepath.Dir(fname), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(fname, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return fname
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "self/lib.h", `#pragma once
#include "foo/foo.h"
#include <vector>
#include "vendor/ignored.h"
`)
	writeFile(t, dir, "self/lib.cc", `#include "self/lib.h"
#include "bar/bar.h"
#include "missing/missing.h"
// #include "commented/out.h"
`)
	targetInfo := writeFile(t, dir, "info/self.json", `{"target": "//self:lib", "header_files": ["self/lib.h"]}`)
	foo := writeFile(t, dir, "info/foo.json", `{"target": "//foo", "header_files": ["foo/foo.h"]}`)
	bar := writeFile(t, dir, "info/bar.json", `{"target": "//bar", "header_files": ["bar/bar.h"]}`)
	unused := writeFile(t, dir, "info/unused.json", `{"target": "//unused", "header_files": ["unused/unused.h"]}`)
	config := writeFile(t, dir, "ignore.yaml", "extra_ignore_include_paths:\n  - vendor/ignored.h\n")
	output := filepath.Join(dir, "self_dwyu_report.json")

	c := &run{
		target:                  "//self:lib",
		output:                  output,
		publicFiles:             []string{"self/lib.h"},
		privateFiles:            []string{"self/lib.cc"},
		targetInfo:              targetInfo,
		deps:                    []string{foo, bar, unused},
		ignoredIncludesConfig:   config,
		mode:                    scandeps.ModeFast,
		optimizeImplementations: true,
	}
	got, err := c.run(context.Background())
	if err != nil {
		t.Fatalf("run()=%v; want nil error", err)
	}
	want := &analysis.Result{
		Target:                 "//self:lib",
		InvalidPrivateIncludes: []scandeps.Include{{File: "self/lib.cc", Path: "missing/missing.h"}},
		UnusedPublicDeps:       []string{"//unused"},
		ShouldBePrivateDeps:    []string{"//bar"},
		UseImplementationDeps:  true,
		Report:                 output,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("run() diff -want +got:\n%s", diff)
	}
	if got.ExitCode() != 1 {
		t.Errorf("ExitCode()=%d; want 1", got.ExitCode())
	}
	report, err := analysis.LoadResult(output)
	if err != nil {
		t.Fatalf("LoadResult(%q)=%v", output, err)
	}
	if diff := cmp.Diff(want, report, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("report diff -want +got:\n%s", diff)
	}
}

func TestRun_Clean(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "self/lib.h", "#include <string>\n#include \"foo/foo.h\"\n")
	targetInfo := writeFile(t, dir, "self.json", `{"target": "//self:lib", "header_files": ["self/lib.h"]}`)
	foo := writeFile(t, dir, "foo.json", `{"target": "//foo", "header_files": ["foo/foo.h"]}`)
	output := filepath.Join(dir, "out", "self_dwyu_report.json")
	err := os.MkdirAll(filepath.Dir(output), 0755)
	if err != nil {
		t.Fatal(err)
	}
	for _, mode := range []scandeps.Mode{scandeps.ModeFast, scandeps.ModeSyntax} {
		c := &run{
			target:      "//self:lib",
			output:      output,
			publicFiles: []string{"self/lib.h"},
			targetInfo:  targetInfo,
			deps:        []string{foo},
			mode:        mode,
		}
		got, err := c.run(context.Background())
		if err != nil {
			t.Fatalf("run() mode=%v: %v", mode, err)
		}
		if !got.OK() {
			t.Errorf("run() mode=%v OK()=false; want true\n%s", mode, got)
		}
		if _, err := os.Stat(output); err != nil {
			t.Errorf("report mode=%v: %v", mode, err)
		}
	}
}

func TestRun_Error(t *testing.T) {
	dir := t.TempDir()
	targetInfo := writeFile(t, dir, "self.json", `{"target": "//self:lib", "header_files": []}`)
	base := run{
		target:      "//self:lib",
		output:      filepath.Join(dir, "report.json"),
		publicFiles: []string{filepath.Join(dir, "missing.h")},
		targetInfo:  targetInfo,
		mode:        scandeps.ModeFast,
	}
	for _, tc := range []struct {
		name     string
		modify   func(c *run)
		wantHelp bool
	}{
		{name: "no-target", modify: func(c *run) { c.target = "" }, wantHelp: true},
		{name: "no-output", modify: func(c *run) { c.output = "" }, wantHelp: true},
		{name: "no-target-info", modify: func(c *run) { c.targetInfo = "" }, wantHelp: true},
		{name: "no-files", modify: func(c *run) { c.publicFiles = nil }, wantHelp: true},
		{name: "missing-file", modify: func(c *run) {}},
		{name: "missing-dep", modify: func(c *run) { c.deps = []string{filepath.Join(dir, "nodep.json")} }},
		{name: "bad-config", modify: func(c *run) { c.ignoredIncludesConfig = filepath.Join(dir, "noconfig.json") }},
		{name: "full-without-cc", modify: func(c *run) { c.mode = scandeps.ModeFull }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.modify(&c)
			_, err := c.run(context.Background())
			if err == nil {
				t.Fatalf("run()=nil error; want error")
			}
			if got := errors.Is(err, flag.ErrHelp); got != tc.wantHelp {
				t.Errorf("run()=%v; errors.Is(err, flag.ErrHelp)=%t, want %t", err, got, tc.wantHelp)
			}
		})
	}
}
