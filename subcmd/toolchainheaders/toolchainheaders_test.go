// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchainheaders

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/dwyu/scandeps"
)

func setupDirs(t *testing.T) (cxx, sys string) {
	t.Helper()
	root := t.TempDir()
	cxx = filepath.Join(root, "c++")
	sys = filepath.Join(root, "include")
	for _, f := range []string{
		"c++/vector",
		"c++/bits/stl_vector.h",
		"c++/bits/no_ext",
		"c++/.hidden.h",
		"include/stdio.h",
		"include/sys/types.h",
		"include/README.txt",
	} {
		fname := filepath.Join(root, f)
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, nil, 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	return cxx, sys
}

var wantHeaders = []string{"bits/stl_vector.h", "stdio.h", "sys/types.h", "vector"}

func TestRun_IncludeDirectories(t *testing.T) {
	cxx, sys := setupDirs(t)
	output := filepath.Join(t.TempDir(), "toolchain_headers.json")
	c := &run{includeDirectories: []string{cxx, sys}, output: output}
	err := c.run(context.Background())
	if err != nil {
		t.Fatalf("run()=%v; want nil", err)
	}
	got, err := scandeps.LoadToolchainHeaders(output)
	if err != nil {
		t.Fatalf("LoadToolchainHeaders(%q)=%v", output, err)
	}
	if diff := cmp.Diff(wantHeaders, got); diff != "" {
		t.Errorf("headers diff -want +got:\n%s", diff)
	}
}

func TestRun_GccInfo(t *testing.T) {
	cxx, sys := setupDirs(t)
	dir := t.TempDir()
	info := filepath.Join(dir, "gcc_info.txt")
	err := os.WriteFile(info, []byte(`Using built-in specs.
ignoring nonexistent directory "/nonexistent"
#include "..." search starts here:
#include <...> search starts here:
 `+cxx+`
 `+sys+`
End of search list.
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "toolchain_headers.json")
	c := &run{gccInfo: info, output: output}
	err = c.run(context.Background())
	if err != nil {
		t.Fatalf("run()=%v; want nil", err)
	}
	got, err := scandeps.LoadToolchainHeaders(output)
	if err != nil {
		t.Fatalf("LoadToolchainHeaders(%q)=%v", output, err)
	}
	if diff := cmp.Diff(wantHeaders, got); diff != "" {
		t.Errorf("headers diff -want +got:\n%s", diff)
	}
}

func TestRun_Error(t *testing.T) {
	cxx, _ := setupDirs(t)
	dir := t.TempDir()
	noDirs := filepath.Join(dir, "nodirs.txt")
	err := os.WriteFile(noDirs, []byte("clang version 17\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.json")
	for _, tc := range []struct {
		name     string
		c        *run
		wantHelp bool
	}{
		{name: "no-output", c: &run{includeDirectories: []string{cxx}}, wantHelp: true},
		{name: "exclusive", c: &run{includeDirectories: []string{cxx}, gccInfo: noDirs, output: output}, wantHelp: true},
		{name: "no-dirs-in-info", c: &run{gccInfo: noDirs, output: output}},
		{name: "missing-info", c: &run{gccInfo: filepath.Join(dir, "missing.txt"), output: output}},
		{name: "missing-dir", c: &run{includeDirectories: []string{filepath.Join(dir, "missing")}, output: output}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.run(context.Background())
			if err == nil {
				t.Fatalf("run()=nil error; want error")
			}
			if got := errors.Is(err, flag.ErrHelp); got != tc.wantHelp {
				t.Errorf("run()=%v; errors.Is(err, flag.ErrHelp)=%t, want %t", err, got, tc.wantHelp)
			}
		})
	}
}
