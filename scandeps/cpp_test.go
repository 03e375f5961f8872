// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/dwyu/o11y/iometrics"
)

func TestScanIncludes(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		buf  string
		want []string
	}{
		{
			name: "empty",
			buf:  "",
		},
		{
			name: "no-includes",
			buf:  "Some unrelated\nstuff here\n",
		},
		{
			name: "helloworld",
			buf: `
#include <stdio.h>

int main(int arg, char *argv[]) {
  printf("hello, world\n");
}
`,
			want: []string{"stdio.h"},
		},
		{
			name: "forms",
			buf: `#include "foo.h"
  #include<some/path.h>
#include     <no_extension>
#  include "spaced.h"
	#include "tab.h"
`,
			want: []string{"foo.h", "some/path.h", "no_extension", "spaced.h", "tab.h"},
		},
		{
			name: "unrelated-directives",
			buf: `#ifdef "foo.h"
#incclude "bar.h"
#include_next <baz.h>
#include FOO_H
#include "unclosed.h
#define X "x.h"
`,
		},
		{
			name: "line-comments",
			buf: `// #include <foo.h>
//#include "bar.h"
#include <foo.h> // #include <bar.h>
`,
			want: []string{"foo.h"},
		},
		{
			name: "block-comments",
			buf: `/*
#include <foo.h>
#include "bar.h"
*\
`,
		},
		{
			name: "block-comments-in-line",
			buf:  "/*#include <foo.h>*/ #include <bar.h> /*#include <foobar.h>*/\n",
			want: []string{"bar.h"},
		},
		{
			name: "any-close-closes-all",
			buf:  "/* /* /* #include <foo.h>*/ #include <bar.h>\n",
			want: []string{"bar.h"},
		},
		{
			name: "block-open-in-line-comment",
			buf:  "// /*\n#include <foo.h>\n",
			want: []string{"foo.h"},
		},
		{
			name: "block-comment-after-include",
			buf: `#include "a.h" /* starts
#include "b.h"
*/ #include "c.h"
#include "d.h"
`,
			want: []string{"a.h", "c.h", "d.h"},
		},
		{
			name: "code-before-hash",
			buf:  "int x; #include \"foo.h\"\n",
		},
		{
			name: "code-opens-block-comment",
			buf: `int x; /*
#include "foo.h"
*/
#include "bar.h"
`,
			want: []string{"bar.h"},
		},
		{
			name: "one-per-line",
			buf:  "#include \"a.h\" #include \"b.h\"\n",
			want: []string{"a.h"},
		},
		{
			name: "relative-kept",
			buf:  "#include \"../sibling/foo.h\"\n#include \"./bar.h\"\n",
			want: []string{"../sibling/foo.h", "./bar.h"},
		},
		{
			name: "no-ifdef-evaluation",
			buf: `#ifdef FOO
#include "has_foo.h"
#else
#include "no_foo.h"
#endif
`,
			want: []string{"has_foo.h", "no_foo.h"},
		},
		{
			name: "crlf",
			buf:  "#include \"foo.h\"\r\n#include <bar.h>\r\n",
			want: []string{"foo.h", "bar.h"},
		},
		{
			name: "no-trailing-newline",
			buf:  "#include \"foo.h\"",
			want: []string{"foo.h"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScanIncludes(ctx, tc.name, []byte(tc.buf))
			if err != nil {
				t.Fatalf("ScanIncludes(ctx, %q, buf)=%q, %v; want nil error", tc.name, got, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ScanIncludes(ctx, %q, buf) diff -want +got:\n%s", tc.name, diff)
			}
		})
	}
}

func TestFastExtractor(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fname := filepath.Join(dir, "foo.cc")
	content := "#include \"foo.h\"\n// #include \"bar.h\"\n"
	err := os.WriteFile(fname, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}
	prev := Metrics.Stats()
	ex := FastExtractor{}
	got, err := ex.Includes(ctx, fname)
	if err != nil {
		t.Fatalf("Includes(ctx, %q)=%q, %v; want nil error", fname, got, err)
	}
	if diff := cmp.Diff([]string{"foo.h"}, got); diff != "" {
		t.Errorf("Includes(ctx, %q) diff -want +got:\n%s", fname, diff)
	}

	_, err = ex.Includes(ctx, filepath.Join(dir, "missing.cc"))
	if err == nil {
		t.Errorf("Includes(ctx, missing.cc)=nil error; want error")
	}

	stats := Metrics.Stats().Sub(prev)
	wantStats := iometrics.Stats{ROps: 2, RBytes: int64(len(content)), RErrs: 1}
	if stats != wantStats {
		t.Errorf("Metrics.Stats().Sub(prev)=%v; want %v", stats, wantStats)
	}
}
