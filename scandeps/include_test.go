// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeExtractor map[string][]string

func (fakeExtractor) Name() string { return "fake" }

func (f fakeExtractor) Includes(ctx context.Context, fname string) ([]string, error) {
	paths, ok := f[fname]
	if !ok {
		return nil, errors.New("not found")
	}
	return paths, nil
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	ex := fakeExtractor{
		"foo/foo.cc": {"foo/foo.h", "vector", "bar/bar.h", "foo/foo.h", "third_party/x/y.h"},
		"foo/foo.h":  {"bar/bar.h", "string"},
		"foo/util.h": {},
	}
	ignore, err := NewIgnoreRules([]string{"vector", "string"}, []string{"third_party/"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Collect(ctx, ex, []string{"foo/foo.h", "foo/foo.cc", "foo/util.h"}, ignore)
	if err != nil {
		t.Fatalf("Collect(...)=%v, %v; want nil error", got, err)
	}
	want := []Include{
		{File: "foo/foo.cc", Path: "bar/bar.h"},
		{File: "foo/foo.cc", Path: "foo/foo.h"},
		{File: "foo/foo.h", Path: "bar/bar.h"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect(...) diff -want +got:\n%s", diff)
	}
}

func TestCollect_NoIgnore(t *testing.T) {
	ctx := context.Background()
	ex := fakeExtractor{
		"a.cc": {"vector", "a.h"},
	}
	got, err := Collect(ctx, ex, []string{"a.cc"}, nil)
	if err != nil {
		t.Fatalf("Collect(...)=%v, %v; want nil error", got, err)
	}
	want := []Include{
		{File: "a.cc", Path: "a.h"},
		{File: "a.cc", Path: "vector"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect(...) diff -want +got:\n%s", diff)
	}
}

func TestCollect_Error(t *testing.T) {
	ctx := context.Background()
	ex := fakeExtractor{
		"a.cc": {"a.h"},
	}
	got, err := Collect(ctx, ex, []string{"a.cc", "missing.cc"}, nil)
	if err == nil {
		t.Errorf("Collect(...)=%v, nil; want error", got)
	}
}

func TestCollect_Empty(t *testing.T) {
	ctx := context.Background()
	got, err := Collect(ctx, fakeExtractor{}, nil, nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Collect(ctx, ex, nil, nil)=%v, %v; want nil, nil", got, err)
	}
}

func TestInclude_String(t *testing.T) {
	inc := Include{File: "foo", Path: "bar"}
	if got, want := inc.String(), "File='foo', include='bar'"; got != want {
		t.Errorf("String()=%q; want %q", got, want)
	}
}
