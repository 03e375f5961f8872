// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fixdeps

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/dwyu/analysis"
	"go.chromium.org/infra/build/dwyu/scandeps"
)

type recordingPatcher struct {
	tasks []string
	err   error
}

func (p *recordingPatcher) Execute(ctx context.Context, task, target string) error {
	p.tasks = append(p.tasks, target+": "+task)
	return p.err
}

func testReport(useImplDeps bool) *analysis.Result {
	return &analysis.Result{
		Target: "//self:lib",
		InvalidPublicIncludes: []scandeps.Include{
			{File: "self/lib.h", Path: "foo/foo.h"},
		},
		InvalidPrivateIncludes: []scandeps.Include{
			{File: "self/lib.cc", Path: "foo/foo.h"},
			{File: "self/lib.cc", Path: "bar/bar.h"},
			{File: "self/lib.cc", Path: "unknown.h"},
		},
		UnusedPublicDeps:      []string{"//unused:a", "//unused:b"},
		UnusedPrivateDeps:     []string{"//unused:impl"},
		ShouldBePrivateDeps:   []string{"//private:dep"},
		UseImplementationDeps: useImplDeps,
	}
}

func TestApply(t *testing.T) {
	candidates := []Candidate{
		{Target: "//foo", Headers: []string{"foo/foo.h"}},
		{Target: "//bar", Headers: []string{"bar/bar.h"}},
	}
	all := RequestedFixes{RemoveUnused: true, MoveToImpl: true, AddMissing: true}
	for _, tc := range []struct {
		name        string
		fixes       RequestedFixes
		useImplDeps bool
		want        []string
	}{
		{
			name:        "all-impl-deps",
			fixes:       all,
			useImplDeps: true,
			want: []string{
				"//self:lib: remove deps //unused:a //unused:b",
				"//self:lib: remove implementation_deps //unused:impl",
				"//self:lib: move deps implementation_deps //private:dep",
				"//self:lib: add deps //foo",
				"//self:lib: add implementation_deps //bar",
			},
		},
		{
			name:  "all-deps",
			fixes: all,
			want: []string{
				"//self:lib: remove deps //unused:a //unused:b",
				"//self:lib: remove implementation_deps //unused:impl",
				"//self:lib: move deps implementation_deps //private:dep",
				"//self:lib: add deps //foo //bar",
			},
		},
		{
			name:  "unused-only",
			fixes: RequestedFixes{RemoveUnused: true},
			want: []string{
				"//self:lib: remove deps //unused:a //unused:b",
				"//self:lib: remove implementation_deps //unused:impl",
			},
		},
		{
			name:  "private-only",
			fixes: RequestedFixes{MoveToImpl: true},
			want: []string{
				"//self:lib: move deps implementation_deps //private:dep",
			},
		},
		{
			name:        "missing-only",
			fixes:       RequestedFixes{AddMissing: true},
			useImplDeps: true,
			want: []string{
				"//self:lib: add deps //foo",
				"//self:lib: add implementation_deps //bar",
			},
		},
		{
			name: "none",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQuerier{candidates: candidates}
			p := &recordingPatcher{}
			err := Apply(context.Background(), testReport(tc.useImplDeps), tc.fixes, &Resolver{Query: q}, p)
			if err != nil {
				t.Fatalf("Apply(...)=%v; want nil", err)
			}
			if diff := cmp.Diff(tc.want, p.tasks); diff != "" {
				t.Errorf("Apply(...) tasks diff -want +got:\n%s", diff)
			}
			var wantQueries []string
			if tc.fixes.AddMissing {
				wantQueries = []string{"//self:lib"}
			}
			if diff := cmp.Diff(wantQueries, q.queries); diff != "" {
				t.Errorf("Apply(...) queries diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestApply_Clean(t *testing.T) {
	q := &fakeQuerier{}
	p := &recordingPatcher{}
	err := Apply(context.Background(), &analysis.Result{Target: "//ok"}, RequestedFixes{RemoveUnused: true, MoveToImpl: true, AddMissing: true}, &Resolver{Query: q}, p)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.tasks) != 0 || len(q.queries) != 0 {
		t.Errorf("tasks=%q queries=%q; want none", p.tasks, q.queries)
	}
}

func TestApply_Error(t *testing.T) {
	p := &recordingPatcher{err: ErrUnexpectedStatus}
	err := Apply(context.Background(), testReport(false), RequestedFixes{RemoveUnused: true, MoveToImpl: true}, &Resolver{Query: &fakeQuerier{}}, p)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Apply(...)=%v; want %v", err, ErrUnexpectedStatus)
	}
	if len(p.tasks) != 1 {
		t.Errorf("tasks=%q; want stop after first failure", p.tasks)
	}

	errQuery := errors.New("query failed")
	err = Apply(context.Background(), testReport(false), RequestedFixes{AddMissing: true}, &Resolver{Query: &fakeQuerier{err: errQuery}}, &recordingPatcher{})
	if !errors.Is(err, errQuery) {
		t.Errorf("Apply(...)=%v; want %v", err, errQuery)
	}
}

func TestApply_Buildozer(t *testing.T) {
	ex := &fakeExecutor{results: []fakeResult{{exitCode: 0}, {exitCode: 3}}}
	b := &Buildozer{Executor: ex}
	err := Apply(context.Background(), testReport(false), RequestedFixes{RemoveUnused: true}, nil, b)
	if err != nil {
		t.Fatal(err)
	}
	want := Summary{
		Succeeded: []string{"buildozer 'remove deps //unused:a //unused:b' //self:lib"},
		NoEffect:  []string{"buildozer 'remove implementation_deps //unused:impl' //self:lib"},
	}
	if diff := cmp.Diff(want, b.Summary); diff != "" {
		t.Errorf("summary diff -want +got:\n%s", diff)
	}
}
