// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package analysis

import (
	"fmt"
	"path"
	"slices"

	"go.chromium.org/infra/build/dwyu/scandeps"
)

// dep is a dependency in scope of the evaluation.
// Its index in evaluator.deps identifies it for usage tracking.
type dep struct {
	provider  *HeaderProvider
	impl      bool
	spellings map[string]bool
}

type evaluator struct {
	deps  []dep
	usage []Usage

	ownSpellings map[string]bool
	ownHeaders   map[string]bool
}

func newEvaluator(sui *SystemUnderInspection) *evaluator {
	searchDirs := sui.SearchDirs()
	toSet := func(ss []string) map[string]bool {
		m := make(map[string]bool, len(ss))
		for _, s := range ss {
			m[s] = true
		}
		return m
	}
	e := &evaluator{
		ownSpellings: toSet(sui.Target.Spellings(searchDirs)),
		ownHeaders:   make(map[string]bool),
	}
	for _, h := range sui.Target.HeaderFiles {
		e.ownHeaders[path.Clean(h)] = true
	}
	for i := range sui.Deps {
		e.deps = append(e.deps, dep{
			provider:  &sui.Deps[i],
			spellings: toSet(sui.Deps[i].Spellings(searchDirs)),
		})
	}
	for i := range sui.ImplDeps {
		e.deps = append(e.deps, dep{
			provider:  &sui.ImplDeps[i],
			impl:      true,
			spellings: toSet(sui.ImplDeps[i].Spellings(searchDirs)),
		})
	}
	e.usage = make([]Usage, len(e.deps))
	return e
}

func (e *evaluator) mark(i int, u Usage) {
	var err error
	e.usage[i], err = Merge(e.usage[i], u)
	if err != nil {
		panic(fmt.Sprintf("usage of %s: %v", e.deps[i].provider.Name, err))
	}
}

// check returns includes that are not provided by deps in scope,
// by the module itself, nor by relative path to the module's headers.
// private includes may use implementation deps.
func (e *evaluator) check(includes []scandeps.Include, u Usage) []scandeps.Include {
	var invalid []scandeps.Include
	for _, inc := range includes {
		matched := false
		for i, d := range e.deps {
			if d.impl && u != UsagePrivate {
				continue
			}
			if d.spellings[inc.Path] {
				// a header may be provided by multiple deps.
				matched = true
				e.mark(i, u)
			}
		}
		if matched {
			continue
		}
		if e.ownSpellings[inc.Path] {
			continue
		}
		if e.ownHeaders[path.Join(path.Dir(inc.File), inc.Path)] {
			continue
		}
		invalid = append(invalid, inc)
	}
	return invalid
}

// Evaluate evaluates public and private includes of the module in sui.
//
// Public includes may use headers of deps, private includes may use
// headers of deps and implementation deps.  Deps without headers are
// never reported as unused.  If ensurePrivateDeps is true, deps used
// only by private includes are reported as should be private.
func Evaluate(public, private []scandeps.Include, sui *SystemUnderInspection, ensurePrivateDeps bool) *Result {
	e := newEvaluator(sui)
	r := &Result{
		Target:                 sui.Target.Name,
		UseImplementationDeps:  ensurePrivateDeps,
		InvalidPublicIncludes:  e.check(public, UsagePublic),
		InvalidPrivateIncludes: e.check(private, UsagePrivate),
	}
	for i, d := range e.deps {
		switch {
		case d.provider.LinkOnly():
		case !e.usage[i].Used() && d.impl:
			r.UnusedPrivateDeps = append(r.UnusedPrivateDeps, d.provider.Name)
		case !e.usage[i].Used():
			r.UnusedPublicDeps = append(r.UnusedPublicDeps, d.provider.Name)
		case ensurePrivateDeps && !d.impl && e.usage[i] == UsagePrivate:
			r.ShouldBePrivateDeps = append(r.ShouldBePrivateDeps, d.provider.Name)
		}
	}
	r.UnusedPublicDeps = sortedUniq(r.UnusedPublicDeps)
	r.UnusedPrivateDeps = sortedUniq(r.UnusedPrivateDeps)
	r.ShouldBePrivateDeps = sortedUniq(r.ShouldBePrivateDeps)
	return r
}

func sortedUniq(s []string) []string {
	slices.Sort(s)
	return slices.Compact(s)
}
