// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fixdeps resolves and applies fixes for analysis reports.
package fixdeps

import (
	"context"
	"fmt"
	"path"
	"slices"
	"sort"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/dwyu/o11y/clog"
	"go.chromium.org/infra/build/dwyu/ui"
)

// Candidate is a module in the transitive dependencies of a target,
// with the include paths of its headers.
type Candidate struct {
	Target  string
	Headers []string
}

// Querier queries the transitive (not direct) dependencies of a target.
type Querier interface {
	TransitiveDeps(ctx context.Context, target string) ([]Candidate, error)
}

// Resolver finds dependencies for include paths that are not
// provided by the direct dependencies of a target.
type Resolver struct {
	Query Querier
}

// Resolve returns the dependencies to add to target for the invalid
// public and private includes, given as include paths keyed by file.
// Transitive deps of target are queried at most once.
// Includes without unique provider are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, target string, public, private map[string][]string) (publicDeps, privateDeps []string, err error) {
	if len(public) == 0 && len(private) == 0 {
		return nil, nil, nil
	}
	candidates, err := r.Query.TransitiveDeps(ctx, target)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query deps of %s: %w", target, err)
	}
	log.V(1).Infof("%s: %d candidates", target, len(candidates))
	return resolve(ctx, target, public, candidates), resolve(ctx, target, private, candidates), nil
}

// resolve returns the providers of invalid among candidates,
// deduplicated in first seen order of files sorted by name.
func resolve(ctx context.Context, target string, invalid map[string][]string, candidates []Candidate) []string {
	files := make([]string, 0, len(invalid))
	for f := range invalid {
		files = append(files, f)
	}
	sort.Strings(files)

	var deps []string
	seen := make(map[string]bool)
	for _, f := range files {
		for _, inc := range invalid[f] {
			dep, ok := match(ctx, target, inc, candidates)
			if !ok || seen[dep] {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}
	}
	return deps
}

func match(ctx context.Context, target, inc string, candidates []Candidate) (string, bool) {
	exact := providers(candidates, func(hdr string) bool { return hdr == inc })
	switch {
	case len(exact) == 1:
		return exact[0], true
	case len(exact) > 1:
		warnf(ctx, "Found multiple targets providing invalid include path '%s' of target '%s'. Cannot determine correct dependency. Discovered potential dependencies are: %q.", inc, target, exact)
		return "", false
	}

	// include path manipulation can change the directory,
	// but never the file name.
	base := path.Base(inc)
	byName := providers(candidates, func(hdr string) bool { return path.Base(hdr) == base })
	switch {
	case len(byName) == 1:
		return byName[0], true
	case len(byName) > 1:
		warnf(ctx, "Found multiple targets providing file '%s' from invalid include '%s' of target '%s'. Matching the full include path did not work. Cannot determine correct dependency. Discovered potential dependencies are: %q.", base, inc, target, byName)
		return "", false
	}
	warnf(ctx, "Could not find a proper dependency for invalid include path '%s' of target '%s'. Is the header file maybe wrongly part of the 'srcs' attribute instead of 'hdrs' in the library which should provide the header? Or is this include resolved through the toolchain instead of through a dependency?", inc, target)
	return "", false
}

func warnf(ctx context.Context, format string, args ...any) {
	clog.Warningf(ctx, format, args...)
	ui.Default.Warningf(format, args...)
}

func providers(candidates []Candidate, pred func(string) bool) []string {
	var targets []string
	for _, c := range candidates {
		if slices.ContainsFunc(c.Headers, pred) && !slices.Contains(targets, c.Target) {
			targets = append(targets, c.Target)
		}
	}
	return targets
}
