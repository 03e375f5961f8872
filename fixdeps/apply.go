// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fixdeps

import (
	"context"
	"slices"
	"strings"

	"go.chromium.org/infra/build/dwyu/analysis"
	"go.chromium.org/infra/build/dwyu/o11y/clog"
)

// RequestedFixes selects the fixes to apply.
type RequestedFixes struct {
	// RemoveUnused removes unused deps and implementation deps.
	RemoveUnused bool

	// MoveToImpl moves deps used only privately to implementation deps.
	MoveToImpl bool

	// AddMissing adds deps providing invalid includes.
	AddMissing bool
}

// Any returns true if any fix is requested.
func (f RequestedFixes) Any() bool {
	return f.RemoveUnused || f.MoveToImpl || f.AddMissing
}

// Apply applies the requested fixes for the report by patcher.
func Apply(ctx context.Context, report *analysis.Result, fixes RequestedFixes, resolver *Resolver, patcher Patcher) error {
	target := report.Target
	ctx = clog.WithLabels(ctx, map[string]string{"target": target})
	run := func(task string, deps []string) error {
		if len(deps) == 0 {
			return nil
		}
		return patcher.Execute(ctx, task+" "+strings.Join(deps, " "), target)
	}

	if fixes.RemoveUnused {
		err := run("remove deps", report.UnusedPublicDeps)
		if err != nil {
			return err
		}
		err = run("remove implementation_deps", report.UnusedPrivateDeps)
		if err != nil {
			return err
		}
	}
	if fixes.MoveToImpl {
		err := run("move deps implementation_deps", report.ShouldBePrivateDeps)
		if err != nil {
			return err
		}
	}
	if !fixes.AddMissing {
		return nil
	}
	public, private, err := resolver.Resolve(ctx, target, report.InvalidIncludesByFile(false), report.InvalidIncludesByFile(true))
	if err != nil {
		return err
	}
	deps := public
	var implDeps []string
	for _, dep := range private {
		switch {
		case slices.Contains(deps, dep):
		case report.UseImplementationDeps:
			if !slices.Contains(implDeps, dep) {
				implDeps = append(implDeps, dep)
			}
		default:
			deps = append(deps, dep)
		}
	}
	err = run("add deps", deps)
	if err != nil {
		return err
	}
	return run("add implementation_deps", implDeps)
}
