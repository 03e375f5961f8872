// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package analysis

import "fmt"

// SystemUnderInspection is the module under inspection and its
// dependencies.
type SystemUnderInspection struct {
	// Target is the module under inspection.
	Target HeaderProvider

	// Deps are dependencies visible to downstream modules.
	Deps []HeaderProvider

	// ImplDeps are dependencies visible only to the module.
	ImplDeps []HeaderProvider

	// Include dirs of the module, relative to the workspace.
	Includes       []string
	QuoteIncludes  []string
	SystemIncludes []string

	// Defines are macro definitions of the module, e.g. "FOO=1".
	Defines []string
}

// SearchDirs returns all include dirs of the module.
func (s *SystemUnderInspection) SearchDirs() []string {
	dirs := make([]string, 0, len(s.QuoteIncludes)+len(s.Includes)+len(s.SystemIncludes))
	dirs = append(dirs, s.QuoteIncludes...)
	dirs = append(dirs, s.Includes...)
	dirs = append(dirs, s.SystemIncludes...)
	return dirs
}

// LoadSystemUnderInspection loads the target info of the module and
// of its deps and implementation deps.
// Any missing or malformed file is an error.
func LoadSystemUnderInspection(target string, deps, implDeps []string) (*SystemUnderInspection, error) {
	info, err := loadTargetInfo(target)
	if err != nil {
		return nil, err
	}
	sui := &SystemUnderInspection{
		Target:         info.provider(),
		Includes:       info.Includes,
		QuoteIncludes:  info.QuoteIncludes,
		SystemIncludes: info.SystemIncludes,
		Defines:        info.Defines,
	}
	sui.Deps, err = loadProviders(deps)
	if err != nil {
		return nil, fmt.Errorf("deps of %s: %w", sui.Target.Name, err)
	}
	sui.ImplDeps, err = loadProviders(implDeps)
	if err != nil {
		return nil, fmt.Errorf("implementation_deps of %s: %w", sui.Target.Name, err)
	}
	return sui, nil
}

func loadProviders(fnames []string) ([]HeaderProvider, error) {
	var providers []HeaderProvider
	for _, fname := range fnames {
		p, err := LoadProvider(fname)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}
