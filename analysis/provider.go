// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
)

// HeaderProvider is a module that provides headers, i.e. the module
// under inspection or one of its dependencies.
type HeaderProvider struct {
	// Name is the target label, e.g. "//foo:bar".
	Name string

	// HeaderFiles are header paths relative to the workspace.
	HeaderFiles []string

	// IncludePaths are paths as written in include directives,
	// if they differ from HeaderFiles, e.g. by strip_include_prefix
	// or virtual include dirs.
	IncludePaths []string
}

// LinkOnly reports whether the provider has no headers.
func (p HeaderProvider) LinkOnly() bool {
	return len(p.HeaderFiles) == 0
}

// Spellings returns include paths that refer to the provider's headers.
// They are IncludePaths, HeaderFiles, and HeaderFiles relative to
// searchDirs.  "" or "." in searchDirs means the workspace root.
func (p HeaderProvider) Spellings(searchDirs []string) []string {
	seen := make(map[string]bool)
	var spellings []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		spellings = append(spellings, s)
	}
	for _, s := range p.IncludePaths {
		add(s)
	}
	for _, h := range p.HeaderFiles {
		add(h)
	}
	for _, dir := range searchDirs {
		dir = strings.TrimSuffix(path.Clean(dir), "/")
		if dir == "." || dir == "" {
			continue
		}
		for _, h := range p.HeaderFiles {
			if rel, ok := strings.CutPrefix(h, dir+"/"); ok {
				add(rel)
			}
		}
	}
	return spellings
}

// targetInfo is the metadata of a module written by the build system.
type targetInfo struct {
	Target       string    `json:"target"`
	HeaderFiles  *[]string `json:"header_files"`
	IncludePaths []string  `json:"include_paths"`

	// Only for the module under inspection.
	Includes       []string `json:"includes"`
	QuoteIncludes  []string `json:"quote_includes"`
	SystemIncludes []string `json:"system_includes"`
	Defines        []string `json:"defines"`
}

func loadTargetInfo(fname string) (*targetInfo, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("failed to read target info: %w", err)
	}
	info := &targetInfo{}
	err = json.Unmarshal(buf, info)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target info %s: %w", fname, err)
	}
	if info.Target == "" {
		return nil, fmt.Errorf("no target in target info %s", fname)
	}
	if info.HeaderFiles == nil {
		return nil, fmt.Errorf("no header_files in target info %s", fname)
	}
	return info, nil
}

func (info *targetInfo) provider() HeaderProvider {
	return HeaderProvider{
		Name:         info.Target,
		HeaderFiles:  *info.HeaderFiles,
		IncludePaths: info.IncludePaths,
	}
}

// LoadProvider loads a HeaderProvider from a target info JSON file.
// The file must have "target" and "header_files".
func LoadProvider(fname string) (HeaderProvider, error) {
	info, err := loadTargetInfo(fname)
	if err != nil {
		return HeaderProvider{}, err
	}
	return info.provider(), nil
}
