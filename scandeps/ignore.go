// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// IgnoreRules decides which include paths are not analyzed.
type IgnoreRules struct {
	// Paths are include paths to ignore exactly.
	Paths map[string]bool

	// Patterns are regexps matched at the start of include paths.
	Patterns []*regexp.Regexp
}

// NewIgnoreRules creates IgnoreRules from paths and patterns.
// Patterns only need to match a prefix of the include path, e.g.
// `foo/.*` ignores "foo/bar.h", but `bar.h` doesn't ignore "foo/bar.h".
func NewIgnoreRules(paths, patterns []string) (*IgnoreRules, error) {
	r := &IgnoreRules{
		Paths: make(map[string]bool, len(paths)),
	}
	for _, p := range paths {
		r.Paths[p] = true
	}
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("bad ignore pattern %q: %w", p, err)
		}
		r.Patterns = append(r.Patterns, re)
	}
	return r, nil
}

// Ignored reports whether the include path is ignored.
func (r *IgnoreRules) Ignored(path string) bool {
	if r == nil {
		return false
	}
	if r.Paths[path] {
		return true
	}
	for _, re := range r.Patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// IgnoreConfig is the user config for ignored includes.
// nil fields are not set in the config file.
type IgnoreConfig struct {
	// IgnoreIncludePaths replaces the default ignored paths.
	IgnoreIncludePaths []string `json:"ignore_include_paths" yaml:"ignore_include_paths"`

	// ExtraIgnoreIncludePaths are added to the active ignored paths.
	ExtraIgnoreIncludePaths []string `json:"extra_ignore_include_paths" yaml:"extra_ignore_include_paths"`

	// IgnoreIncludePatterns replaces the default (empty) patterns.
	IgnoreIncludePatterns []string `json:"ignore_include_patterns" yaml:"ignore_include_patterns"`
}

// LoadIgnoreConfig loads IgnoreConfig from fname.
// It reads YAML for `.yaml` or `.yml` files, and JSON otherwise.
func LoadIgnoreConfig(fname string) (*IgnoreConfig, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	cfg := &IgnoreConfig{}
	switch filepath.Ext(fname) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, cfg)
	default:
		err = json.Unmarshal(buf, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse ignore config %s: %w", fname, err)
	}
	return cfg, nil
}

// LoadToolchainHeaders loads a JSON array of header paths,
// as written by `dwyu toolchain_headers`.
func LoadToolchainHeaders(fname string) ([]string, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	var headers []string
	err = json.Unmarshal(buf, &headers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse toolchain headers %s: %w", fname, err)
	}
	return headers, nil
}

// Rules composes ignore rules from the config on top of base paths.
func (c *IgnoreConfig) Rules(base []string) (*IgnoreRules, error) {
	paths := base
	var patterns []string
	if c != nil {
		if c.IgnoreIncludePaths != nil {
			paths = c.IgnoreIncludePaths
		}
		paths = append(slices.Clip(paths), c.ExtraIgnoreIncludePaths...)
		if c.IgnoreIncludePatterns != nil {
			patterns = c.IgnoreIncludePatterns
		}
	}
	return NewIgnoreRules(paths, patterns)
}

// LoadIgnoreRules loads ignore rules.
// Base paths are the headers in toolchainHeadersFile if given, or
// StdHeaders otherwise.  The config in configFile, if given, is
// applied on top of them.
func LoadIgnoreRules(configFile, toolchainHeadersFile string) (*IgnoreRules, error) {
	base := StdHeaders()
	if toolchainHeadersFile != "" {
		var err error
		base, err = LoadToolchainHeaders(toolchainHeadersFile)
		if err != nil {
			return nil, err
		}
	}
	var cfg *IgnoreConfig
	if configFile != "" {
		var err error
		cfg, err = LoadIgnoreConfig(configFile)
		if err != nil {
			return nil, err
		}
	}
	return cfg.Rules(base)
}
