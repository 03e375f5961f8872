// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

// Params are preprocessor params of a module.
type Params struct {
	// Defines are macro definitions, e.g. "FOO" or "FOO=1".
	Defines []string

	// Includes are include dirs for both `""` and `<>` (`-I`).
	Includes []string

	// QuoteIncludes are include dirs only for `""` (`-iquote`).
	QuoteIncludes []string

	// SystemIncludes are system include dirs (`-isystem`).
	SystemIncludes []string
}

// SearchDirs returns all include dirs in search order of `#include ""`.
func (p Params) SearchDirs() []string {
	dirs := make([]string, 0, len(p.QuoteIncludes)+len(p.Includes)+len(p.SystemIncludes))
	dirs = append(dirs, p.QuoteIncludes...)
	dirs = append(dirs, p.Includes...)
	dirs = append(dirs, p.SystemIncludes...)
	return dirs
}

// PreprocessArgs returns command line args to preprocess fname with cc,
// printing include directives (`-dI`).
// Warnings are disabled (`-w`), since headers are preprocessed as
// main file too, e.g. `#pragma once in main file`.
func PreprocessArgs(cc string, p Params, fname string) []string {
	args := []string{cc, "-E", "-dI", "-w"}
	for _, d := range p.Defines {
		args = append(args, "-D"+d)
	}
	for _, dir := range p.QuoteIncludes {
		args = append(args, "-iquote", dir)
	}
	for _, dir := range p.Includes {
		args = append(args, "-I"+dir)
	}
	for _, dir := range p.SystemIncludes {
		args = append(args, "-isystem", dir)
	}
	args = append(args, fname)
	return args
}

// SearchDirsArgs returns command line args to print the include
// search dirs of cc for C++ on stderr.
func SearchDirsArgs(cc string) []string {
	return []string{cc, "-E", "-x", "c++", "-v", "/dev/null"}
}
