// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps extracts include directives from C/C++ sources.
//
// It only reports the following forms of #include
//
//	#include "foo.h"
//	#include <foo.h>
//
// as the include path without delimiters, i.e. `foo.h`.
//
// There are three extractors with different trade-offs, and callers
// must pick one explicitly.
//
//   - full: runs a real preprocessor (`cc -E -dI`) with the module's
//     defines and include dirs.  It drops disabled `#if` branches and
//     expands `#include FOO_H` macros, but needs compilable code.
//   - fast: a line lexer over raw source.  It honors comments, but
//     doesn't process `#if` or `#ifdef`, so it may over-report.
//   - syntax: parses the source with tree-sitter's C++ grammar.
//     Comments, strings and line continuations are exact, and `#if 0`
//     groups are pruned, but other conditionals are not evaluated.
//
// All extractors feed Collect, which filters ignored includes and
// deduplicates them.
package scandeps
