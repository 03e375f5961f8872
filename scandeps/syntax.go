// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"fmt"
	"strings"

	log "github.com/golang/glog"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"go.chromium.org/infra/build/dwyu/o11y/clog"
)

// SyntaxExtractor extracts includes with tree-sitter's C++ grammar.
// It prunes `#if 0` groups, but doesn't evaluate other conditionals.
type SyntaxExtractor struct{}

// Name returns "syntax".
func (SyntaxExtractor) Name() string { return "syntax" }

// Includes returns include paths in fname.
func (SyntaxExtractor) Includes(ctx context.Context, fname string) ([]string, error) {
	buf, err := readFile(fname)
	if err != nil {
		return nil, err
	}
	return ParseIncludes(ctx, fname, buf)
}

// ParseIncludes parses buf as C++ and returns include paths of
// `#include` directives, except ones in `#if 0` groups.
func ParseIncludes(ctx context.Context, fname string, buf []byte) ([]string, error) {
	// parser is not safe for concurrent use.
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fname, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", fname)
	}
	defer tree.Close()
	root := tree.RootNode()
	if root.HasError() {
		if log.V(1) {
			clog.Infof(ctx, "syntax error in %s", fname)
		}
	}
	var includes []string
	walkIncludes(root, buf, func(path string) {
		includes = append(includes, path)
	})
	return includes, nil
}

func walkIncludes(n *sitter.Node, buf []byte, f func(string)) {
	switch n.Type() {
	case "comment", "string_literal", "raw_string_literal":
		return
	case "preproc_include":
		p := n.ChildByFieldName("path")
		if p == nil {
			return
		}
		switch p.Type() {
		case "string_literal", "system_lib_string":
			s := p.Content(buf)
			if len(s) >= 2 {
				f(s[1 : len(s)-1])
			}
		}
		// `#include FOO_H` is not supported.
		return
	case "preproc_if", "preproc_elif":
		if isFalse(n.ChildByFieldName("condition"), buf) {
			if alt := n.ChildByFieldName("alternative"); alt != nil {
				walkIncludes(alt, buf, f)
			}
			return
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkIncludes(n.Child(i), buf, f)
	}
}

// isFalse reports whether cond is literally `0`.
func isFalse(cond *sitter.Node, buf []byte) bool {
	if cond == nil {
		return false
	}
	if cond.Type() == "parenthesized_expression" && cond.NamedChildCount() == 1 {
		cond = cond.NamedChild(0)
	}
	return cond.Type() == "number_literal" && strings.TrimSpace(cond.Content(buf)) == "0"
}
