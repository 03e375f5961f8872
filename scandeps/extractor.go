// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"fmt"
	"strings"
)

// Mode is an include extraction mode.
type Mode int

const (
	// ModeFull runs the preprocessor.
	ModeFull Mode = iota + 1
	// ModeFast uses the line lexer.
	ModeFast
	// ModeSyntax uses the C++ parser.
	ModeSyntax
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeFast:
		return "fast"
	case ModeSyntax:
		return "syntax"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Set sets mode by name, for flag.Value.
func (m *Mode) Set(s string) error {
	switch strings.ToLower(s) {
	case "full":
		*m = ModeFull
	case "fast":
		*m = ModeFast
	case "syntax":
		*m = ModeSyntax
	default:
		return fmt.Errorf("unknown mode %q: want full, fast or syntax", s)
	}
	return nil
}

// NewExtractor returns the extractor for mode.
// opt is used only for ModeFull.
func NewExtractor(mode Mode, opt PreprocessOptions) (Extractor, error) {
	switch mode {
	case ModeFull:
		if opt.CC == "" {
			return nil, fmt.Errorf("full mode needs a preprocessor")
		}
		return PreprocessExtractor{Options: opt}, nil
	case ModeFast:
		return FastExtractor{}, nil
	case ModeSyntax:
		return SyntaxExtractor{}, nil
	}
	return nil, fmt.Errorf("no extraction mode: %v", mode)
}
