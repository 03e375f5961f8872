// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"

	"go.chromium.org/infra/build/dwyu/toolsupport/gccutil"
)

// PreprocessOptions are options for the full mode extractor.
type PreprocessOptions struct {
	// CC is a gcc compatible compiler driver, e.g. "cc" or "clang".
	CC string

	gccutil.Params
}

// PreprocessExtractor extracts includes by running the preprocessor.
// Includes in disabled branches are dropped, and includes by macro
// are reported with the expanded path.
// Missing headers are reported as includes too.
type PreprocessExtractor struct {
	Options PreprocessOptions
}

// Name returns "full".
func (PreprocessExtractor) Name() string { return "full" }

// Includes returns include paths in fname.
func (e PreprocessExtractor) Includes(ctx context.Context, fname string) ([]string, error) {
	return gccutil.Includes(ctx, e.Options.CC, e.Options.Params, fname)
}
