// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"

	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/dwyu/o11y/clog"
	"go.chromium.org/infra/build/dwyu/o11y/iometrics"
)

// Metrics counts source files read by the extractors.
var Metrics = iometrics.New("scandeps")

func readFile(fname string) ([]byte, error) {
	buf, err := os.ReadFile(fname)
	Metrics.ReadDone(len(buf), err)
	return buf, err
}

// Include is one include directive in a source file.
type Include struct {
	// File is the source file that has the include directive.
	File string
	// Path is the include path without `""` or `<>`.
	Path string
}

func (i Include) String() string {
	return fmt.Sprintf("File='%s', include='%s'", i.File, i.Path)
}

// Compare compares includes by file, then by path.
func (i Include) Compare(j Include) int {
	if c := cmp.Compare(i.File, j.File); c != 0 {
		return c
	}
	return cmp.Compare(i.Path, j.Path)
}

// Extractor extracts include paths of a source file.
type Extractor interface {
	// Name returns the name of the extraction mode.
	Name() string

	// Includes returns include paths of fname, without delimiters,
	// in the order they appear.
	Includes(ctx context.Context, fname string) ([]string, error)
}

// Collect extracts includes of files with ex, drops ignored ones and
// deduplicates them.  Result is sorted by file, then by path.
// A nil ignore doesn't ignore anything.
func Collect(ctx context.Context, ex Extractor, files []string, ignore *IgnoreRules) ([]Include, error) {
	if len(files) == 0 {
		return nil, nil
	}
	started := time.Now()
	prev := Metrics.Stats()
	var mu sync.Mutex
	seen := make(map[Include]bool)
	var ignored int

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for _, fname := range files {
		eg.Go(func() error {
			paths, err := ex.Includes(ctx, fname)
			if err != nil {
				return fmt.Errorf("failed to extract includes of %s in %s mode: %w", fname, ex.Name(), err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, p := range paths {
				if ignore.Ignored(p) {
					ignored++
					if log.V(1) {
						clog.Infof(ctx, "ignore %s in %s", p, fname)
					}
					continue
				}
				seen[Include{File: fname, Path: p}] = true
			}
			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}
	includes := make([]Include, 0, len(seen))
	for inc := range seen {
		includes = append(includes, inc)
	}
	slices.SortFunc(includes, Include.Compare)
	clog.Infof(ctx, "%s: %d files -> %d includes (%d ignored) in %s %s: %s", ex.Name(), len(files), len(includes), ignored, time.Since(started), Metrics.Name(), Metrics.Stats().Sub(prev))
	return includes, nil
}
