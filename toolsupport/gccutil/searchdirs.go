// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/dwyu/execute"
	"go.chromium.org/infra/build/dwyu/execute/localexec"
	"go.chromium.org/infra/build/dwyu/o11y/clog"
)

// HeaderExtensions are file extensions of headers.
var HeaderExtensions = []string{".h", ".hh", ".hp", ".hpp", ".hxx", ".h++", ".tcc"}

// SearchDirs runs cc and returns its builtin include search dirs.
func SearchDirs(ctx context.Context, cc string) ([]string, error) {
	cmd := execute.NewCmd("SEARCHDIRS "+cc, SearchDirsArgs(cc)...)
	err := localexec.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w\n%s", cmd.Command(), err, cmd.Stderr())
	}
	dirs := ParseSearchDirs(cmd.Stderr())
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no include search dirs in output of %s:\n%s", cmd.Command(), cmd.Stderr())
	}
	clog.Infof(ctx, "search dirs of %s: %q", cc, dirs)
	return dirs, nil
}

// ParseSearchDirs parses the include search list in `cc -E -v` output.
//
//	#include "..." search starts here:
//	 /quote/dir
//	#include <...> search starts here:
//	 /usr/include
//	End of search list.
func ParseSearchDirs(buf []byte) []string {
	var dirs []string
	inSection := false
	for _, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		switch line {
		case `#include "..." search starts here:`, `#include <...> search starts here:`:
			inSection = true
			continue
		case "End of search list.":
			return dirs
		}
		if !inSection || line == "" {
			continue
		}
		// macOS prints " /path (framework directory)".
		line = strings.TrimSuffix(line, " (framework directory)")
		dirs = append(dirs, filepath.Clean(line))
	}
	return dirs
}

// GatherHeaders returns include paths of headers under dirs, i.e.
// header paths relative to the dir that has them.
// Headers are files with HeaderExtensions, or files without
// extension directly below a dir, e.g. `vector`.
// Symlinks are followed, as toolchains and sysroots are often
// symlink trees.  Hidden files are skipped.  Result is sorted and
// deduplicated.
func GatherHeaders(ctx context.Context, dirs []string) ([]string, error) {
	g := &headerGatherer{
		ctx:       ctx,
		ancestors: make(map[string]bool),
	}
	for _, dir := range dirs {
		err := g.walk(dir, "")
		if err != nil {
			return nil, fmt.Errorf("failed to gather headers in %s: %w", dir, err)
		}
	}
	slices.Sort(g.headers)
	return slices.Compact(g.headers), nil
}

type headerGatherer struct {
	ctx     context.Context
	headers []string

	// ancestors are real paths of dirs being walked, to stop at
	// symlink cycles.
	ancestors map[string]bool
}

// walk gathers headers in dir, whose include path is rel.
// Errors below the search dir are logged and skipped.
func (g *headerGatherer) walk(dir, rel string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		if g.ancestors[resolved] {
			if log.V(1) {
				clog.Infof(g.ctx, "skip symlink cycle %s -> %s", dir, resolved)
			}
			return nil
		}
		g.ancestors[resolved] = true
		defer delete(g.ancestors, resolved)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		if rel == "" {
			return err
		}
		if log.V(1) {
			clog.Infof(g.ctx, "skip %s: %v", dir, err)
		}
		return nil
	}
	for _, ent := range ents {
		name := ent.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		fname := filepath.Join(dir, name)
		inc := path.Join(rel, name)
		isDir := ent.IsDir()
		if ent.Type()&fs.ModeSymlink != 0 {
			fi, err := os.Stat(fname)
			if err != nil {
				if log.V(1) {
					clog.Infof(g.ctx, "skip %s: %v", fname, err)
				}
				continue
			}
			isDir = fi.IsDir()
		}
		if isDir {
			err := g.walk(fname, inc)
			if err != nil {
				return err
			}
			continue
		}
		if isHeader(inc) {
			g.headers = append(g.headers, inc)
		}
	}
	return nil
}

func isHeader(inc string) bool {
	ext := strings.ToLower(path.Ext(inc))
	if slices.Contains(HeaderExtensions, ext) {
		return true
	}
	return ext == "" && !strings.ContainsRune(inc, '/')
}
