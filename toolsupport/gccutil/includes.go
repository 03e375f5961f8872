// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc compatible preprocessors.
package gccutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/dwyu/execute"
	"go.chromium.org/infra/build/dwyu/execute/localexec"
	"go.chromium.org/infra/build/dwyu/o11y/clog"
	"go.chromium.org/infra/build/dwyu/sync/semaphore"
)

// Semaphore limits concurrent preprocessor invocations.
var Semaphore = semaphore.New("preprocess", runtime.NumCPU())

// maxStubs bounds the preprocessor reruns for missing headers of a file.
const maxStubs = 64

// Includes runs the preprocessor for fname and returns include paths
// that fname itself includes, after macro expansion and `#if`
// evaluation.
//
// Missing headers do not stop the preprocessor: an empty stub is
// created in a temporary include dir for each of them and the
// preprocessor reruns, so the missing header is still reported and
// the rest of fname is preprocessed.  If the preprocessor fails for
// other reasons, e.g. `#error`, includes of its partial output are
// returned.
func Includes(ctx context.Context, cc string, p Params, fname string) ([]string, error) {
	s := time.Now()
	var stubDir string
	defer func() {
		if stubDir != "" {
			os.RemoveAll(stubDir)
		}
	}()
	for n := 0; ; n++ {
		cmd := execute.NewCmd("PREPROCESS "+fname, PreprocessArgs(cc, p, fname)...)
		err := Semaphore.Do(ctx, func(ctx context.Context) error {
			return localexec.Run(ctx, cmd)
		})
		var eerr *execute.ExitError
		switch {
		case err == nil:
			stdout := cmd.Stdout()
			includes := ParseIncludes(stdout)
			clog.Infof(ctx, "preprocess %s stdout:%d stubs:%d -> includes:%d: %s", fname, len(stdout), n, len(includes), time.Since(s))
			return includes, nil
		case !errors.As(err, &eerr):
			return nil, fmt.Errorf("failed to preprocess %s: %w", fname, err)
		}
		if missing, ok := missingHeader(cmd.Stderr()); ok && n < maxStubs {
			if stubDir == "" {
				stubDir, err = os.MkdirTemp("", "dwyu-stubs-")
				if err != nil {
					return nil, fmt.Errorf("failed to preprocess %s: %w", fname, err)
				}
				p.SystemIncludes = append(slices.Clip(p.SystemIncludes), stubDir)
			}
			err = writeStub(stubDir, missing)
			if err == nil {
				clog.Infof(ctx, "preprocess %s: stub for missing %s", fname, missing)
				continue
			}
			clog.Warningf(ctx, "preprocess %s: %v", fname, err)
		}
		stdout := cmd.Stdout()
		if len(bytes.TrimSpace(stdout)) == 0 {
			clog.Warningf(ctx, "failed to run %s: %v\n%s", cmd.Command(), eerr, cmd.Stderr())
			return nil, fmt.Errorf("failed to preprocess %s: %w\n%s", fname, eerr, cmd.Stderr())
		}
		clog.Warningf(ctx, "preprocess %s: %v, using partial output\n%s", fname, eerr, cmd.Stderr())
		return ParseIncludes(stdout), nil
	}
}

var missingHeaderRE = []*regexp.Regexp{
	// gcc
	regexp.MustCompile(`fatal error: (.+): No such file or directory`),
	// clang
	regexp.MustCompile(`fatal error: '(.+)' file not found`),
}

// missingHeader returns the include path of the missing header
// reported in the preprocessor's stderr.
func missingHeader(stderr []byte) (string, bool) {
	for _, re := range missingHeaderRE {
		m := re.FindSubmatch(stderr)
		if m != nil {
			return string(m[1]), true
		}
	}
	return "", false
}

// writeStub creates an empty header for the include path inc in dir.
func writeStub(dir, inc string) error {
	fname := filepath.Join(dir, inc)
	if filepath.IsAbs(inc) || !strings.HasPrefix(fname, dir+string(filepath.Separator)) {
		return fmt.Errorf("cannot stub missing header %q", inc)
	}
	if _, err := os.Stat(fname); err == nil {
		return fmt.Errorf("stub for %q did not resolve it", inc)
	}
	err := os.MkdirAll(filepath.Dir(fname), 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(fname, nil, 0644)
}

// ParseIncludes parses `-E -dI` output and returns include paths of
// the include directives in the main file, i.e. the file named by the
// first linemarker.  Directives in included files are skipped.
//
// gcc prints
//
//	# 1 "foo.cc"
//	#include "foo.h"
//	# 1 "foo.h" 1
//
// and clang prints
//
//	#include "foo.h" /* clang -E -dI */
func ParseIncludes(buf []byte) []string {
	var includes []string
	var mainFile, curFile string
	for len(buf) > 0 {
		var line []byte
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			line = buf
			buf = nil
		} else {
			line = buf[:i]
			buf = buf[i+1:]
		}
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(line) == 0 || line[0] != '#' {
			continue
		}
		if fname, ok := parseLinemarker(line[1:]); ok {
			if mainFile == "" {
				mainFile = fname
			}
			curFile = fname
			continue
		}
		if curFile == "" || curFile != mainFile {
			continue
		}
		rest, ok := bytes.CutPrefix(line[1:], []byte("include"))
		if !ok {
			continue
		}
		rest = bytes.TrimLeft(rest, " \t")
		if len(rest) == 0 {
			continue
		}
		var delim byte
		switch rest[0] {
		case '"':
			delim = '"'
		case '<':
			delim = '>'
		default:
			// `#include_next`
			continue
		}
		i = bytes.IndexByte(rest[1:], delim)
		if i < 0 {
			if log.V(1) {
				log.Infof("unclosed include %q", line)
			}
			continue
		}
		includes = append(includes, string(rest[1:i+1]))
	}
	return includes
}

// parseLinemarker parses `# linenum "filename" flags...` or
// `#line linenum "filename"` after `#`.
func parseLinemarker(line []byte) (string, bool) {
	line = bytes.TrimPrefix(line, []byte("line"))
	line = bytes.TrimLeft(line, " \t")
	if len(line) == 0 || line[0] < '0' || line[0] > '9' {
		return "", false
	}
	i := bytes.IndexAny(line, " \t")
	if i < 0 {
		return "", false
	}
	line = bytes.TrimLeft(line[i:], " \t")
	if len(line) == 0 || line[0] != '"' {
		return "", false
	}
	// find closing quote, skipping escaped chars.
	end := -1
	for j := 1; j < len(line); j++ {
		if line[j] == '\\' {
			j++
			continue
		}
		if line[j] == '"' {
			end = j
			break
		}
	}
	if end < 0 {
		return "", false
	}
	quoted := string(line[:end+1])
	fname, err := strconv.Unquote(quoted)
	if err != nil {
		return quoted[1 : len(quoted)-1], true
	}
	return fname, true
}
