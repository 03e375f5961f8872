// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"context"
	"time"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/dwyu/o11y/clog"
)

// FastExtractor extracts includes with a line lexer.
// It doesn't evaluate `#if` or `#ifdef`, so it reports includes
// in disabled branches too.
type FastExtractor struct{}

// Name returns "fast".
func (FastExtractor) Name() string { return "fast" }

// Includes returns include paths in fname.
func (FastExtractor) Includes(ctx context.Context, fname string) ([]string, error) {
	buf, err := readFile(fname)
	if err != nil {
		return nil, err
	}
	return ScanIncludes(ctx, fname, buf)
}

// ScanIncludes scans `#include "path"` and `#include <path>` in buf.
//
// A directive is recognized only if whitespace or block comments
// precede `#` on the line.  `//` comments out the rest of the line.
// `/*` may be opened several times, but the first `*/` closes all
// of them.  Only the first include on a line is recognized.
// Include paths are returned as is, e.g. `../foo.h` is not cleaned.
func ScanIncludes(ctx context.Context, fname string, buf []byte) ([]string, error) {
	started := time.Now()

	var includes []string
	inBlockComment := false
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

		directiveAllowed := true
		for len(line) > 0 {
			if inBlockComment {
				i := bytes.Index(line, []byte("*/"))
				if i < 0 {
					line = nil
					break
				}
				line = line[i+2:]
				inBlockComment = false
				continue
			}
			switch {
			case line[0] == ' ' || line[0] == '\t' || line[0] == '\f' || line[0] == '\v':
				line = line[1:]
			case bytes.HasPrefix(line, []byte("/*")):
				inBlockComment = true
				line = line[2:]
			case bytes.HasPrefix(line, []byte("//")):
				line = nil
			case line[0] == '#' && directiveAllowed:
				directiveAllowed = false
				var path []byte
				var ok bool
				path, line, ok = parseInclude(line[1:])
				if !ok {
					if log.V(3) {
						clog.Infof(ctx, "skip directive in %s", fname)
					}
					continue
				}
				if log.V(1) {
					clog.Infof(ctx, "include %q in %s", path, fname)
				}
				includes = append(includes, string(path))
			default:
				// not a directive line, but still track comments
				// in the rest of the line.
				directiveAllowed = false
				line = line[1:]
			}
		}
	}
	dur := time.Since(started)
	if dur > time.Second {
		clog.Infof(ctx, "slow scan %s %s", fname, dur)
	}
	return includes, nil
}

// parseInclude parses an include directive after `#`.
// It returns the include path, the rest of the line after the closing
// delimiter, and whether it is an include directive.
// If it isn't, rest is the line after `#`.
func parseInclude(line []byte) (path, rest []byte, ok bool) {
	s := bytes.TrimLeft(line, " \t")
	if !bytes.HasPrefix(s, []byte("include")) {
		return nil, line, false
	}
	s = s[len("include"):]
	t := bytes.TrimLeft(s, " \t")
	if len(t) == 0 {
		return nil, line, false
	}
	var delim byte
	switch t[0] {
	case '"':
		delim = '"'
	case '<':
		delim = '>'
	default:
		// `#include_next`, `#includes` or `#include FOO_H`.
		return nil, line, false
	}
	i := bytes.IndexByte(t[1:], delim)
	if i < 0 {
		// unclosed path?
		return nil, line, false
	}
	return t[1 : i+1], t[i+2:], true
}
