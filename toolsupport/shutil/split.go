// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"fmt"
	"strings"
)

// Split splits a command line string, such as the value of `-bazel_args`,
// into arguments with POSIX shell quoting rules.
// Single quotes preserve everything literally, double quotes allow
// backslash escapes of `"`, `\`, `$` and "`".
// It returns error for unterminated quotes, a trailing backslash, or
// unquoted shell operators, since the args are never passed to a shell.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	inArg := false
	for i := 0; i < len(cmdline); i++ {
		ch := cmdline[i]
		switch ch {
		case ' ', '\t', '\n':
			if inArg {
				args = append(args, sb.String())
				sb.Reset()
				inArg = false
			}
		case '\\':
			if i+1 >= len(cmdline) {
				return nil, fmt.Errorf("failed to split %q: trailing backslash", cmdline)
			}
			i++
			sb.WriteByte(cmdline[i])
			inArg = true
		case '\'':
			j := strings.IndexByte(cmdline[i+1:], '\'')
			if j < 0 {
				return nil, fmt.Errorf("failed to split %q: unterminated single quote", cmdline)
			}
			sb.WriteString(cmdline[i+1 : i+1+j])
			i += j + 1
			inArg = true
		case '"':
			closed := false
			for i++; i < len(cmdline); i++ {
				c := cmdline[i]
				if c == '"' {
					closed = true
					break
				}
				if c == '\\' && i+1 < len(cmdline) {
					switch cmdline[i+1] {
					case '"', '\\', '$', '`':
						i++
						c = cmdline[i]
					}
				}
				sb.WriteByte(c)
			}
			if !closed {
				return nil, fmt.Errorf("failed to split %q: unterminated double quote", cmdline)
			}
			inArg = true
		case ';', '&', '|', '<', '>', '`':
			return nil, fmt.Errorf("failed to split %q: contains shell metachar %c", cmdline, ch)
		default:
			sb.WriteByte(ch)
			inArg = true
		}
	}
	if inArg {
		args = append(args, sb.String())
	}
	return args, nil
}
