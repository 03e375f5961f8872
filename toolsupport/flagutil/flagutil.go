// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package flagutil provides flag values for command line tools.
package flagutil

import "strings"

// Strings is a flag value of a list of strings.
// It can be given multiple times, and each value is split by comma.
type Strings []string

func (s *Strings) String() string {
	return strings.Join(*s, ",")
}

// Set appends comma separated values in v.
// Empty values are dropped.
func (s *Strings) Set(v string) error {
	for _, e := range strings.Split(v, ",") {
		if e == "" {
			continue
		}
		*s = append(*s, e)
	}
	return nil
}
