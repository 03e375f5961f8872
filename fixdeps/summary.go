// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fixdeps

import (
	"fmt"
	"io"
)

// Summary records buildozer commands by their result.
type Summary struct {
	Succeeded []string
	Failed    []string
	NoEffect  []string
}

// Print prints the summary to w.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\nSuccessful fixes: %d\n", len(s.Succeeded))
	if len(s.Failed) > 0 {
		fmt.Fprintf(w, "\nWARNING: %d buildozer commands failed:\n", len(s.Failed))
		for _, c := range s.Failed {
			fmt.Fprintf(w, "  %s\n", c)
		}
		fmt.Fprint(w, `Common causes:
- The workspace changed since the reports were generated. Rerun DWYU and then the fixes.
- The target is created by a macro. buildozer cannot edit the target, fix it manually.
`)
	}
	if len(s.NoEffect) > 0 {
		fmt.Fprintf(w, "\nWARNING: %d buildozer commands had no effect:\n", len(s.NoEffect))
		for _, c := range s.NoEffect {
			fmt.Fprintf(w, "  %s\n", c)
		}
		fmt.Fprint(w, `Common causes:
- The fixes were applied multiple times on the same reports.
- The target is an alias. buildozer only edits the actual target.
`)
	}
}
