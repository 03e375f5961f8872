// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.chromium.org/infra/build/dwyu/scandeps"
)

// ReportSuffix is the file name suffix of reports.
const ReportSuffix = "_dwyu_report.json"

// Result is the findings of a module.
type Result struct {
	// Target is the label of the analyzed module.
	Target string

	// InvalidPublicIncludes are includes in public files
	// not provided by any dependency.
	InvalidPublicIncludes []scandeps.Include

	// InvalidPrivateIncludes are includes in private files
	// not provided by any dependency.
	InvalidPrivateIncludes []scandeps.Include

	// UnusedPublicDeps are unused deps.
	UnusedPublicDeps []string

	// UnusedPrivateDeps are unused implementation deps.
	UnusedPrivateDeps []string

	// ShouldBePrivateDeps are deps used only by private files.
	ShouldBePrivateDeps []string

	// UseImplementationDeps is true if ShouldBePrivateDeps were checked.
	UseImplementationDeps bool

	// Report is the report file shown in String.  Not serialized.
	Report string
}

// OK reports whether there are no findings.
func (r *Result) OK() bool {
	return len(r.InvalidPublicIncludes) == 0 &&
		len(r.InvalidPrivateIncludes) == 0 &&
		len(r.UnusedPublicDeps) == 0 &&
		len(r.UnusedPrivateDeps) == 0 &&
		len(r.ShouldBePrivateDeps) == 0
}

// ExitCode returns the exit code of the analysis.
func (r *Result) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// InvalidIncludesByFile returns invalid include paths keyed by file,
// for public or private includes.
func (r *Result) InvalidIncludesByFile(private bool) map[string][]string {
	includes := r.InvalidPublicIncludes
	if private {
		includes = r.InvalidPrivateIncludes
	}
	return includesMap(includes)
}

func includesMap(includes []scandeps.Include) map[string][]string {
	m := make(map[string][]string)
	for _, inc := range includes {
		m[inc.File] = append(m[inc.File], inc.Path)
	}
	return m
}

func includesFromMap(m map[string][]string) []scandeps.Include {
	var includes []scandeps.Include
	for file, paths := range m {
		for _, p := range paths {
			includes = append(includes, scandeps.Include{File: file, Path: p})
		}
	}
	slices.SortFunc(includes, scandeps.Include.Compare)
	return includes
}

// report is the JSON schema of Result.
type report struct {
	AnalyzedTarget            string              `json:"analyzed_target"`
	PublicIncludesWithoutDep  map[string][]string `json:"public_includes_without_dep"`
	PrivateIncludesWithoutDep map[string][]string `json:"private_includes_without_dep"`
	UnusedDeps                []string            `json:"unused_deps"`
	UnusedImplementationDeps  []string            `json:"unused_implementation_deps"`
	DepsWhichShouldBePrivate  []string            `json:"deps_which_should_be_private"`
	UseImplementationDeps     bool                `json:"use_implementation_deps"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// MarshalJSON marshals the result in the report schema.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(report{
		AnalyzedTarget:            r.Target,
		PublicIncludesWithoutDep:  includesMap(r.InvalidPublicIncludes),
		PrivateIncludesWithoutDep: includesMap(r.InvalidPrivateIncludes),
		UnusedDeps:                nonNil(r.UnusedPublicDeps),
		UnusedImplementationDeps:  nonNil(r.UnusedPrivateDeps),
		DepsWhichShouldBePrivate:  nonNil(r.ShouldBePrivateDeps),
		UseImplementationDeps:     r.UseImplementationDeps,
	})
}

// UnmarshalJSON unmarshals the result from the report schema.
func (r *Result) UnmarshalJSON(buf []byte) error {
	var rep report
	err := json.Unmarshal(buf, &rep)
	if err != nil {
		return err
	}
	if rep.AnalyzedTarget == "" {
		return fmt.Errorf("no analyzed_target in report")
	}
	*r = Result{
		Target:                 rep.AnalyzedTarget,
		InvalidPublicIncludes:  includesFromMap(rep.PublicIncludesWithoutDep),
		InvalidPrivateIncludes: includesFromMap(rep.PrivateIncludesWithoutDep),
		UnusedPublicDeps:       rep.UnusedDeps,
		UnusedPrivateDeps:      rep.UnusedImplementationDeps,
		ShouldBePrivateDeps:    rep.DepsWhichShouldBePrivate,
		UseImplementationDeps:  rep.UseImplementationDeps,
	}
	return nil
}

// WriteFile writes the result as JSON report to fname.
// It writes to a temporary file in the same dir and renames it,
// so readers never see a partial report.
func (r *Result) WriteFile(fname string) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	f, err := os.CreateTemp(filepath.Dir(fname), filepath.Base(fname)+".tmp*")
	if err != nil {
		return err
	}
	_, err = f.Write(buf)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(f.Name(), 0644)
	}
	if err == nil {
		err = os.Rename(f.Name(), fname)
	}
	if err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("failed to write report %s: %w", fname, err)
	}
	return nil
}

const frame = "================================================================================\n"

// String returns a human readable summary of the result.
func (r *Result) String() string {
	var sb strings.Builder
	sb.WriteString(frame)
	fmt.Fprintf(&sb, "DWYU analyzing: '%s'\n\n", r.Target)
	if r.OK() {
		sb.WriteString("Result: SUCCESS\n")
		sb.WriteString(frame)
		return sb.String()
	}
	sb.WriteString("Result: FAILURE\n")
	if len(r.InvalidPublicIncludes) > 0 || len(r.InvalidPrivateIncludes) > 0 {
		sb.WriteString("\nIncludes which are not available from the direct dependencies:\n")
		for _, inc := range r.InvalidPublicIncludes {
			fmt.Fprintf(&sb, "  In file '%s' include: %s\n", inc.File, inc.Path)
		}
		for _, inc := range r.InvalidPrivateIncludes {
			fmt.Fprintf(&sb, "  In file '%s' include: %s\n", inc.File, inc.Path)
		}
	}
	writeDeps := func(header string, deps []string) {
		if len(deps) == 0 {
			return
		}
		sb.WriteString("\n" + header + "\n")
		for _, d := range deps {
			fmt.Fprintf(&sb, "  %s\n", d)
		}
	}
	writeDeps("Unused dependencies in 'deps' (none of their headers are included):", r.UnusedPublicDeps)
	writeDeps("Unused dependencies in 'implementation_deps' (none of their headers are included):", r.UnusedPrivateDeps)
	writeDeps("'deps' which should be moved to 'implementation_deps' (their headers are included only in private code):", r.ShouldBePrivateDeps)
	if r.Report != "" {
		fmt.Fprintf(&sb, "\nDWYU Report: %s\n", r.Report)
	}
	sb.WriteString(frame)
	return sb.String()
}

// LoadResult loads a result from a JSON report file.
func LoadResult(fname string) (*Result, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	r := &Result{}
	err = json.Unmarshal(bytes.TrimSpace(buf), r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", fname, err)
	}
	r.Report = fname
	return r, nil
}
