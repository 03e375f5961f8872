// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fixdeps

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/dwyu/execute"
	"go.chromium.org/infra/build/dwyu/execute/localexec"
)

// BazelQuery queries dependencies with bazel query or cquery.
type BazelQuery struct {
	// Workspace is the directory bazel runs in.
	Workspace string

	// UseCquery uses cquery instead of query.
	UseCquery bool

	// StartupArgs are bazel startup options.
	StartupArgs []string

	// Args are options of the query command.
	Args []string

	// Executor runs bazel. localexec if nil.
	Executor execute.Executor

	// Bazel is the bazel binary. "bazel" if empty.
	Bazel string
}

// Command returns command line args to run query in bazel.
func (q *BazelQuery) Command(query string, args ...string) []string {
	bazel := q.Bazel
	if bazel == "" {
		bazel = "bazel"
	}
	cmd := []string{bazel}
	cmd = append(cmd, q.StartupArgs...)
	if q.UseCquery {
		cmd = append(cmd, "cquery")
	} else {
		cmd = append(cmd, "query")
	}
	cmd = append(cmd, q.Args...)
	cmd = append(cmd, args...)
	return append(cmd, query)
}

func (q *BazelQuery) run(ctx context.Context, desc string, args []string) ([]byte, error) {
	cmd := execute.NewCmd(desc, args...)
	cmd.Dir = q.Workspace
	var ex execute.Executor = localexec.LocalExec{}
	if q.Executor != nil {
		ex = q.Executor
	}
	err := ex.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w\n%s", cmd.Command(), err, cmd.Stderr())
	}
	return cmd.Stdout(), nil
}

// TransitiveDeps returns cc rules in the dependencies of target
// excluding its direct dependencies.
func (q *BazelQuery) TransitiveDeps(ctx context.Context, target string) ([]Candidate, error) {
	output := "streamed_jsonproto"
	if q.UseCquery {
		output = "jsonproto"
	}
	query := fmt.Sprintf("kind(%q, deps(%s) except deps(%s, 1))", "rule", target, target)
	stdout, err := q.run(ctx, "QUERY "+target, q.Command(query, "--output="+output, "--noimplicit_deps"))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		// targets without deps
		return nil, nil
	}
	var targets []queryTarget
	if q.UseCquery {
		targets, err = parseCqueryOutput(stdout)
	} else {
		targets, err = parseStreamedOutput(stdout)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse query output for %s: %w", target, err)
	}
	var candidates []Candidate
	for _, t := range targets {
		c, ok := t.candidate()
		if !ok {
			continue
		}
		log.V(1).Infof("candidate %s %q", c.Target, c.Headers)
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// queryTarget is a target in the json proto output of bazel query.
type queryTarget struct {
	Type string `json:"type"`
	Rule struct {
		Name      string `json:"name"`
		RuleClass string `json:"ruleClass"`
		Attribute []struct {
			Name                string    `json:"name"`
			ExplicitlySpecified bool      `json:"explicitlySpecified"`
			StringListValue     *[]string `json:"stringListValue"`
		} `json:"attribute"`
	} `json:"rule"`
}

func (t queryTarget) candidate() (Candidate, bool) {
	if t.Type != "RULE" || !strings.HasPrefix(t.Rule.RuleClass, "cc_") {
		return Candidate{}, false
	}
	for _, attr := range t.Rule.Attribute {
		if attr.Name != "hdrs" || !attr.ExplicitlySpecified || attr.StringListValue == nil {
			continue
		}
		c := Candidate{Target: t.Rule.Name}
		for _, hdr := range *attr.StringListValue {
			c.Headers = append(c.Headers, LabelToPath(hdr))
		}
		return c, true
	}
	return Candidate{}, false
}

func parseStreamedOutput(buf []byte) ([]queryTarget, error) {
	var targets []queryTarget
	s := bufio.NewScanner(bytes.NewReader(buf))
	s.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for s.Scan() {
		line := bytes.TrimSpace(s.Bytes())
		if len(line) == 0 {
			continue
		}
		var t queryTarget
		err := json.Unmarshal(line, &t)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, s.Err()
}

func parseCqueryOutput(buf []byte) ([]queryTarget, error) {
	var out struct {
		Results []struct {
			Target queryTarget `json:"target"`
		} `json:"results"`
	}
	err := json.Unmarshal(buf, &out)
	if err != nil {
		return nil, err
	}
	targets := make([]queryTarget, 0, len(out.Results))
	for _, r := range out.Results {
		targets = append(targets, r.Target)
	}
	return targets, nil
}

// LabelToPath converts a file label to the include path of the file
// in the workspace of its repository.
// e.g. "@repo//pkg:sub/file.h" -> "pkg/sub/file.h".
func LabelToPath(label string) string {
	p := strings.ReplaceAll(label, ":", "/")
	if i := strings.LastIndex(p, "//"); i >= 0 {
		p = p[i+2:]
	}
	return p
}
