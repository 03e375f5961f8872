// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package iometrics manages I/O metrics.
package iometrics

import (
	"fmt"
	"sync"
)

// IOMetrics holds read metrics of source files.
type IOMetrics struct {
	name string

	mu sync.Mutex

	rOps   int64
	rBytes int64
	rErrs  int64
}

// New returns new iometrics for name.
func New(name string) *IOMetrics {
	return &IOMetrics{name: name}
}

// ReadDone counts when a read operation is done.
// n is the number of bytes, and err is a read error.
func (m *IOMetrics) ReadDone(n int, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rOps++
	m.rBytes += int64(n)
	if err != nil {
		m.rErrs++
	}
}

// Name returns the name of the iometrics.
func (m *IOMetrics) Name() string {
	if m == nil {
		return "<nil>"
	}
	return m.name
}

// Stats holds iometrics.
type Stats struct {
	// Number of read operations.
	ROps int64
	// Number of read bytes.
	RBytes int64
	// Number of read errors.
	RErrs int64
}

// Sub returns the difference of s from prev.
func (s Stats) Sub(prev Stats) Stats {
	return Stats{
		ROps:   s.ROps - prev.ROps,
		RBytes: s.RBytes - prev.RBytes,
		RErrs:  s.RErrs - prev.RErrs,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("read=%d bytes=%d errs=%d", s.ROps, s.RBytes, s.RErrs)
}

// Stats returns the snapshot of the iometrics.
func (m *IOMetrics) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		ROps:   m.rOps,
		RBytes: m.rBytes,
		RErrs:  m.rErrs,
	}
}
