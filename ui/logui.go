// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// LogUI is a UI for non terminal output, e.g. when dwyu runs
// from a bazel aspect or in CI. Progress is logged at debug level.
type LogUI struct {
	logger *log.Logger
}

// NewLogUI returns a LogUI writing to w.
func NewLogUI(w io.Writer) *LogUI {
	return &LogUI{
		logger: log.NewWithOptions(w, log.Options{Prefix: "dwyu"}),
	}
}

func (l *LogUI) out() *log.Logger {
	if l.logger == nil {
		l.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "dwyu"})
	}
	return l.logger
}

// NewSpinner returns a spinner that logs start and end of an operation.
func (l *LogUI) NewSpinner() Spinner {
	return &logSpinner{logger: l.out()}
}

// Progress logs the progress line.
func (l *LogUI) Progress(format string, args ...any) {
	l.out().Debug(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

// Infof logs msg.
func (l *LogUI) Infof(format string, args ...any) {
	l.out().Info(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

// Warningf logs a warning.
func (l *LogUI) Warningf(format string, args ...any) {
	l.out().Warn(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

// Errorf logs an error.
func (l *LogUI) Errorf(format string, args ...any) {
	l.out().Error(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

type logSpinner struct {
	logger  *log.Logger
	msg     string
	started time.Time
}

func (s *logSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = fmt.Sprintf(format, args...)
	s.logger.Info(s.msg)
}

func (s *logSpinner) Stop(err error) {
	d := FormatDuration(time.Since(s.started))
	if err != nil {
		s.logger.Warn(s.msg+" failed", "took", d, "err", err)
		return
	}
	s.logger.Info(s.msg+" done", "took", d)
}

func (s *logSpinner) Done(format string, args ...any) {
	s.logger.Info(s.msg+" "+fmt.Sprintf(format, args...), "took", FormatDuration(time.Since(s.started)))
}
