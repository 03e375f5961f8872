// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"time"
)

// FormatDuration formats d with centisecond precision as "1.23s",
// "4m05.67s" or "1h2m03.45s".
func FormatDuration(d time.Duration) string {
	cs := d.Round(10*time.Millisecond).Milliseconds() / 10
	h := cs / (100 * 60 * 60)
	m := cs / (100 * 60) % 60
	s := cs % (100 * 60)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%02d.%02ds", h, m, s/100, s%100)
	case m > 0:
		return fmt.Sprintf("%dm%02d.%02ds", m, s/100, s%100)
	}
	return fmt.Sprintf("%d.%02ds", s/100, s%100)
}
