// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package analysis evaluates includes of a module against its declared
// dependencies.
package analysis

import (
	"errors"
	"fmt"
)

// Usage is how headers of a dependency are used by a module.
// It is a join-semilattice with UsageNone as bottom and
// UsagePublicAndPrivate as top.
type Usage int

const (
	// UsageNone means no header is used.
	UsageNone Usage = 0
	// UsagePublic means headers are used by public files.
	UsagePublic Usage = 1 << 0
	// UsagePrivate means headers are used by private files.
	UsagePrivate Usage = 1 << 1
	// UsagePublicAndPrivate means headers are used by both.
	UsagePublicAndPrivate = UsagePublic | UsagePrivate
)

// ErrResetUsage is returned when merging UsageNone into a usage.
var ErrResetUsage = errors.New("resetting the usage is not supported")

// Merge returns the join of a and b.
// It returns ErrResetUsage if b is UsageNone.
func Merge(a, b Usage) (Usage, error) {
	if b == UsageNone {
		return a, ErrResetUsage
	}
	if !a.valid() || !b.valid() {
		return a, fmt.Errorf("invalid usage %d, %d", int(a), int(b))
	}
	return a | b, nil
}

func (u Usage) valid() bool {
	return u >= UsageNone && u <= UsagePublicAndPrivate
}

// Used reports whether any header is used.
func (u Usage) Used() bool {
	return u != UsageNone
}

func (u Usage) String() string {
	switch u {
	case UsageNone:
		return "NONE"
	case UsagePublic:
		return "PUBLIC"
	case UsagePrivate:
		return "PRIVATE"
	case UsagePublicAndPrivate:
		return "PUBLIC_AND_PRIVATE"
	}
	return fmt.Sprintf("Usage(%d)", int(u))
}
