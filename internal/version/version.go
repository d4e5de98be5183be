// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// Unknown is reported for fields that were not injected at build time.
const Unknown = "unknown"

// String returns "minishop <version> (<commit>, built <time>)".
func (i Info) String() string {
	return fmt.Sprintf("minishop %s (%s, built %s)", orUnknown(i.Version), orUnknown(i.GitCommit), orUnknown(i.BuildTime))
}

// Short returns the version alone, "dev" when none was injected.
func (i Info) Short() string {
	if i.Version == "" {
		return "dev"
	}
	return i.Version
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
