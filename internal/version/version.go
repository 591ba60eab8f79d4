// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Name of the binary
const Name = "c19-miner"

// Set with -ldflags "-X c19-miner/internal/version.Version=..." at release time
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var fillOnce sync.Once

// fill takes commit and date from the VCS stamp of the module build when
// ldflags did not set them.
func fill() {
	fillOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if GitCommit == "unknown" && s.Value != "" {
					GitCommit = s.Value
					if len(GitCommit) > 12 {
						GitCommit = GitCommit[:12]
					}
				}
			case "vcs.time":
				if BuildDate == "unknown" && s.Value != "" {
					BuildDate = s.Value
				}
			}
		}
	})
}

// Info returns one line for `c19-miner version`
func Info() string {
	fill()
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, platform: %s/%s)",
		Name, Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number
func Short() string {
	return Version
}

// Full returns the build metadata as a map
func Full() map[string]string {
	fill()
	return map[string]string{
		"name":      Name,
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": runtime.Version(),
		"platform":  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
