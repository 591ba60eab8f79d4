// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ConfigDirEnv overrides the configuration directory
const ConfigDirEnv = "C19MINER_CONFIG_DIR"

// LocalConfigNames are looked up in the working directory, in order
var LocalConfigNames = []string{"c19-miner.yaml", "c19-miner.yml", ".c19-miner.yaml", ".c19-miner.yml"}

// GetConfigDir returns the c19-miner configuration directory: $C19MINER_CONFIG_DIR,
// else c19-miner under the user config dir (XDG on Unix, APPDATA on Windows).
// It returns "" when neither can be determined.
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "c19-miner")
}

// ConfigCandidates lists every config file location in search order
func ConfigCandidates() []string {
	candidates := append([]string(nil), LocalConfigNames...)
	if dir := GetConfigDir(); dir != "" {
		candidates = append(candidates,
			filepath.Join(dir, "config.yaml"),
			filepath.Join(dir, "config.yml"))
	}
	// Legacy location in the home directory
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".c19-miner.yaml"))
	}
	return candidates
}

// ValidatePath rejects paths the OS cannot open. Empty is valid.
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	if len(path) > 4096 {
		return &PathValidationError{Path: path, Reason: "path exceeds maximum length of 4096 characters"}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}

// EnsureDir validates dir and creates it with its parents
func EnsureDir(dir string) error {
	if err := ValidatePath(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
