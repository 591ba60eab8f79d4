// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir_EnvOverride(t *testing.T) {
	t.Setenv(ConfigDirEnv, "/etc/c19")
	assert.Equal(t, "/etc/c19", GetConfigDir())

	candidates := ConfigCandidates()
	assert.Equal(t, LocalConfigNames, candidates[:len(LocalConfigNames)])
	assert.Contains(t, candidates, filepath.Join("/etc/c19", "config.yaml"))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath(""))
	assert.NoError(t, ValidatePath("salida/registros"))

	err := ValidatePath("sal\x00ida")
	var pe *PathValidationError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "contains null byte", pe.Reason)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)
	assert.Error(t, EnsureDir("x\x00y"))
}
