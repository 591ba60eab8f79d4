// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.True(t, strings.HasPrefix(info, "c19-miner "+Version+" (commit: "))
	assert.Contains(t, info, "go: go")
}

func TestFull(t *testing.T) {
	full := Full()
	assert.Equal(t, Name, full["name"])
	assert.Equal(t, Short(), full["version"])
	assert.NotEmpty(t, full["commit"])
}
