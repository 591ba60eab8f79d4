// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"c19-miner/internal/cli"
	"c19-miner/internal/resilience"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if t := resilience.TypeOf(err); t != resilience.ErrorTypeUnknown {
			fmt.Fprintf(os.Stderr, "(%s)\n", t)
		}
		os.Exit(1)
	}
}
