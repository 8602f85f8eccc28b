// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/aqwarius2003/star-burger-dockerizations/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
