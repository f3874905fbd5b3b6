//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Serve builds the binary and runs the HTTP API in the foreground.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve")
}

// Ask builds the binary and answers the message in $MSG, printing the
// routing states.
func Ask() error {
	msg := os.Getenv("MSG")
	if msg == "" {
		return errors.New("set MSG to the message to ask")
	}
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "ask", "--trace", msg)
}

// Seed builds the binary and imports data/seed.yaml into the dex.
func Seed() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "dex", "import", filepath.Join("data", "seed.yaml"))
}
