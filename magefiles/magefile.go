//go:build mage

// Package main provides build targets for searchable-gallery using Mage.
//
// Usage:
//
//	mage build       Compile the server and galleryctl to bin/
//	mage buildPure   Same, without cgo (modernc.org/sqlite driver only)
//	mage test        Run all tests with -race
//	mage testShort   Run tests, skipping integration tests
//	mage cover       Run tests with a coverage profile
//	mage lint        Run golangci-lint
//	mage clean       Remove build artifacts
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo     = "go"
	binaryDir = "bin"
	module    = "searchable-gallery"
	coverFile = "coverage.out"
)

var binaries = map[string]string{
	"searchable-gallery": ".",
	"galleryctl":         "./cmd/galleryctl",
}

// ldflags injects the build information reported by /version.
func ldflags() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || commit == "" {
		commit = "unknown"
	}
	pkg := module + "/internal/startup"
	return strings.Join([]string{
		"-s", "-w",
		fmt.Sprintf("-X %s.Version=%s", pkg, version),
		fmt.Sprintf("-X %s.Commit=%s", pkg, commit),
		fmt.Sprintf("-X %s.BuildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
	}, " ")
}

func build(env map[string]string) error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	flags := ldflags()
	for name, dir := range binaries {
		if err := sh.RunWithV(env, binGo, "build", "-v", "-ldflags", flags, "-o", filepath.Join(binaryDir, name), dir); err != nil {
			return err
		}
	}
	return nil
}

// Build compiles both binaries to bin/.
func Build() error {
	return build(nil)
}

// BuildPure compiles both binaries with CGO disabled. Run them with
// DATABASE_DRIVER=sqlite.
func BuildPure() error {
	return build(map[string]string{"CGO_ENABLED": "0"})
}

// Test runs all tests with the race detector. It needs cgo, like the
// default sqlite3 driver.
func Test() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// TestShort runs tests in -short mode, skipping integration tests.
func TestShort() error {
	return sh.RunV(binGo, "test", "-short", "./...")
}

// Cover runs all tests with a coverage profile and prints the summary.
func Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverFile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Check runs lint and the full test suite.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := sh.Rm(coverFile); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}
