//go:build mage
// +build mage

package main

import (
	"log"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Test mg.Namespace

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Test.Default

// Run linter against codebase
func Lint() error {
	os.Setenv("GO111MODULE", "on")
	log.Printf("Linting...")
	return sh.RunV("golangci-lint", "run", "./pkg/...")
}

func testVerbose() error {
	os.Setenv("GO111MODULE", "on")
	log.Printf("Testing...")
	return sh.RunV("go", "test", "-v", "./pkg/...")
}

func test() error {
	os.Setenv("GO111MODULE", "on")
	log.Printf("Testing...")
	return sh.RunV("go", "test", "./pkg/...")
}

// Run tests in verbose mode
func (Test) Verbose() {
	mg.Deps(
		testVerbose,
	)
}

// Run tests in normal mode
func (Test) Default() {
	mg.Deps(
		test,
	)
}

// Run tests with coverage output
func (Test) Coverage() error {
	os.Setenv("GO111MODULE", "on")
	log.Printf("Testing with coverage...")
	return sh.RunV("go", "test", "-coverprofile=coverage.out", "./pkg/...")
}
