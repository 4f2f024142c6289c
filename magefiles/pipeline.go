//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// run invokes the built CLI binary with args, streaming output.
func run(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Ingest chunks and indexes everything under sources/.
func Ingest() error {
	mg.Deps(Build)
	return run("ingest", "sources", "--stats")
}

// Gate runs the quality gate over the book project without compiling.
func Gate() error {
	mg.Deps(Build)
	return run("build", "--check")
}

// Book compiles the book to PDF after the quality gate passes.
func Book() error {
	mg.Deps(Build)
	return run("build", "--format", "pdf")
}

// Clean removes the built binary and the index database.
func Clean() error {
	for _, path := range []string{binDir, filepath.Join("index", "book.db")} {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	fmt.Println("Cleaned.")
	return nil
}
