// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package build compiles persisted chapters into a book with Pandoc.
// Compilation is vetoed while the quality gate reports blocking issues;
// the gate is re-evaluated immediately before every attempt.
// Implements: prd006-build (R1-R3);
//
//	docs/ARCHITECTURE § Compilation.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pdiddy/book-engine/internal/draft"
	"github.com/pdiddy/book-engine/pkg/types"
)

const binPandoc = "pandoc"

// ErrGateBlocked reports that the quality gate vetoed compilation.
var ErrGateBlocked = errors.New("quality gate blocked the build")

// CompilationError reports an abnormal exit from the external compiler.
// It is fatal and never retried automatically.
type CompilationError struct {
	Format types.OutputFormat
	Stderr string
	Err    error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("pandoc build for %s failed: %v: %s", e.Format, e.Err, e.Stderr)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// executor abstracts command execution for testing.
type executor interface {
	Run(ctx context.Context, dir string, stderr *bytes.Buffer, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, dir string, stderr *bytes.Buffer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = stderr
	return cmd.Run()
}

// Result describes a successful compile.
type Result struct {
	// Export is the path of the produced artifact.
	Export string `json:"export" yaml:"export"`

	// Chapters lists the chapter files that went into the build, in order.
	Chapters []string `json:"chapters" yaml:"chapters"`

	// Format is the compile target.
	Format types.OutputFormat `json:"format" yaml:"format"`
}

// Builder compiles a book project.
type Builder struct {
	project *draft.Project
	exec    executor
}

// NewBuilder creates a builder for the given project.
func NewBuilder(project *draft.Project) *Builder {
	return &Builder{project: project, exec: osExecutor{}}
}

// Build runs the quality gate and, when it passes, compiles every chapter
// draft into exports/book.<format>. A blocking gate returns ErrGateBlocked
// with the issues attached; a compiler failure returns *CompilationError.
// No artifact is produced in either failure case.
func (b *Builder) Build(ctx context.Context, format types.OutputFormat) (Result, error) {
	report, err := b.project.Evaluate()
	if err != nil {
		return Result{}, fmt.Errorf("evaluating quality gate: %w", err)
	}
	if report.Blocking {
		return Result{}, fmt.Errorf("%w: %s", ErrGateBlocked, summarize(report))
	}

	chapters, err := b.project.ChapterFiles()
	if err != nil {
		return Result{}, err
	}
	if len(chapters) == 0 {
		return Result{}, fmt.Errorf("no chapter drafts in %s", filepath.Join(b.project.Dir, draft.ChaptersDir))
	}

	exportDir := filepath.Join(b.project.Dir, draft.ExportsDir)
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating exports directory: %w", err)
	}
	out := filepath.Join(exportDir, "book."+string(format))

	// Pandoc runs with the project directory as its working directory, so
	// every path handed to it is project-relative.
	args := []string{
		"-s",
		"--from", "markdown+footnotes",
		"--citeproc",
		"-o", filepath.Join(draft.ExportsDir, "book."+string(format)),
	}
	if _, err := os.Stat(filepath.Join(b.project.Dir, "config.yml")); err == nil {
		args = append(args, "--metadata-file", "config.yml")
	}
	for _, ch := range chapters {
		rel, err := filepath.Rel(b.project.Dir, ch)
		if err != nil {
			rel = ch
		}
		args = append(args, rel)
	}

	var stderr bytes.Buffer
	if err := b.exec.Run(ctx, b.project.Dir, &stderr, binPandoc, args...); err != nil {
		// Never leave a partial artifact behind a failed compile.
		os.Remove(out)
		return Result{}, &CompilationError{Format: format, Stderr: stderr.String(), Err: err}
	}

	return Result{Export: out, Chapters: chapters, Format: format}, nil
}

func summarize(report types.QualityReport) string {
	if len(report.Issues) == 1 {
		i := report.Issues[0]
		return fmt.Sprintf("1 issue (%s at %s)", i.Type, i.Where)
	}
	counts := make(map[types.QualityIssueType]int)
	for _, i := range report.Issues {
		counts[i.Type]++
	}
	return fmt.Sprintf("%d issues (%d unresolved sources, %d dangling citations, %d missing figures)",
		len(report.Issues),
		counts[types.IssueUnresolvedSource],
		counts[types.IssueDanglingCitation],
		counts[types.IssueMissingFigure])
}
