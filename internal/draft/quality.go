// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/book-engine/pkg/types"
)

// sourcePlaceholders are the markers that flag a claim still waiting for
// evidence. "source:unknown" is the retriever's sentinel cite key; the
// TODO form is what drafting oracles are instructed to leave when no fact
// covered a claim.
var sourcePlaceholders = []string{
	"[source:unknown]",
	"[TODO: source]",
}

// figurePattern matches Markdown image references: ![caption](path).
var figurePattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)[^)]*\)`)

// Evaluate scans every chapter draft for blocking defects: unresolved
// source placeholders, citation keys with no bibliography entry, and
// figure references with no asset file. The report is recomputed from the
// current drafts on every call — it is never cached, so the gate always
// reflects the latest edits.
func (p *Project) Evaluate() (types.QualityReport, error) {
	refs, err := p.LoadReferences()
	if err != nil {
		return types.QualityReport{}, err
	}
	knownKeys := make(map[string]bool, len(refs.Sources))
	for _, r := range refs.Sources {
		knownKeys[r.CitationKey] = true
	}

	files, err := p.ChapterFiles()
	if err != nil {
		return types.QualityReport{}, err
	}

	var report types.QualityReport
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return types.QualityReport{}, fmt.Errorf("reading %s: %w", filepath.Base(file), err)
		}

		rel := filepath.Join(ChaptersDir, filepath.Base(file))
		report.Issues = append(report.Issues, p.scanChapter(rel, string(data), knownKeys)...)
	}

	report.Blocking = len(report.Issues) > 0
	return report, nil
}

func (p *Project) scanChapter(rel, content string, knownKeys map[string]bool) []types.QualityIssue {
	var issues []types.QualityIssue

	seenDangling := make(map[string]bool)
	for i, line := range strings.Split(content, "\n") {
		where := fmt.Sprintf("%s:%d", rel, i+1)

		for _, marker := range sourcePlaceholders {
			if strings.Contains(line, marker) {
				issues = append(issues, types.QualityIssue{
					Type:    types.IssueUnresolvedSource,
					Where:   where,
					Message: fmt.Sprintf("unresolved source placeholder %s", marker),
				})
			}
		}

		// Strip figures before citation scanning so image alt text is
		// not mistaken for a citation.
		stripped := figurePattern.ReplaceAllString(line, "")
		for _, key := range extractCitationKeys(stripped) {
			if knownKeys[key] || seenDangling[key] {
				continue
			}
			seenDangling[key] = true
			issues = append(issues, types.QualityIssue{
				Type:    types.IssueDanglingCitation,
				Where:   where,
				Message: fmt.Sprintf("citation key %q has no entry in %s", key, referencesFile),
			})
		}

		for _, m := range figurePattern.FindAllStringSubmatch(line, -1) {
			target := m[1]
			if strings.Contains(target, "://") {
				continue
			}
			if _, err := os.Stat(filepath.Join(p.Dir, target)); err != nil {
				issues = append(issues, types.QualityIssue{
					Type:    types.IssueMissingFigure,
					Where:   where,
					Message: fmt.Sprintf("figure asset %q not found", target),
				})
			}
		}
	}

	return issues
}
