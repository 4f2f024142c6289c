// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft manages a book project directory: outline, references,
// chapter persistence, and the pre-compile quality gate.
// Implements: prd005-quality (R1-R4);
//
//	docs/ARCHITECTURE § Book Project.
package draft

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/book-engine/pkg/types"
)

const (
	tocFile        = "toc.yaml"
	referencesFile = "references.yaml"
	configFile     = "config.yml"

	// ChaptersDir holds chapter drafts; ExportsDir holds compiled books.
	ChaptersDir = "chapters"
	ExportsDir  = "exports"
	AssetsDir   = "assets"
)

// citationPattern matches inline citations: [Key] or [Key1; Key2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Project is a book project rooted at Dir. All chapter writes are
// confined beneath it.
type Project struct {
	Dir string
}

// NewProject returns a project rooted at dir. The directory need not
// exist yet; SaveChapter creates what it needs.
func NewProject(dir string) *Project {
	return &Project{Dir: dir}
}

// LoadOutline reads and validates toc.yaml from the project directory.
func (p *Project) LoadOutline() (*types.Outline, error) {
	data, err := os.ReadFile(filepath.Join(p.Dir, tocFile))
	if err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	var outline types.Outline
	if err := yaml.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}
	if err := outline.Validate(); err != nil {
		return nil, fmt.Errorf("invalid outline: %w", err)
	}
	return &outline, nil
}

// LoadReferences reads references.yaml from the project directory. A
// missing file yields an empty bibliography, not an error.
func (p *Project) LoadReferences() (*types.ReferencesFile, error) {
	data, err := os.ReadFile(filepath.Join(p.Dir, referencesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &types.ReferencesFile{}, nil
		}
		return nil, fmt.Errorf("reading references: %w", err)
	}
	var refs types.ReferencesFile
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("parsing references: %w", err)
	}
	return &refs, nil
}

// SaveReferences writes references.yaml to the project directory.
func (p *Project) SaveReferences(refs *types.ReferencesFile) error {
	data, err := yaml.Marshal(refs)
	if err != nil {
		return fmt.Errorf("marshaling references: %w", err)
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	return os.WriteFile(filepath.Join(p.Dir, referencesFile), data, 0o644)
}

// ChapterFiles returns the sorted list of chapter draft paths
// (chapters/*.md). A missing chapters directory yields an empty list.
func (p *Project) ChapterFiles() ([]string, error) {
	dir := filepath.Join(p.Dir, ChaptersDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chapters directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// SaveResult describes one chapter write.
type SaveResult struct {
	// Path is the absolute path the draft was written to.
	Path string `json:"path" yaml:"path"`

	// Bytes is the content length in bytes.
	Bytes int `json:"bytes" yaml:"bytes"`

	// Updated is false when the file already held identical content and
	// the write was skipped.
	Updated bool `json:"updated" yaml:"updated"`
}

// SaveChapter persists markdown at relpath under the project directory.
// A write with content identical to the existing file is a no-op,
// detected by content hash. Paths escaping the project directory are
// rejected.
func (p *Project) SaveChapter(relpath, markdown string) (SaveResult, error) {
	abs, err := p.resolve(relpath)
	if err != nil {
		return SaveResult{}, err
	}

	newHash := contentHash([]byte(markdown))
	if existing, err := os.ReadFile(abs); err == nil {
		if contentHash(existing) == newHash {
			return SaveResult{Path: abs, Bytes: len(markdown), Updated: false}, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return SaveResult{}, fmt.Errorf("creating chapter directory: %w", err)
	}
	if err := os.WriteFile(abs, []byte(markdown), 0o644); err != nil {
		return SaveResult{}, fmt.Errorf("writing chapter: %w", err)
	}

	return SaveResult{Path: abs, Bytes: len(markdown), Updated: true}, nil
}

// resolve joins relpath onto the project directory and rejects paths
// that escape it.
func (p *Project) resolve(relpath string) (string, error) {
	root, err := filepath.Abs(p.Dir)
	if err != nil {
		return "", fmt.Errorf("resolving project directory: %w", err)
	}
	abs := filepath.Clean(filepath.Join(root, relpath))
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the project directory", relpath)
	}
	return abs, nil
}

// Scaffold writes a starter config.yml and toc.yaml for a new book.
// Existing files are left untouched.
func (p *Project) Scaffold(title string) error {
	for _, dir := range []string{
		p.Dir,
		filepath.Join(p.Dir, ChaptersDir),
		filepath.Join(p.Dir, AssetsDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	cfgPath := filepath.Join(p.Dir, configFile)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		content := fmt.Sprintf("title: %q\n", title)
		if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing config.yml: %w", err)
		}
	}

	tocPath := filepath.Join(p.Dir, tocFile)
	if _, err := os.Stat(tocPath); os.IsNotExist(err) {
		data, err := yaml.Marshal(&types.Outline{Title: title})
		if err != nil {
			return fmt.Errorf("marshaling outline: %w", err)
		}
		if err := os.WriteFile(tocPath, data, 0o644); err != nil {
			return fmt.Errorf("writing toc.yaml: %w", err)
		}
	}

	return nil
}

// Status summarizes the project for the get_status tool.
type Status struct {
	Chapters   []string `json:"chapters" yaml:"chapters"`
	HasOutline bool     `json:"has_outline" yaml:"has_outline"`
	HasConfig  bool     `json:"has_config" yaml:"has_config"`
	Exports    []string `json:"exports" yaml:"exports"`
}

// Status reports the project's chapters, outline presence, and exports.
func (p *Project) Status() (Status, error) {
	files, err := p.ChapterFiles()
	if err != nil {
		return Status{}, err
	}

	st := Status{Chapters: make([]string, 0, len(files))}
	for _, f := range files {
		st.Chapters = append(st.Chapters, strings.TrimSuffix(filepath.Base(f), ".md"))
	}

	_, err = os.Stat(filepath.Join(p.Dir, tocFile))
	st.HasOutline = err == nil
	_, err = os.Stat(filepath.Join(p.Dir, configFile))
	st.HasConfig = err == nil

	if entries, err := os.ReadDir(filepath.Join(p.Dir, ExportsDir)); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				st.Exports = append(st.Exports, e.Name())
			}
		}
	}
	return st, nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// extractCitationKeys finds all citation keys in text. It handles both
// single citations [Key] and multi-citations [Key1; Key2].
func extractCitationKeys(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	var keys []string
	for _, m := range matches {
		for _, part := range strings.Split(m[1], ";") {
			key := strings.TrimSpace(part)
			if key != "" && isCitationKey(key) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// isCitationKey checks whether a string looks like a citation key. It
// rejects strings that look like Markdown links, image references, or
// other bracket content.
func isCitationKey(s string) bool {
	hasLetter := false
	hasDigit := false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '-', c == '_':
			// allowed
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}
