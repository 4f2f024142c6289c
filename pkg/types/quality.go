// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QualityIssueType classifies a blocking defect found in chapter drafts.
// Per prd005-quality R1.1.
type QualityIssueType string

const (
	// IssueUnresolvedSource is an unresolved source placeholder left in a
	// draft (a "source:unknown" citation or an explicit TODO marker).
	IssueUnresolvedSource QualityIssueType = "unresolved-source"

	// IssueDanglingCitation is a citation key with no matching entry in
	// references.yaml.
	IssueDanglingCitation QualityIssueType = "dangling-citation"

	// IssueMissingFigure is a figure reference whose asset file does not
	// exist under the book project directory.
	IssueMissingFigure QualityIssueType = "missing-figure"
)

// QualityIssue is one defect found by the quality gate.
type QualityIssue struct {
	// Type classifies the defect.
	Type QualityIssueType `json:"type" yaml:"type"`

	// Where locates the defect (chapter file, and line when known).
	Where string `json:"where" yaml:"where"`

	// Message describes the defect.
	Message string `json:"message" yaml:"message"`
}

// QualityReport is the result of scanning all chapter drafts. It is derived
// state: recomputed on demand and never persisted as authoritative — the
// gate is re-evaluated immediately before every compile attempt.
type QualityReport struct {
	// Blocking reports whether any issue vetoes compilation.
	Blocking bool `json:"blocking" yaml:"blocking"`

	// Issues lists every defect found, in chapter order.
	Issues []QualityIssue `json:"issues" yaml:"issues"`
}
