package types

// IngestConfig holds settings for the ingestion stage.
// Per prd001-ingestion R1.2, R2.1.
type IngestConfig struct {
	// ChunkSize is the chunk length in runes (default 1000).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// OverlapFraction is the fraction of ChunkSize shared between
	// consecutive chunks. Must satisfy 0 <= f < 1 (default 0.15).
	OverlapFraction float64 `json:"overlap_fraction" yaml:"overlap_fraction"`
}

// IndexConfig holds settings for the vector index.
// Per prd002-index R1.1.
type IndexConfig struct {
	// IndexDir is the directory holding the index database (contains book.db).
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AgentConfig holds settings for the reasoning loop.
// Per prd004-agent R2.1-R2.3.
type AgentConfig struct {
	AIConfig `yaml:",inline"`

	// MaxSteps is the loop's step budget (default 15). A goal that never
	// invokes finish always ends by exhausting it.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`

	// TraceWindow is how many recent steps the planning call sees
	// (default 3).
	TraceWindow int `json:"trace_window" yaml:"trace_window"`
}

// OutputFormat selects the compile target.
type OutputFormat string

const (
	OutputPDF  OutputFormat = "pdf"
	OutputEPUB OutputFormat = "epub"
	OutputHTML OutputFormat = "html"
)

// BuildConfig holds settings for book compilation.
// Per prd006-build R1.1-R1.3.
type BuildConfig struct {
	// BookDir is the book project directory (contains toc.yaml,
	// references.yaml, chapters/, assets/, exports/).
	BookDir string `json:"book_dir" yaml:"book_dir"`

	// Format is the default compile target: pdf, epub, or html.
	Format OutputFormat `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Ingest IngestConfig `json:"ingest" yaml:"ingest"`
	Index  IndexConfig  `json:"index" yaml:"index"`
	Agent  AgentConfig  `json:"agent" yaml:"agent"`
	Build  BuildConfig  `json:"build" yaml:"build"`
}
