// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// IndexConfig holds settings for the extraction and merge stages.
type IndexConfig struct {
	// Canonical enables canonical numbering (DN/MN/SN/AN references) for
	// markup sources.
	Canonical bool `json:"canonical" yaml:"canonical"`

	// SortInputs applies a stable sort by path before processing so that
	// stanza counters are reproducible across runs.
	SortInputs bool `json:"sort_inputs" yaml:"sort_inputs"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Dir is the base directory for the store (contains index/).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// HTTPConfig holds shared HTTP settings used by sinks that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ElasticConfig holds settings for the Elasticsearch bulk sink.
type ElasticConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the cluster base URL (e.g. "http://localhost:9200").
	URL string `json:"url" yaml:"url"`

	// User and Password are basic-auth credentials. Password may also be
	// loaded from the secrets directory as "es-password".
	User     string `json:"user" yaml:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// APIKey, when set, is sent as an ApiKey authorization header instead of
	// basic auth. It may also be loaded from the secrets directory as
	// "es-api-key".
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Index is the target index name (default "canon_segments").
	Index string `json:"index" yaml:"index"`

	// ChunkSize is the number of records per bulk request (default 500).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Refresh requests an index refresh after the last chunk.
	Refresh bool `json:"refresh" yaml:"refresh"`
}

// LogConfig selects the diagnostic logger level and output format.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is json or text.
	Format string `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Index   IndexConfig   `json:"index" yaml:"index"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Elastic ElasticConfig `json:"elastic" yaml:"elastic"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
