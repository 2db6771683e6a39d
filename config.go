package lexgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the lexgraph engine.
type Config struct {
	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.lexgraph/lexgraph.db.
	DBPath string `json:"db_path"`

	// DataDir holds the case corpus (JSON and XLSX files).
	DataDir string `json:"data_dir"`

	// PDFDir optionally holds full-text PDF attachments named after the
	// decision id with "/" replaced by "-".
	PDFDir string `json:"pdf_dir"`

	// VocabPath optionally overlays the built-in vocabulary tables.
	VocabPath string `json:"vocab_path"`

	// LLM providers. Chat powers answer composition, Embedding powers
	// vector search. Either may be left unset, the engine degrades to
	// graph-only operation.
	Chat      LLMConfig `json:"chat"`
	Embedding LLMConfig `json:"embedding"`

	// EmbeddingDim must match the embedding model's output size.
	EmbeddingDim int `json:"embedding_dim"`

	// Graph tuning.
	CommunityResolution float64 `json:"community_resolution"`
	MinCommunitySize    int     `json:"min_community_size"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MaxFeatures         int     `json:"max_features"`

	// Retrieval tuning.
	MaxGraphDepth int     `json:"max_graph_depth"`
	ContextWeight float64 `json:"context_weight"`
	TopK          int     `json:"top_k"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider"` // ollama, openai, gemini, custom
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
}

// DefaultConfig returns a Config with the standard tuning. Providers
// are left unset; callers enable them explicitly.
func DefaultConfig() Config {
	return Config{
		DataDir:             "data",
		EmbeddingDim:        768,
		CommunityResolution: 1.0,
		MinCommunitySize:    3,
		SimilarityThreshold: 0.3,
		MaxFeatures:         1000,
		MaxGraphDepth:       2,
		ContextWeight:       0.3,
		TopK:                5,
	}
}

// LoadConfig reads a JSON config file over the defaults and then
// applies LEXGRAPH_* environment overrides. path may be empty.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides fields from LEXGRAPH_* environment variables.
func (c *Config) applyEnv() {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setStr(&c.DBPath, "LEXGRAPH_DB_PATH")
	setStr(&c.DataDir, "LEXGRAPH_DATA_DIR")
	setStr(&c.PDFDir, "LEXGRAPH_PDF_DIR")
	setStr(&c.VocabPath, "LEXGRAPH_VOCAB_PATH")

	setStr(&c.Chat.Provider, "LEXGRAPH_CHAT_PROVIDER")
	setStr(&c.Chat.Model, "LEXGRAPH_CHAT_MODEL")
	setStr(&c.Chat.BaseURL, "LEXGRAPH_CHAT_BASE_URL")
	setStr(&c.Chat.APIKey, "LEXGRAPH_CHAT_API_KEY")

	setStr(&c.Embedding.Provider, "LEXGRAPH_EMBED_PROVIDER")
	setStr(&c.Embedding.Model, "LEXGRAPH_EMBED_MODEL")
	setStr(&c.Embedding.BaseURL, "LEXGRAPH_EMBED_BASE_URL")
	setStr(&c.Embedding.APIKey, "LEXGRAPH_EMBED_API_KEY")

	if v := os.Getenv("LEXGRAPH_EMBEDDING_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.EmbeddingDim = n
		}
	}
	if v := os.Getenv("LEXGRAPH_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TopK = n
		}
	}
	if v := os.Getenv("LEXGRAPH_CONTEXT_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.ContextWeight = f
		}
	}
}

// validate rejects settings the engine cannot run with.
func (c *Config) validate() error {
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("%w: embedding_dim must be positive", ErrInvalidConfig)
	}
	if c.ContextWeight < 0 || c.ContextWeight > 1 {
		return fmt.Errorf("%w: context_weight must be in [0,1]", ErrInvalidConfig)
	}
	if c.MinCommunitySize < 1 {
		return fmt.Errorf("%w: min_community_size must be at least 1", ErrInvalidConfig)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold >= 1 {
		return fmt.Errorf("%w: similarity_threshold must be in [0,1)", ErrInvalidConfig)
	}
	return nil
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "lexgraph.db"
	}
	return filepath.Join(home, ".lexgraph", "lexgraph.db")
}
