package llm

import "context"

// geminiProvider drives Google's Gemini models through their
// OpenAI-compatible endpoint. Gemini mounts it without the usual /v1
// path prefix. gemini-2.5-flash handles Thai legal text well and is the
// usual chat choice; gemini-embedding-001 (3072 dim) for embeddings.
//
// API key: set via config or GEMINI_API_KEY env var.
type geminiProvider struct {
	c client
}

// NewGemini creates a provider for Google Gemini.
func NewGemini(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	return &geminiProvider{c: newClient(cfg, "")}
}

func (p *geminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.c.chat(ctx, req)
}

func (p *geminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return p.c.embed(ctx, texts)
}
