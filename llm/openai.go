package llm

import "context"

// openAIProvider talks to the OpenAI API. The default embedding model
// is text-embedding-3-small (1536 dim); multilingual coverage is good
// enough for Thai case summaries.
//
// API key: set via config or the OPENAI_API_KEY env var.
type openAIProvider struct {
	c client
}

// NewOpenAI creates a provider for OpenAI.
func NewOpenAI(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	return &openAIProvider{c: newClient(cfg, "/v1")}
}

func (p *openAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.c.chat(ctx, req)
}

func (p *openAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return p.c.embed(ctx, texts)
}

// customProvider covers any other OpenAI-compatible endpoint (LM
// Studio, vLLM, a gateway). BaseURL is required; no defaults apply.
type customProvider struct {
	c client
}

// NewCustom creates a provider for a generic OpenAI-compatible server.
func NewCustom(cfg Config) Provider {
	return &customProvider{c: newClient(cfg, "/v1")}
}

func (p *customProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.c.chat(ctx, req)
}

func (p *customProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return p.c.embed(ctx, texts)
}
