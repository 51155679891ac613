package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider is the interface for LLM interactions.
type Provider interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a single-message request from a prompt.
func UserMessage(prompt string) ChatRequest {
	return ChatRequest{Messages: []Message{{Role: "user", Content: prompt}}}
}

// ChatResponse is the response from a chat completion.
type ChatResponse struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	FinishReason     string `json:"finish_reason"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Config configures an LLM provider.
type Config struct {
	Provider string        `json:"provider" yaml:"provider" mapstructure:"provider"` // openai, ollama, lmstudio, openrouter, groq, xai, gemini, custom
	Model    string        `json:"model" yaml:"model" mapstructure:"model"`
	BaseURL  string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	APIKey   string        `json:"-" yaml:"-" mapstructure:"api_key"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// providerDefaults fills in what a provider needs when the config leaves it empty.
type providerDefaults struct {
	baseURL    string
	pathPrefix string
	model      string
}

var defaults = map[string]providerDefaults{
	"openai":     {baseURL: "https://api.openai.com", pathPrefix: "/v1", model: "gpt-4"},
	"ollama":     {baseURL: "http://localhost:11434", pathPrefix: "/v1"},
	"lmstudio":   {baseURL: "http://localhost:1234", pathPrefix: "/v1"},
	"openrouter": {baseURL: "https://openrouter.ai/api", pathPrefix: "/v1"},
	"groq":       {baseURL: "https://api.groq.com/openai", pathPrefix: "/v1", model: "llama-3.3-70b-versatile"},
	"xai":        {baseURL: "https://api.x.ai", pathPrefix: "/v1"},
	// Gemini's OpenAI-compatible endpoint has no /v1 segment.
	"gemini": {baseURL: "https://generativelanguage.googleapis.com/v1beta/openai", model: "gemini-2.5-flash"},
	"custom": {pathPrefix: "/v1"},
}

// NewProvider creates an LLM provider from configuration.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("llm provider not specified")
	}
	d, ok := defaults[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = d.baseURL
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm provider %s requires a base URL", cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = d.model
	}
	return newCompatProvider(cfg, d.pathPrefix), nil
}
