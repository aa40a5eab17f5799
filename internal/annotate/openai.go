package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIAnnotator asks a chat model to act as parser and coreference
// resolver, constrained to JSON output
type OpenAIAnnotator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIAnnotator creates a new OpenAI-backed annotator
func NewOpenAIAnnotator(cfg model.ServiceConfig) (*OpenAIAnnotator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPProxy != "" || cfg.HTTPSProxy != "" {
		clientConfig.HTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		}
	}

	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIAnnotator{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   m,
		timeout: timeout,
	}, nil
}

// Name returns the backend name
func (a *OpenAIAnnotator) Name() string {
	return "openai"
}

// IsAvailable checks that the API key works
func (a *OpenAIAnnotator) IsAvailable(ctx context.Context) bool {
	_, err := a.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Parse dependency-parses a sentence
func (a *OpenAIAnnotator) Parse(ctx context.Context, sentence string) ([]model.Token, error) {
	var resp parseResponse
	if err := a.complete(ctx, parseSystemPrompt, sentence, &resp); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := validateTokens(resp.Tokens); err != nil {
		return nil, fmt.Errorf("parse: %w: %v", model.ErrParseFailure, err)
	}

	return resp.Tokens, nil
}

// Resolve runs coreference resolution over a document
func (a *OpenAIAnnotator) Resolve(ctx context.Context, document string) (*model.Document, error) {
	var resp corefResponse
	if err := a.complete(ctx, corefSystemPrompt, document, &resp); err != nil {
		return nil, fmt.Errorf("coref: %w", err)
	}

	if len(resp.Tokens) == 0 {
		return nil, nil
	}

	doc := &model.Document{Tokens: resp.Tokens, Clusters: resp.Clusters}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("coref: %w: %v", model.ErrCoreferenceUnavailable, err)
	}

	return doc, nil
}

// complete runs one JSON-mode chat completion and decodes it into out
func (a *OpenAIAnnotator) complete(ctx context.Context, system string, text string, out interface{}) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	resp, err := a.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}

	return nil
}

const parseSystemPrompt = `You are an English dependency parser using spaCy's ClearNLP label set (nsubj, nsubjpass, dobj, pobj, prep, det, amod, compound, aux, ROOT, punct, ...).

Tokenize the user's sentence the way spaCy does (punctuation and clitics such as "n't" and "'s" are separate tokens) and parse it.

Respond with JSON only:
{"tokens": [{"text": "The", "dep": "det", "i": 0, "children": []}, ...]}

"i" is the token's position starting at 0. "children" lists the positions of the token's syntactic dependents.`

const corefSystemPrompt = `You are an English coreference resolver.

Tokenize the user's text the way spaCy does (punctuation and clitics such as "n't" and "'s" are separate tokens). Group mentions that refer to the same entity into clusters. Only output clusters with at least two mentions. For each cluster, "main" is the most representative mention (usually the first full noun phrase).

Respond with JSON only:
{"tokens": ["The", "trophy", ...], "clusters": [{"main": {"start": 0, "end": 2, "text": "The trophy"}, "mentions": [{"start": 0, "end": 2, "text": "The trophy"}, {"start": 8, "end": 9, "text": "it"}]}]}

"start" and "end" are token positions; "end" is exclusive.`
