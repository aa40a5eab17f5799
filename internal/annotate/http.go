package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/util"
)

// HTTPAnnotator talks to a spaCy-style annotation service over JSON:
//
//	POST /parse {"text": ...} -> {"tokens": [...]}
//	POST /coref {"text": ...} -> {"tokens": [...], "clusters": [...]}
//	GET  /health
type HTTPAnnotator struct {
	baseURL    string
	httpClient *http.Client
}

type annotateRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Tokens []model.Token `json:"tokens"`
}

type corefResponse struct {
	Tokens   []string        `json:"tokens"`
	Clusters []model.Cluster `json:"clusters"`
}

type serviceError struct {
	Error string `json:"error"`
}

// DefaultServiceURL is where the http provider looks for the annotation
// service when no base URL is configured
const DefaultServiceURL = "http://localhost:8000"

// NewHTTPAnnotator creates a client for the annotation service at cfg.BaseURL
func NewHTTPAnnotator(cfg model.ServiceConfig) (*HTTPAnnotator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultServiceURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAnnotator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
	}, nil
}

// Name returns the backend name
func (a *HTTPAnnotator) Name() string {
	return "http"
}

// IsAvailable checks that the service answers its health endpoint
func (a *HTTPAnnotator) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Annotation service check failed (request creation): %v\n", err)
		return false
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Annotation service check failed (connection to %s): %v\n", a.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Annotation service check failed (HTTP %d from %s)\n", resp.StatusCode, a.baseURL)
		return false
	}

	return true
}

// Parse dependency-parses a sentence
func (a *HTTPAnnotator) Parse(ctx context.Context, sentence string) ([]model.Token, error) {
	var resp parseResponse
	if err := a.post(ctx, "/parse", sentence, &resp); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := validateTokens(resp.Tokens); err != nil {
		return nil, fmt.Errorf("parse: %w: %v", model.ErrParseFailure, err)
	}

	return resp.Tokens, nil
}

// Resolve runs coreference resolution over a document
func (a *HTTPAnnotator) Resolve(ctx context.Context, document string) (*model.Document, error) {
	var resp corefResponse
	if err := a.post(ctx, "/coref", document, &resp); err != nil {
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

// post sends text to an endpoint and decodes the JSON reply into out
func (a *HTTPAnnotator) post(ctx context.Context, path string, text string, out interface{}) error {
	body, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr serviceError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("service error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("service error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
