package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ragchat/src/core/rag"
	"ragchat/src/log"
)

const (
	DefaultURL = "http://localhost:11434/api"
)

// EmbeddingRequest represents the request structure for embeddings
type EmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// EmbeddingResponse represents the response structure from embeddings
type EmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// GenerateRequest represents the request structure for model generation
type GenerateRequest struct {
	Model   string                 `json:"model"`
	System  string                 `json:"system"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse represents one line of the streamed generation response
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Client represents an Ollama API client
type Client struct {
	httpClient    *http.Client
	baseURL       string
	embedModel    string
	generateModel string
	dimension     int
}

// NewClient creates a new Ollama API client
func NewClient(baseURL string, c *http.Client, embedModel, generateModel string, dimension int) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if c == nil {
		c = http.DefaultClient
	}

	return &Client{
		httpClient:    c,
		baseURL:       baseURL,
		embedModel:    embedModel,
		generateModel: generateModel,
		dimension:     dimension,
	}
}

func (c *Client) Dimension() int {
	return c.dimension
}

// Embed generates an embedding vector for the given text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := EmbeddingRequest{
		Model:  c.embedModel,
		Prompt: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &rag.EmbeddingError{Reason: rag.ReasonNetwork, Err: fmt.Errorf("error marshaling request: %w", err)}
	}

	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &rag.EmbeddingError{Reason: rag.ReasonNetwork, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &rag.EmbeddingError{Reason: rag.ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &rag.EmbeddingError{
			Reason: classify(resp.StatusCode, string(body)),
			Err:    fmt.Errorf("embeddings returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var result EmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &rag.EmbeddingError{Reason: rag.ReasonNetwork, Err: fmt.Errorf("error decoding response: %w", err)}
	}
	if len(result.Embedding) == 0 {
		return nil, &rag.EmbeddingError{Reason: rag.ReasonModelUnavailable, Err: fmt.Errorf("model %s returned empty embedding", c.embedModel)}
	}

	// Convert float64 to float32
	embedding32 := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		embedding32[i] = float32(v)
	}

	return embedding32, nil
}

// Generate starts a streamed completion. Tokens arrive on the returned
// stream; errors after the first token surface through Stream.Err.
func (c *Client) Generate(ctx context.Context, genReq rag.GenerateRequest) (*rag.Stream, error) {
	reqBody := GenerateRequest{
		Model:  c.generateModel,
		System: genReq.System,
		Prompt: genReq.Prompt,
		Stream: true,
		Options: map[string]interface{}{
			"temperature": genReq.Params.Temperature,
			"top_p":       genReq.Params.TopP,
			"top_k":       genReq.Params.TopK,
			"num_predict": genReq.Params.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &rag.GenerationError{Reason: rag.ReasonNetwork, Err: fmt.Errorf("error marshaling request: %w", err)}
	}

	ctx, cancel := context.WithCancel(ctx)

	url := fmt.Sprintf("%s/generate", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		cancel()
		return nil, &rag.GenerationError{Reason: rag.ReasonNetwork, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, &rag.GenerationError{Reason: rag.ReasonNetwork, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, &rag.GenerationError{
			Reason: classify(resp.StatusCode, string(body)),
			Err:    fmt.Errorf("generate returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	stream := rag.NewStream(cancel)
	go c.pump(ctx, resp.Body, stream)
	return stream, nil
}

func (c *Client) pump(ctx context.Context, body io.ReadCloser, stream *rag.Stream) {
	defer body.Close()

	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// Treat a connection that closes without a done marker as a
				// complete response; Ollama omits the trailing newline on
				// some versions.
				stream.Finish(nil)
				return
			}
			if ctx.Err() != nil {
				stream.Finish(nil)
				return
			}
			stream.Finish(&rag.GenerationError{Reason: rag.ReasonNetwork, Err: fmt.Errorf("error reading response: %w", err)})
			return
		}

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var chunk GenerateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			log.Error(err, "failed to unmarshal response line", "line", string(line))
			stream.Finish(&rag.GenerationError{Reason: rag.ReasonNetwork, Err: fmt.Errorf("error unmarshaling response: %w", err)})
			return
		}

		if chunk.Error != "" {
			stream.Finish(&rag.GenerationError{
				Reason: classify(0, chunk.Error),
				Err:    fmt.Errorf("ollama: %s", chunk.Error),
			})
			return
		}

		if chunk.Response != "" {
			if !stream.Emit(ctx, chunk.Response) {
				stream.Finish(nil)
				return
			}
		}

		if chunk.Done {
			stream.Finish(nil)
			return
		}
	}
}

// classify maps an HTTP status and response body onto a failure reason.
// Status takes precedence; the body heuristics catch providers that report
// failures inside a 200 stream.
func classify(status int, body string) rag.Reason {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return rag.ReasonAuth
	case http.StatusTooManyRequests:
		return rag.ReasonQuota
	case http.StatusNotFound:
		return rag.ReasonModelUnavailable
	}
	if status >= 500 {
		return rag.ReasonNetwork
	}

	lower := strings.ToLower(body)
	switch {
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "api key") || strings.Contains(lower, "forbidden"):
		return rag.ReasonAuth
	case strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests"):
		return rag.ReasonQuota
	case strings.Contains(lower, "not found") || strings.Contains(lower, "no such model") || strings.Contains(lower, "unavailable"):
		return rag.ReasonModelUnavailable
	case strings.Contains(lower, "safety") || strings.Contains(lower, "blocked") || strings.Contains(lower, "content filter"):
		return rag.ReasonContentFiltered
	}
	return rag.ReasonNetwork
}
