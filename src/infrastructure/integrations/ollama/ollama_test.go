package ollama

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/src/core/rag"
)

func testClient(serverURL string) *Client {
	return NewClient(serverURL, http.DefaultClient, "embed-model", "gen-model", 3)
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		fmt.Fprint(w, `{"embedding":[0.1,0.2,0.3]}`)
	}))
	defer srv.Close()

	vector, err := testClient(srv.URL).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestEmbedStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   rag.Reason
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: rag.ReasonAuth},
		{name: "rate limited", status: http.StatusTooManyRequests, want: rag.ReasonQuota},
		{name: "missing model", status: http.StatusNotFound, want: rag.ReasonModelUnavailable},
		{name: "server error", status: http.StatusInternalServerError, want: rag.ReasonNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).Embed(context.Background(), "hello")
			require.Error(t, err)
			assert.Equal(t, tt.want, rag.FailureReason(err))
		})
	}
}

func TestEmbedEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":[]}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, rag.ReasonModelUnavailable, rag.FailureReason(err))
}

func TestGenerateStreams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		fmt.Fprintln(w, `{"response":"Hel","done":false}`)
		fmt.Fprintln(w, `{"response":"lo","done":false}`)
		fmt.Fprintln(w, `{"response":"!","done":true}`)
	}))
	defer srv.Close()

	stream, err := testClient(srv.URL).Generate(context.Background(), rag.GenerateRequest{
		System: "sys",
		Prompt: "say hello",
		Params: rag.SamplingParams{Temperature: 0.9, TopP: 0.9, TopK: 1, MaxTokens: 128},
	})
	require.NoError(t, err)
	defer stream.Close()

	var sb strings.Builder
	for token := range stream.Tokens() {
		sb.WriteString(token)
	}
	assert.Equal(t, "Hello!", sb.String())
	assert.NoError(t, stream.Err())
}

func TestGenerateSendsSamplingOptions(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		body = string(buf)
		fmt.Fprintln(w, `{"response":"ok","done":true}`)
	}))
	defer srv.Close()

	stream, err := testClient(srv.URL).Generate(context.Background(), rag.GenerateRequest{
		Prompt: "q",
		Params: rag.SamplingParams{Temperature: 0.2, TopP: 0.7, TopK: 40, MaxTokens: 64},
	})
	require.NoError(t, err)
	for range stream.Tokens() {
	}

	assert.Contains(t, body, `"temperature":0.2`)
	assert.Contains(t, body, `"top_p":0.7`)
	assert.Contains(t, body, `"top_k":40`)
	assert.Contains(t, body, `"num_predict":64`)
	assert.Contains(t, body, `"model":"gen-model"`)
}

func TestGenerateTruncatedStream(t *testing.T) {
	// Connection closes without a done marker; the partial answer stands.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"partial","done":false}`)
	}))
	defer srv.Close()

	stream, err := testClient(srv.URL).Generate(context.Background(), rag.GenerateRequest{Prompt: "q"})
	require.NoError(t, err)

	var sb strings.Builder
	for token := range stream.Tokens() {
		sb.WriteString(token)
	}
	assert.Equal(t, "partial", sb.String())
	assert.NoError(t, stream.Err())
}

func TestGenerateMidStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"some","done":false}`)
		fmt.Fprintln(w, `{"error":"quota exceeded for today"}`)
	}))
	defer srv.Close()

	stream, err := testClient(srv.URL).Generate(context.Background(), rag.GenerateRequest{Prompt: "q"})
	require.NoError(t, err)

	for range stream.Tokens() {
	}
	require.Error(t, stream.Err())
	assert.True(t, rag.IsQuota(stream.Err()))
}

func TestGenerateImmediateFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), rag.GenerateRequest{Prompt: "q"})
	require.Error(t, err)
	assert.Equal(t, rag.ReasonAuth, rag.FailureReason(err))
}

func TestClassifyBodyHeuristics(t *testing.T) {
	tests := []struct {
		body string
		want rag.Reason
	}{
		{body: "invalid api key", want: rag.ReasonAuth},
		{body: "rate limit exceeded", want: rag.ReasonQuota},
		{body: "no such model loaded", want: rag.ReasonModelUnavailable},
		{body: "blocked by safety settings", want: rag.ReasonContentFiltered},
		{body: "something else entirely", want: rag.ReasonNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(0, tt.body))
		})
	}
}
