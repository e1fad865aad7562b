package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeline-ai/citeline/internal/core/ports/driven"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "phi3.5:3.8b-mini-instruct-q4_0", req.Model)
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.InDelta(t, 0.1, req.Options.Temperature, 1e-9)

		_ = json.NewEncoder(w).Encode(generateResponse{
			Response: "Failover begins with DNS cutover [1].",
			Done:     true,
		})
	}))
	t.Cleanup(srv.Close)

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	out, err := svc.Generate(context.Background(), "phi3.5:3.8b-mini-instruct-q4_0",
		"[QUESTION]\nwhat starts failover?", driven.GenerateOptions{Temperature: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "Failover begins with DNS cutover [1].", out)
}

func TestGenerate_OmitsOptionsWhenZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.Options)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	t.Cleanup(srv.Close)

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	_, err := svc.Generate(context.Background(), "llama3.1:8b", "hi", driven.GenerateOptions{})
	require.NoError(t, err)
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model 'missing' not found"}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	_, err := svc.Generate(context.Background(), "missing", "hi", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.1:8b", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "not found"},
			Done:    true,
		})
	}))
	t.Cleanup(srv.Close)

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	out, err := svc.Chat(context.Background(), "llama3.1:8b",
		[]driven.ChatMessage{{Role: "user", Content: "what is the moon made of?"}},
		driven.GenerateOptions{Temperature: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "not found", out)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "llama3.1:8b"},
				{"name": "phi3.5:3.8b-mini-instruct-q4_0"},
			},
		})
	}))
	t.Cleanup(srv.Close)

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.1:8b", "phi3.5:3.8b-mini-instruct-q4_0"}, models)
}

func TestListModels_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
	}))
	t.Cleanup(srv.Close)

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestPing_Unreachable(t *testing.T) {
	svc := NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"})
	require.Error(t, svc.Ping(context.Background()))
}
