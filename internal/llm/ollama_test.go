package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkozlov/bucketeer/internal/common"
)

func TestOllamaGenerate(t *testing.T) {
	var gotReq ollamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:    gotReq.Model,
			Response: "Row 0: Transportation\n",
			Done:     true,
		})
	}))
	defer server.Close()

	client, err := newOllamaClient(Config{Model: "llama3.1:8b", BaseURL: server.URL})
	require.NoError(t, err)

	got, err := client.Generate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "Row 0: Transportation", got)

	assert.Equal(t, "llama3.1:8b", gotReq.Model)
	assert.Equal(t, "prompt text", gotReq.Prompt)
	assert.False(t, gotReq.Stream)
	assert.InDelta(t, 0.3, gotReq.Options.Temperature, 0.001)
}

func TestOllamaGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	client, err := newOllamaClient(Config{Model: "missing", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaGenerateEmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "   ", Done: true})
	}))
	defer server.Close()

	client, err := newOllamaClient(Config{Model: "llama3.1:8b", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, common.ErrEmptyReply)
}

func TestOllamaRequiresModel(t *testing.T) {
	_, err := newOllamaClient(Config{})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestOllamaAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := newOllamaClient(Config{Model: "llama3.1:8b", BaseURL: server.URL})
	require.NoError(t, err)

	oc, ok := client.(*ollamaClient)
	require.True(t, ok)
	assert.True(t, oc.Available(context.Background()))
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "palm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported generation provider")
}
