package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tria-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Chat_RequestShape(t *testing.T) {
	var got chatRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hey there"}}]}`))
	}))
	defer srv.Close()

	p := NewProvider("secret", srv.URL+"/", "llama-3.1-8b-instant", time.Second)
	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be nice"},
		{Role: llm.RoleUser, Content: "hi"},
	}, llm.WithTemperature(0.7), llm.WithMaxTokens(500))

	require.NoError(t, err)
	assert.Equal(t, "hey there", reply)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestProvider_Chat_NoKeyNoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := NewProvider("", srv.URL, "gpt-4o-mini-search-preview", time.Second)
	reply, err := p.Generate(context.Background(), "weather today")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestProvider_Chat_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"non 2xx", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, llm.ErrUpstream},
		{"server error", http.StatusInternalServerError, `oops`, llm.ErrUpstream},
		{"bad json", http.StatusOK, `{not json`, llm.ErrUpstream},
		{"api error body", http.StatusOK, `{"error":{"message":"bad model"}}`, llm.ErrUpstream},
		{"empty choices", http.StatusOK, `{"choices":[]}`, llm.ErrEmptyResponse},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, llm.ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewProvider("k", srv.URL, "m", time.Second)
			_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "x"}})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProvider_Chat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewProvider("k", url, "m", time.Second)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "x"}})
	assert.ErrorIs(t, err, llm.ErrUpstream)
}
