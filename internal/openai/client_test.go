package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteJSON(t *testing.T) {
	var gotReq chatCompletionRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "gpt-4o-mini",
			"choices": [{"message": {"content": "{\"relevance_score\": 0.8, \"reasoning\": \"ok\"}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	client := New("sk-test", WithBaseURL(srv.URL))

	content, err := client.CompleteJSON(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)

	assert.JSONEq(t, `{"relevance_score": 0.8, "reasoning": "ok"}`, string(content))
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "system prompt", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	assert.Equal(t, maxCompletionTokens, gotReq.MaxTokens)
}

func TestCompleteJSON_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New("", WithBaseURL(srv.URL))

	_, err := client.CompleteJSON(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCompleteJSON_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model": "gpt-4o-mini", "choices": []}`))
	}))
	defer srv.Close()

	client := New("sk-test", WithBaseURL(srv.URL))

	_, err := client.CompleteJSON(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}

func TestCompleteJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New("sk-test", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))

	_, err := client.CompleteJSON(context.Background(), "sys", "user")
	assert.Error(t, err)
}

func TestCompleteJSON_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [`))
	}))
	defer srv.Close()

	client := New("sk-test", WithBaseURL(srv.URL))

	_, err := client.CompleteJSON(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
