package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/aeoaudit/models"
	"github.com/use-agent/aeoaudit/oracle"
)

func TestComplete_Success(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"score\":1}"}}],"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`))
	}))
	defer srv.Close()

	var usage Usage
	c := NewClient(srv.Client(), Params{APIKey: "sk-test", Model: "gpt-test", BaseURL: srv.URL + "/v1/"}, 0)
	c.OnUsage = func(u Usage) { usage = u }

	raw, err := c.Complete(context.Background(), oracle.Prompts{System: "sys", User: "usr"})
	require.NoError(t, err)

	assert.Equal(t, `{"score":1}`, raw)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "usr"}, got.Messages[1])
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, 13, usage.TotalTokens)
}

func TestComplete_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusUnauthorized, models.ErrCodeOracleAuth},
		{http.StatusForbidden, models.ErrCodeOracleAuth},
		{http.StatusTooManyRequests, models.ErrCodeOracleRateLimit},
		{http.StatusInternalServerError, models.ErrCodeOracleCall},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer srv.Close()

			c := NewClient(srv.Client(), Params{BaseURL: srv.URL}, 0)
			_, err := c.Complete(context.Background(), oracle.Prompts{})

			var ae *models.AuditError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.code, ae.Code)
			assert.Contains(t, ae.Message, "nope")
		})
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), Params{BaseURL: srv.URL}, 0).Complete(context.Background(), oracle.Prompts{})

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleCall, ae.Code)
}

func TestComplete_TimeoutThroughCall(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.Client(), Params{BaseURL: srv.URL}, 0)
	_, err := oracle.Call(context.Background(), c, oracle.Prompts{}, 50*time.Millisecond)

	var ae *models.AuditError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, models.ErrCodeOracleTimeout, ae.Code)
}

func TestComplete_RateLimiterHonoursContext(t *testing.T) {
	c := NewClient(nil, Params{BaseURL: "http://127.0.0.1:0"}, 1)
	// Drain the single burst token.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, oracle.Prompts{})
	assert.Error(t, err)
}
