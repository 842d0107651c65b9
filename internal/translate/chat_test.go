package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatReply wraps content in a chat-completions response envelope.
func chatReply(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func translationsContent(t *testing.T, translations []string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"translations": translations})
	require.NoError(t, err)
	return string(b)
}

// newTestClient wires a ChatClient to a test server and records sleeps.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*ChatClient, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewChatClient(ChatConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	})
	sleeps := &[]time.Duration{}
	c.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	c.jitter = func() float64 { return 0 }
	return c, sleeps
}

func TestTranslateBatchSuccess(t *testing.T) {
	var gotReq chatRequest
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write(chatReply(t, translationsContent(t, []string{"Hello", "World"})))
	})

	out := c.TranslateBatch(context.Background(), []string{"こんにちは", "世界"}, "ja", "en")
	assert.Equal(t, []string{"Hello", "World"}, out)
	assert.Empty(t, *sleeps)

	// The user message carries the strict JSON contract.
	require.Len(t, gotReq.Messages, 2)
	assert.Contains(t, gotReq.Messages[0].Content, "JSON only")
	var payload batchPayload
	require.NoError(t, json.Unmarshal([]byte(gotReq.Messages[1].Content), &payload))
	assert.Equal(t, []string{"こんにちは", "世界"}, payload.Segments)
	assert.Contains(t, payload.Instructions, "same length as segments")
}

func TestTranslateBatchFoldsChineseTags(t *testing.T) {
	var payload batchPayload
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NoError(t, json.Unmarshal([]byte(req.Messages[1].Content), &payload))
		_, _ = w.Write(chatReply(t, translationsContent(t, []string{"hi"})))
	})

	c.TranslateBatch(context.Background(), []string{"你好"}, "ch_sim", "en")
	assert.Equal(t, "zh", payload.SourceLanguage)
}

func TestTranslateBatchStripsMarkdownFence(t *testing.T) {
	content := "```json\n" + translationsContent(t, []string{"ok"}) + "\n```"
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(chatReply(t, content))
	})

	out := c.TranslateBatch(context.Background(), []string{"x"}, "ja", "en")
	assert.Equal(t, []string{"ok"}, out)
}

func TestTranslateBatchRetryAfterHonored(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(chatReply(t, translationsContent(t, []string{"a", "b"})))
	})

	out := c.TranslateBatch(context.Background(), []string{"x", "y"}, "ja", "en")
	assert.Equal(t, []string{"a", "b"}, out)
	assert.Equal(t, 2, attempts)
	require.Len(t, *sleeps, 1)
	assert.Equal(t, 2*time.Second, (*sleeps)[0])
}

func TestTranslateBatchExponentialBackoffWithoutHeader(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(chatReply(t, translationsContent(t, []string{"a"})))
	})

	out := c.TranslateBatch(context.Background(), []string{"x"}, "ja", "en")
	assert.Equal(t, []string{"a"}, out)
	// 2^0 and 2^1 seconds with zero jitter.
	require.Len(t, *sleeps, 2)
	assert.Equal(t, 1*time.Second, (*sleeps)[0])
	assert.Equal(t, 2*time.Second, (*sleeps)[1])
}

func TestTranslateBatchBackoffCapped(t *testing.T) {
	c := NewChatClient(ChatConfig{APIKey: "k"})
	c.jitter = func() float64 { return 1.0 }
	assert.Equal(t, maxBackoff, c.backoffDelay("", 10))
	assert.Equal(t, maxBackoff, c.backoffDelay("120", 0))
	assert.Equal(t, 3*time.Second, c.backoffDelay("3", 0))
}

func TestTranslateBatchQuotaExhaustionAbortsImmediately(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = fmt.Fprint(w, `{"error":{"type":"insufficient_quota"}}`)
	})

	out := c.TranslateBatch(context.Background(), []string{"x", "y"}, "ja", "en")
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *sleeps)
	for i, s := range out {
		assert.True(t, IsFailureTagged(s), "item %d should be failure tagged", i)
		assert.Contains(t, s, "insufficient_quota")
	}
}

func TestTranslateBatchNon429ErrorIsFatal(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		http.Error(w, "server exploded", http.StatusInternalServerError)
	})

	out := c.TranslateBatch(context.Background(), []string{"x"}, "ja", "en")
	assert.Equal(t, 1, attempts)
	require.Len(t, out, 1)
	assert.True(t, IsFailureTagged(out[0]))
	assert.Contains(t, out[0], "status 500")
	assert.True(t, strings.HasSuffix(out[0], " x"), "original text preserved after the tag")
}

func TestTranslateBatchWrongLengthRetriedThenTagged(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		_, _ = w.Write(chatReply(t, translationsContent(t, []string{"only one"})))
	})

	texts := []string{"x", "y", "z"}
	out := c.TranslateBatch(context.Background(), texts, "ja", "en")
	assert.Equal(t, 5, attempts, "shape mismatch retries up to max_retries")
	assert.Len(t, *sleeps, 5)
	require.Len(t, out, 3)
	for i, s := range out {
		assert.True(t, IsFailureTagged(s))
		assert.True(t, strings.HasSuffix(s, " "+texts[i]))
	}
}

func TestTranslateBatchParseErrorShortDelay(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			_, _ = w.Write(chatReply(t, "sorry, here are your translations: ..."))
			return
		}
		_, _ = w.Write(chatReply(t, translationsContent(t, []string{"ok"})))
	})

	out := c.TranslateBatch(context.Background(), []string{"x"}, "ja", "en")
	assert.Equal(t, []string{"ok"}, out)
	require.Len(t, *sleeps, 1)
	assert.Less(t, (*sleeps)[0], 3*time.Second, "parse hiccups wait briefly, not exponentially")
}

func TestTranslateBatchTransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from now on

	c := NewChatClient(ChatConfig{BaseURL: srv.URL, APIKey: "k", MaxRetries: 3})
	var sleeps []time.Duration
	c.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	out := c.TranslateBatch(context.Background(), []string{"x"}, "ja", "en")
	assert.Len(t, sleeps, 3)
	require.Len(t, out, 1)
	assert.True(t, IsFailureTagged(out[0]))
}

func TestTranslateBatchMissingKeyShortCircuits(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) { attempts++ })
	c.cfg.APIKey = ""

	out := c.TranslateBatch(context.Background(), []string{"x", "y"}, "ja", "en")
	assert.Equal(t, 0, attempts)
	assert.Equal(t, []string{MissingKeyPrefix + " x", MissingKeyPrefix + " y"}, out)
}

func TestTranslateBatchEmptyInput(t *testing.T) {
	c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	assert.Empty(t, c.TranslateBatch(context.Background(), nil, "ja", "en"))
}

func TestTranslateBatchEmptyTranslationFallsBackToOriginal(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(chatReply(t, translationsContent(t, []string{"hi", ""})))
	})

	out := c.TranslateBatch(context.Background(), []string{"x", "y"}, "ja", "en")
	assert.Equal(t, []string{"hi", "y"}, out)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
