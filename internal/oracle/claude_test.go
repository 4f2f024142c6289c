// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/book-engine/pkg/types"
)

// withTestServer points the package at a local test server for the
// duration of one test.
func withTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() {
		claudeAPIURL = old
		ts.Close()
	})
	return ts
}

func textResponse(text string) []byte {
	data, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return data
}

func TestCompleteSendsRequest(t *testing.T) {
	var gotReq claudeRequest
	var gotAPIKey, gotVersion string
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Error(err)
		}
		w.Write(textResponse("drafted section"))
	})

	c := NewClient(types.AIConfig{Model: "test-model", APIKey: "sk-test"}, nil)
	got, err := c.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatal(err)
	}

	if got != "drafted section" {
		t.Errorf("response = %q", got)
	}
	if gotAPIKey != "sk-test" {
		t.Errorf("x-api-key = %q", gotAPIKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotReq.Model != "test-model" || gotReq.System != "system prompt" {
		t.Errorf("request = %+v", gotReq)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "user prompt" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestCompleteSkipsNonTextBlocks(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		data, _ := json.Marshal(map[string]any{
			"content": []map[string]string{
				{"type": "thinking", "text": "internal"},
				{"type": "text", "text": "the answer"},
			},
		})
		w.Write(data)
	})

	c := NewClient(types.AIConfig{Model: "m"}, nil)
	got, err := c.Complete(context.Background(), "", "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "the answer" {
		t.Errorf("response = %q", got)
	}
}

func TestCompleteAPIError(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid model"}}`))
	})

	c := NewClient(types.AIConfig{Model: "bad"}, nil)
	_, err := c.Complete(context.Background(), "", "prompt")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v", err)
	}
}

func TestCompleteNoTextContent(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content": []}`))
	})

	c := NewClient(types.AIConfig{Model: "m"}, nil)
	if _, err := c.Complete(context.Background(), "", "prompt"); err == nil {
		t.Error("expected error for empty content")
	}
}
