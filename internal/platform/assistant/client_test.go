package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("missing bearer key, got %q", got)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Prompt == "" {
			t.Error("prompt not forwarded")
		}
		json.NewEncoder(w).Encode(generateResponse{Text: "take two daily"})
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, APIKey: "secret"})
	text, err := c.Generate(context.Background(), "how often should I take this?", "patient")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "take two daily" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestGenerateNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})
	if _, err := c.Generate(context.Background(), "hi", ""); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestGenerateEmptyTextIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Text: ""})
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})
	if _, err := c.Generate(context.Background(), "hi", ""); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestGenerateTransportError(t *testing.T) {
	c := NewClient(Config{URL: "http://127.0.0.1:1"})
	if _, err := c.Generate(context.Background(), "hi", ""); err == nil {
		t.Fatal("expected transport error")
	}
}
