package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibesync/vibesync/internal/domain"
)

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Suggestion
		wantErr bool
	}{
		{
			name: "plain json",
			text: `{"title":"Stargaze","description":"Find a dark spot and watch the sky.","category":"Adventure"}`,
			want: Suggestion{Title: "Stargaze", Description: "Find a dark spot and watch the sky.", Category: "Adventure"},
		},
		{
			name: "markdown fenced",
			text: "```json\n{\"title\":\"Stargaze\",\"description\":\"Watch the sky.\",\"category\":\"Adventure\"}\n```",
			want: Suggestion{Title: "Stargaze", Description: "Watch the sky.", Category: "Adventure"},
		},
		{
			name:    "missing title",
			text:    `{"description":"something","category":"Fun"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			text:    "Sure! Here is an idea for you two:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestion(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPrompt_IncludesHistory(t *testing.T) {
	task := domain.NewTask("a_b", "Cook together", "Make dinner.", "Quality Time", true)
	task.SetFeedback(uuid.New(), 2, "too much prep")

	prompt := buildPrompt([]*domain.Task{task})

	assert.Contains(t, prompt, "Cook together")
	assert.Contains(t, prompt, "2/5")
	assert.Contains(t, prompt, "too much prep")
	assert.NotContains(t, prompt, "No previous history.")

	assert.Contains(t, buildPrompt(nil), "No previous history.")
}

func TestGeminiGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "models/gemini-pro:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{
						"text": "```json\n{\"title\":\"Swap playlists\",\"description\":\"Trade three songs each.\",\"category\":\"Fun\"}\n```",
					}},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	g := NewGeminiGenerator("test-key", "gemini-pro", server.URL, 0, nil)

	got, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Swap playlists", got.Title)
	assert.Equal(t, "Fun", got.Category)
}

func TestGeminiGenerator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := NewGeminiGenerator("test-key", "gemini-pro", server.URL, 0, nil)

	_, err := g.Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestGeminiGenerator_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g := NewGeminiGenerator("test-key", "gemini-pro", server.URL, 0, nil)

	_, err := g.Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestFallbackAlwaysComplete(t *testing.T) {
	for i := 0; i < 20; i++ {
		s := Fallback()
		assert.NotEmpty(t, s.Title)
		assert.NotEmpty(t, s.Description)
		assert.NotEmpty(t, s.Category)
	}
}
