// Package ai generates daily couple activities via the Gemini API, with a
// static fallback so task creation never depends on the model being up.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/vibesync/vibesync/internal/domain"
	"github.com/vibesync/vibesync/lib/logger/sl"
)

// Suggestion is the generator's output: the fields a new task is built from.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Generator produces one activity suggestion given the couple's recent
// feedback history.
type Generator interface {
	Generate(ctx context.Context, history []*domain.Task) (Suggestion, error)
}

var fallbackSuggestions = []Suggestion{
	{
		Title:       "Share a childhood memory",
		Description: "Take turns sharing a funny or meaningful memory from when you were under 10 years old.",
		Category:    "Deep Talk",
	},
	{
		Title:       "Cook something neither of you has made",
		Description: "Pick a recipe from a cuisine you have never cooked and make it together tonight.",
		Category:    "Quality Time",
	},
	{
		Title:       "Write each other a one-line note",
		Description: "Leave a short handwritten note somewhere your partner will find it today.",
		Category:    "Affection",
	},
	{
		Title:       "Plan a tiny adventure",
		Description: "Choose somewhere within 30 minutes of home that neither of you has been, and go this week.",
		Category:    "Adventure",
	},
	{
		Title:       "Swap favorite songs",
		Description: "Each of you picks one song the other has probably never heard, then listen together.",
		Category:    "Fun",
	},
}

// Fallback returns a static suggestion. Exported so the task service can
// reuse it when the configured generator errors out.
func Fallback() Suggestion {
	return fallbackSuggestions[rand.Intn(len(fallbackSuggestions))]
}

// StaticGenerator always falls back. Used when no API key is configured
// and as a test double.
type StaticGenerator struct{}

func (StaticGenerator) Generate(_ context.Context, _ []*domain.Task) (Suggestion, error) {
	return Fallback(), nil
}

// GeminiGenerator calls the Gemini generateContent endpoint.
type GeminiGenerator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewGeminiGenerator(apiKey, model, baseURL string, timeout time.Duration, log *slog.Logger) *GeminiGenerator {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiGenerator{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiGenerator) Generate(ctx context.Context, history []*domain.Task) (Suggestion, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(history)}}}},
	})
	if err != nil {
		return Suggestion{}, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Suggestion{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Suggestion{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Suggestion{}, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Suggestion{}, err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Suggestion{}, fmt.Errorf("gemini returned no candidates")
	}

	suggestion, err := parseSuggestion(out.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		g.log.Warn("unparseable gemini response", sl.Err(err))
		return Suggestion{}, err
	}
	return suggestion, nil
}

func buildPrompt(history []*domain.Task) string {
	historyContext := "No previous history."
	if len(history) > 0 {
		lines := make([]string, 0, len(history))
		for _, t := range history {
			ratings := make([]string, 0, len(t.Feedback))
			comments := make([]string, 0, len(t.Feedback))
			for _, f := range t.Feedback {
				ratings = append(ratings, fmt.Sprintf("%d/5", f.Rating))
				if f.Comment != "" {
					comments = append(comments, fmt.Sprintf("%q", f.Comment))
				}
			}
			lines = append(lines, fmt.Sprintf("- Task: %q (%s). Ratings: [%s]. Comments: [%s]",
				t.Title, t.Category, strings.Join(ratings, ", "), strings.Join(comments, "; ")))
		}
		historyContext = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`Generate one simple, engaging daily activity for a couple to do today to strengthen their relationship.

Couple's Activity History & Feedback:
%s

Instructions:
- Analyze the feedback. If ratings are low, try a different category. If high, do similar but new things.
- Avoid repeating previous tasks.
- Response must be strictly JSON with keys: title, description, category.`, historyContext)
}

// parseSuggestion tolerates the markdown fences models like to wrap JSON in.
func parseSuggestion(text string) (Suggestion, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var s Suggestion
	if err := json.Unmarshal([]byte(clean), &s); err != nil {
		return Suggestion{}, err
	}
	if s.Title == "" || s.Description == "" {
		return Suggestion{}, fmt.Errorf("suggestion missing title or description")
	}
	return s, nil
}
