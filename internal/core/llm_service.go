package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/industryverse/backend/internal/apperr"
	"github.com/industryverse/backend/internal/config"
	"github.com/industryverse/backend/internal/store"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1500

	// maxHistoryTurns bounds the window of turns sent upstream. The full
	// history still persists; only the request payload is truncated.
	maxHistoryTurns = 20

	streamPrefix   = "data: "
	streamSentinel = "[DONE]"

	mockReply = "This is a simulated AI response. Configure your LLM API key to enable real responses. " +
		"Your question has been received and in production this request would reach a hosted model to provide expert industry guidance."
	mockWordDelay = 30 * time.Millisecond
)

// LLMService bridges an OpenAI-compatible streaming chat-completion API to a
// per-chunk callback. With no API key configured it degrades to a
// deterministic mock so the system stays usable without upstream access.
type LLMService struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string

	// mockDelay is the pause between mock words; tests set it to zero.
	mockDelay time.Duration
}

func NewLLMService(cfg *config.Config) *LLMService {
	return &LLMService{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		apiKey:     cfg.OpenAIAPIKey,
		baseURL:    strings.TrimSuffix(cfg.OpenAIBaseURL, "/"),
		model:      cfg.OpenAIModel,
		mockDelay:  mockWordDelay,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamChatCompletion sends the instruction plus the turn list upstream with
// streaming enabled, forwards every decoded text fragment to onChunk, and
// returns the accumulated reply. A failure to reach the upstream at all maps
// to a 502; once the stream is open, termination is treated as completion
// with whatever text accumulated.
func (s *LLMService) StreamChatCompletion(ctx context.Context, systemPrompt string, turns []store.ChatTurn, onChunk func(content string) error) (string, error) {
	if s.apiKey == "" {
		return s.streamMock(ctx, onChunk)
	}

	messages := make([]chatMessage, 0, len(turns)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	windowed := turns
	if len(windowed) > maxHistoryTurns {
		windowed = windowed[len(windowed)-maxHistoryTurns:]
	}
	for _, turn := range windowed {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Stream:      true,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperr.Unavailable("Assistant is temporarily unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperr.Unavailable("Assistant is temporarily unavailable",
			fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	return s.decodeStream(ctx, resp.Body, onChunk)
}

// decodeStream reads the line-delimited event stream. Only lines carrying the
// data marker are considered; the terminal sentinel is not an error, and a
// malformed line is skipped without aborting the stream.
func (s *LLMService) decodeStream(ctx context.Context, body io.Reader, onChunk func(string) error) (string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var full strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, streamPrefix) {
			continue
		}
		data := strings.TrimPrefix(line, streamPrefix)
		if data == streamSentinel {
			continue
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log.Printf("Skipping malformed stream line: %v", err)
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		full.WriteString(content)
		if err := onChunk(content); err != nil {
			return full.String(), err
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			// Caller went away; let the controller skip persistence.
			return full.String(), ctx.Err()
		}
		// Partial-stream failure: no retry, completion with what we have.
		log.Printf("Upstream stream ended early: %v", err)
	}

	return full.String(), nil
}

// streamMock emits a fixed sentence word-by-word with a fixed cadence.
// Identical configuration always yields identical chunks and reply.
func (s *LLMService) streamMock(ctx context.Context, onChunk func(string) error) (string, error) {
	for _, word := range strings.Split(mockReply, " ") {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := onChunk(word + " "); err != nil {
			return "", err
		}
		if s.mockDelay > 0 {
			time.Sleep(s.mockDelay)
		}
	}
	return mockReply, nil
}
