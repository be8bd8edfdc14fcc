package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/livenotes-ai/livenotes/pkg/config"
)

const defaultModel = "gpt-4o-mini"

const briefSystemPrompt = `You are a meeting assistant. Generate concise briefings from meeting transcripts.

Your briefing should include:
1. Main topics being discussed
2. Key decisions made
3. Action items mentioned
4. Current discussion focus

Keep it concise and informative.`

const answerSystemPrompt = `You are an AI assistant in a live meeting. Answer questions based on the meeting discussion.

Guidelines:
- Be concise and natural
- Base answers on the meeting context provided
- If information isn't in the context, say so politely
- Keep responses suitable for speaking aloud in a meeting
- Aim for 2-3 sentences`

const keyPointsSystemPrompt = "Extract 3-5 key bullet points from this meeting brief. Return only the bullet points, one per line."

const speakersSystemPrompt = "Extract unique speaker names/identifiers from this transcript. Return as a comma-separated list."

// OpenAIClient is a minimal client for OpenAI chat completion calls
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAIClient creates an OpenAI client using values from the provided
// config. Pass a nil config to fall back to environment variables.
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("OPENAI_API_URL")
		if base == "" {
			base = "https://api.openai.com"
		}
	}

	model := defaultModel
	if cfg != nil && cfg.Model != "" {
		model = cfg.Model
	}

	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ChatMessage is one message in a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateBrief summarizes the transcript and extracts key bullet points.
// Key-point extraction failures degrade to an empty list rather than
// failing the brief.
func (c *OpenAIClient) GenerateBrief(ctx context.Context, transcript string) (string, []string, error) {
	userPrompt := fmt.Sprintf("Transcript:\n%s\n\nGenerate a brief meeting summary.", transcript)

	brief, err := c.chat(ctx, []ChatMessage{
		{Role: "system", Content: briefSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, 0.7, 500)
	if err != nil {
		return "", nil, err
	}

	points, err := c.chat(ctx, []ChatMessage{
		{Role: "system", Content: keyPointsSystemPrompt},
		{Role: "user", Content: brief},
	}, 0.3, 200)
	if err != nil {
		return brief, []string{}, nil
	}

	return brief, parseKeyPoints(points), nil
}

// GenerateAnswer produces a spoken-style answer to a question using the
// given meeting context
func (c *OpenAIClient) GenerateAnswer(ctx context.Context, question, meetingContext string) (string, error) {
	userPrompt := fmt.Sprintf("Meeting context:\n%s\n\nQuestion: %s\n\nProvide a natural, concise response suitable for speaking in the meeting.", meetingContext, question)

	return c.chat(ctx, []ChatMessage{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, 0.7, 150)
}

// ExtractSpeakers pulls the unique speaker identifiers out of a transcript
func (c *OpenAIClient) ExtractSpeakers(ctx context.Context, transcript string) ([]string, error) {
	content, err := c.chat(ctx, []ChatMessage{
		{Role: "system", Content: speakersSystemPrompt},
		{Role: "user", Content: transcript},
	}, 0.3, 100)
	if err != nil {
		return nil, err
	}

	var speakers []string
	for _, part := range strings.Split(content, ",") {
		if s := strings.TrimSpace(part); s != "" {
			speakers = append(speakers, s)
		}
	}
	return speakers, nil
}

func (c *OpenAIClient) chat(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error) {
	reqBody := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai returned status %d", resp.StatusCode)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}
	return cr.Choices[0].Message.Content, nil
}

func parseKeyPoints(content string) []string {
	points := []string{}
	for _, line := range strings.Split(content, "\n") {
		point := strings.Trim(line, "-•* \t")
		if point == "" {
			continue
		}
		points = append(points, point)
		if len(points) == 5 {
			break
		}
	}
	return points
}
