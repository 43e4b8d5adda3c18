package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrInvalidRewrite is returned when the model reply is not a usable article.
var ErrInvalidRewrite = errors.New("ai: invalid rewrite response")

// Rewriter rewrites a news article into an original piece in the given language.
type Rewriter interface {
	RewriteArticle(ctx context.Context, title, content, language string) (string, string, error)
}

// OpenAIClient implements Rewriter using the Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("ai: model must be specified")
	}
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	return &OpenAIClient{client: c, model: cfg.Model}, nil
}

type rewrite struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// RewriteArticle asks the model for a JSON object {"title","content"}.
// Any reply without both fields is ErrInvalidRewrite.
func (o *OpenAIClient) RewriteArticle(ctx context.Context, title, content, language string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()
	content = strings.TrimSpace(content)
	if content == "" {
		content = title
	}
	if len([]rune(content)) > 4000 {
		content = string([]rune(content)[:4000])
	}

	sys := fmt.Sprintf(`
		You are a sports journalist. Rewrite the football news article below in %s as an original piece.
		Keep every fact, name and score. Do not invent details.
		Reply with a JSON object only: {"title": "...", "content": "..."}.
		`, langOrDefault(language))
	user := fmt.Sprintf("Title: %s\nContent: %s", title, content)
	out, err := o.create(ctx, sys, user)
	if err != nil {
		slog.Error("openai: rewrite article error", "err", err)
		return "", "", err
	}
	return parseRewrite(out)
}

// parseRewrite extracts the article from a model reply, tolerating a fenced code block.
func parseRewrite(out string) (string, string, error) {
	s := strings.TrimSpace(out)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", fmt.Errorf("%w: empty reply", ErrInvalidRewrite)
	}
	var r rewrite
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidRewrite, err)
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	if r.Title == "" || r.Content == "" {
		return "", "", fmt.Errorf("%w: missing title or content", ErrInvalidRewrite)
	}
	return r.Title, r.Content, nil
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
