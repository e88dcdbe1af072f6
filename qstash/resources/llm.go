package resources

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/qstash-sdk/qstash-go/internal/httpx"
	"github.com/qstash-sdk/qstash-go/internal/sse"
)

const chatCompletionsPath = "/llm/v1/chat/completions"

// LLMResource provides access to chat completions.
type LLMResource struct {
	base    *Base
	metrics *httpx.Metrics
}

// NewLLMResource creates a new LLMResource.
func NewLLMResource(transport *httpx.Transport) *LLMResource {
	return &LLMResource{base: NewBase(transport), metrics: transport.Metrics()}
}

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleUser      ChatRole = "user"
)

// ChatMessage is one message of a conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
	Name    string   `json:"name,omitempty"`
}

// ResponseFormat selects plain text or JSON object output.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatCompletionRequest is the request to create a chat completion.
type ChatCompletionRequest struct {
	Model            string          `json:"model"`
	Messages         []ChatMessage   `json:"messages"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]int  `json:"logit_bias,omitempty"`
	Logprobs         *bool           `json:"logprobs,omitempty"`
	TopLogprobs      *int            `json:"top_logprobs,omitempty"`
	MaxTokens        *int            `json:"max_tokens,omitempty"`
	N                *int            `json:"n,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
	Seed             *int64          `json:"seed,omitempty"`
	Stop             []string        `json:"stop,omitempty"`
	Stream           bool            `json:"stream"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatChoice is one generated alternative of a completion.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatCompletion is a complete, non-streamed response.
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ChunkDelta is the incremental part of a streamed choice.
type ChunkDelta struct {
	Role    ChatRole `json:"role,omitempty"`
	Content string   `json:"content,omitempty"`
}

// ChunkChoice is one choice of a streamed chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason,omitempty"`
}

// ChatCompletionChunk is one event of a streamed completion.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// Content concatenates the delta content of every choice.
func (c *ChatCompletionChunk) Content() string {
	var sb strings.Builder
	for _, choice := range c.Choices {
		sb.WriteString(choice.Delta.Content)
	}
	return sb.String()
}

// Create requests a complete chat completion. req.Stream is ignored.
func (r *LLMResource) Create(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletion, error) {
	body := ChatCompletionRequest{}
	if req != nil {
		body = *req
	}
	body.Stream = false

	var result ChatCompletion
	if err := r.base.Post(ctx, chatCompletionsPath, &body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateStream requests a streamed chat completion. Errors before the first
// byte of the stream, including rate limits, are returned here; errors while
// decoding surface from ChatStream.Next. req.Stream is ignored.
func (r *LLMResource) CreateStream(ctx context.Context, req *ChatCompletionRequest) (*ChatStream, error) {
	body := ChatCompletionRequest{}
	if req != nil {
		body = *req
	}
	body.Stream = true

	resp, err := r.base.Stream(ctx, chatCompletionsPath, &body)
	if err != nil {
		return nil, err
	}
	return &ChatStream{
		stream: sse.NewStream[ChatCompletionChunk](resp.Body, sse.WithMetrics(r.metrics)),
	}, nil
}

// ChatStream yields the chunks of a streamed completion. It is not safe for
// concurrent use.
type ChatStream struct {
	stream *sse.Stream[ChatCompletionChunk]
}

// Next returns the next chunk, or io.EOF once the completion is done.
func (s *ChatStream) Next() (*ChatCompletionChunk, error) {
	return s.stream.Next()
}

// Err returns the error that ended the stream, if any.
func (s *ChatStream) Err() error {
	return s.stream.Err()
}

// Close releases the underlying connection.
func (s *ChatStream) Close() error {
	return s.stream.Close()
}

// Collect drains the stream and returns the concatenated content. On error
// it returns the content received so far along with the error.
func (s *ChatStream) Collect() (string, error) {
	var sb strings.Builder
	for {
		chunk, err := s.stream.Next()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk.Content())
	}
}
