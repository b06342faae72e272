package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"resumepro/internal/llm"
)

// MinMessageLength is the shortest accepted message after trimming.
const MinMessageLength = 2

// maxHistory bounds the turns forwarded to the model.
const maxHistory = 20

var (
	ErrMessageTooShort = errors.New("message must be at least 2 characters")
	ErrUnavailable     = errors.New("assistant is unavailable, try again later")
)

const systemPrompt = `You are ResumePro's career assistant. Help users improve resumes, cover letters and interview preparation.
Be concise and practical. Use short paragraphs or bullet points. If a question is unrelated to careers, politely steer back.`

// Request is the chat-assistant function input.
type Request struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history,omitempty"`
}

// Response is the chat-assistant function output.
type Response struct {
	Reply string `json:"reply"`
}

// Validate trims the message and enforces the minimum length.
func (r *Request) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	if utf8.RuneCountInString(r.Message) < MinMessageLength {
		return ErrMessageTooShort
	}
	return nil
}

// Assistant implements the chat-assistant function.
type Assistant struct {
	LLM llm.Client
}

// New constructs an Assistant. A nil client reports ErrUnavailable.
func New(client llm.Client) *Assistant {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	return &Assistant{LLM: client}
}

// Invoke decodes the function payload and replies.
func (a *Assistant) Invoke(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode chat request: %w", err)
	}
	resp, err := a.Reply(ctx, req)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

// Reply answers the message given prior turns.
func (a *Assistant) Reply(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}
	history := req.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		role := llm.RoleUser
		if m.Role == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})

	reply, err := a.LLM.Complete(ctx, llm.Request{System: systemPrompt, Messages: messages})
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Response{}, ErrUnavailable
	}
	return Response{Reply: reply}, nil
}
