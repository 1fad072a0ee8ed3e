package models

import (
	"encoding/json"
	"errors"
)

// Chat completion wire contract shared by every Datasaur sandbox endpoint

// RoleUser is the only role the relay ever sends
const RoleUser = "user"

var (
	// ErrNotJSON means the response body is not a JSON document
	ErrNotJSON = errors.New("response is not valid JSON")
	// ErrMissingChoices means the body has no non-empty "choices" array
	ErrMissingChoices = errors.New("missing choices")
	// ErrMissingContent means choices[0] carries no message.content
	ErrMissingContent = errors.New("missing message content")
)

// ChatRequest is the body POSTed to a sandbox endpoint
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserRequest wraps content in a single user message
func NewUserRequest(content string) ChatRequest {
	return ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: content}},
	}
}

// FirstContent returns choices[0].message.content from a completion body.
// The envelope is decoded one level at a time so a wrongly typed field is
// reported as missing rather than as a decode failure. Content stays raw: it
// may be a string or a structured value.
func FirstContent(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, ErrNotJSON
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ErrMissingChoices
	}

	var choices []json.RawMessage
	if err := json.Unmarshal(envelope["choices"], &choices); err != nil || len(choices) == 0 {
		return nil, ErrMissingChoices
	}

	var choice map[string]json.RawMessage
	if err := json.Unmarshal(choices[0], &choice); err != nil {
		return nil, ErrMissingContent
	}

	var message map[string]json.RawMessage
	if err := json.Unmarshal(choice["message"], &message); err != nil {
		return nil, ErrMissingContent
	}

	content, ok := message["content"]
	if !ok || len(content) == 0 || string(content) == "null" {
		return nil, ErrMissingContent
	}
	return content, nil
}
