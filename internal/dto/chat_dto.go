package dto

import "strings"

type ChatMessagePartDTO struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChatMessageDTO accepts either plain content or text parts.
type ChatMessageDTO struct {
	Role    string               `json:"role" validate:"required,oneof=user assistant system"`
	Content string               `json:"content,omitempty"`
	Parts   []ChatMessagePartDTO `json:"parts,omitempty"`
}

// Text returns Content, or the concatenated text parts when Content is empty.
func (m ChatMessageDTO) Text() string {
	if m.Content != "" {
		return m.Content
	}
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == "" || p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

type ChatRequest struct {
	Messages []ChatMessageDTO `json:"messages" validate:"required,min=1,max=100,dive"`
}
