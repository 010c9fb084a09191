package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptPack overrides the built-in system prompt and tool descriptions.
type PromptPack struct {
	SystemPrompt string            `yaml:"system_prompt"`
	Tools        map[string]string `yaml:"tools"`
}

// LoadPrompts reads a YAML prompt pack. An empty path yields an empty pack.
func LoadPrompts(path string) (*PromptPack, error) {
	pack := &PromptPack{Tools: map[string]string{}}
	if path == "" {
		return pack, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	if err := yaml.Unmarshal(data, pack); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	if pack.Tools == nil {
		pack.Tools = map[string]string{}
	}
	pack.SystemPrompt = strings.TrimSpace(pack.SystemPrompt)
	return pack, nil
}

// SystemPromptOr returns the pack's system prompt, or fallback when unset.
func (p *PromptPack) SystemPromptOr(fallback string) string {
	if p == nil || p.SystemPrompt == "" {
		return fallback
	}
	return p.SystemPrompt
}

// ToolDescription returns the override for a tool, or "" to keep the default.
func (p *PromptPack) ToolDescription(name string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Tools[name])
}
