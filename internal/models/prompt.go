package models

import "time"

// PromptAssociation binds a job id to the prompt and settings that created it.
// Written once at submit time and never mutated.
type PromptAssociation struct {
	VideoID   string    `json:"videoId"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model"`
	Size      string    `json:"size"`
	Seconds   string    `json:"seconds"`
	CreatedAt time.Time `json:"createdAt"`
}

// PromptHistoryEntry is the latest usage of one distinct prompt text.
// Prompt is the identity key (exact, case-sensitive match).
type PromptHistoryEntry struct {
	Prompt   string    `json:"prompt"`
	Model    string    `json:"model"`
	Size     string    `json:"size"`
	Seconds  string    `json:"seconds"`
	LastUsed time.Time `json:"lastUsed"`
	UseCount int       `json:"useCount"`
}

// GenerationSettings are the parameters of one create request.
type GenerationSettings struct {
	Prompt  string
	Model   string
	Size    string
	Seconds string
}

// WithDefaults fills unset model, size and seconds with the provider defaults.
func (s GenerationSettings) WithDefaults() GenerationSettings {
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.Size == "" {
		s.Size = DefaultSize
	}
	if s.Seconds == "" {
		s.Seconds = DefaultSeconds
	}
	return s
}

// Settings returns the generation parameters recorded in the association.
func (a PromptAssociation) Settings() GenerationSettings {
	return GenerationSettings{Prompt: a.Prompt, Model: a.Model, Size: a.Size, Seconds: a.Seconds}
}

// Settings returns the most recent generation parameters used with this prompt.
func (e PromptHistoryEntry) Settings() GenerationSettings {
	return GenerationSettings{Prompt: e.Prompt, Model: e.Model, Size: e.Size, Seconds: e.Seconds}
}
