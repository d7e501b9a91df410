// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

import "fmt"

// Params is the sampling bundle sent with every completion request.
type Params struct {
	MaxTokens        int     `yaml:"max_tokens"`
	Temperature      float64 `yaml:"temperature"`
	TopP             float64 `yaml:"top_p"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
	PresencePenalty  float64 `yaml:"presence_penalty"`
}

// DefaultParams returns the parameters a fresh relay starts with.
func DefaultParams() Params {
	return Params{
		MaxTokens:        4000,
		Temperature:      0.8,
		TopP:             1.0,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}
}

func (p Params) String() string {
	return fmt.Sprintf("max_tokens=%d temperature=%.2f top_p=%.2f frequency_penalty=%.2f presence_penalty=%.2f",
		p.MaxTokens, p.Temperature, p.TopP, p.FrequencyPenalty, p.PresencePenalty)
}

// Client-facing protocol markers.
const (
	Prompt        = "> "
	TurnDelimiter = "\n\n" + Prompt
	NoInput       = "None" + TurnDelimiter
	NoticePrefix  = "\rnotice: "
	ExitWord      = "exit"
)
