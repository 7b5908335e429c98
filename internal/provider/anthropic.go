package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// NewClient returns an Anthropic client authenticated with the given API key.
func NewClient(apiKey string) *anthropic.Client {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c
}

// DefaultModel is used when the settings file does not name a model.
const DefaultModel = anthropic.ModelClaude3_7SonnetLatest
