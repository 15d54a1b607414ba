package llm

import "strings"

// Friendly model names accepted in configuration and in the chat model
// setting. Anything else is passed to the vendor unchanged.
var (
	openaiModels = map[string]string{
		"gpt":      "gpt-4o",
		"gpt-mini": "gpt-4o-mini",
	}
	anthropicModels = map[string]string{
		"claude-sonnet": "claude-sonnet-4-20250514",
		"claude-haiku":  "claude-haiku-4-5-20251001",
	}
	geminiModels = map[string]string{
		"gemini-flash": "gemini-2.0-flash",
		"gemini-pro":   "gemini-2.5-pro",
	}
)

func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}

// Price is the USD cost per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// prices covers the models the tutor is normally run with.
var prices = map[string]Price{
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	"claude-sonnet-4-20250514":   {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-3-5-haiku-20241022":  {0.8, 4},
	"claude-opus-4-1-20250805":   {15, 75},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}

// EstimateCost prices a number of tokens for model. OpenRouter ids such as
// "openai/gpt-4o-mini" are priced as the vendor model. ok is false for
// models without a known price.
func EstimateCost(model string, input, output int) (usd float64, ok bool) {
	p, ok := prices[model]
	if !ok {
		if _, id, found := strings.Cut(model, "/"); found {
			p, ok = prices[id]
		}
	}
	if !ok {
		return 0, false
	}
	return float64(input)*p.Input/1e6 + float64(output)*p.Output/1e6, true
}
