package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// ContentIdea is the structured draft returned for a content-matrix row.
type ContentIdea struct {
	HookText  string `json:"hook_text"`
	CaptionAI string `json:"caption_ai"`
}

// GenerateContentIdea drafts a hook and caption for one planned piece.
// JSON mode is tried first; some models ignore it, so the text-mode retry
// digs the object out of whatever came back.
func (c *OllamaClient) GenerateContentIdea(ctx context.Context, brand, funnelStage, upsellTarget string) (*ContentIdea, error) {
	prompt := fmt.Sprintf(`You are a social media strategist for a scholarship-guidance brand aimed at Spanish-speaking students.

Brand: %s
Funnel stage: %s
Product being promoted: %s

Write, in Spanish:
1. hook_text: a scroll-stopping opening line (max 15 words).
2. caption_ai: a 2-3 sentence caption with a clear call to action.

JSON Schema:
{
	"hook_text": "string",
	"caption_ai": "string"
}

Respond ONLY with the JSON object.`, brand, funnelStage, upsellTarget)

	resp, err := c.GenerateCompletion(ctx, prompt, true)
	if err == nil {
		if idea, parseErr := parseIdeaResponse(resp); parseErr == nil {
			return idea, nil
		} else {
			log.Printf("JSON mode failed parsing: %v. Retrying with text mode...", parseErr)
		}
	} else {
		log.Printf("JSON mode generation failed: %v. Retrying with text mode...", err)
	}

	resp, err = c.GenerateCompletion(ctx, prompt, false)
	if err != nil {
		return nil, err
	}

	idea, err := parseIdeaResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM JSON after retry: %w (response: %s)", err, resp)
	}
	return idea, nil
}

func parseIdeaResponse(resp string) (*ContentIdea, error) {
	cleaned := strings.TrimSpace(resp)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	if jsonStr, ok := extractFirstJSONObject(cleaned); ok {
		cleaned = jsonStr
	}

	var idea ContentIdea
	if err := json.Unmarshal([]byte(cleaned), &idea); err != nil {
		return nil, err
	}
	if idea.HookText == "" && idea.CaptionAI == "" {
		return nil, fmt.Errorf("empty idea in response")
	}
	return &idea, nil
}

// extractFirstJSONObject finds the first outermost balanced {...}
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if char == '{' {
				depth++
			} else if char == '}' {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
