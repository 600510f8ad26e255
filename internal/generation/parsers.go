package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"daggergm/internal/models"
)

// extractJSON strips markdown code fences and any prose surrounding the
// first JSON object in a model response.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "{[")
	if start > 0 {
		s = s[start:]
	}
	return s
}

// balanceJSON appends missing closing brackets to a truncated response.
// Models occasionally cut output mid-object; closing the open scopes
// recovers the parseable prefix.
func balanceJSON(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, c)
			}
		case '}', ']':
			if !inString && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}
	return s
}

func decodeResponse(raw string, v interface{}) error {
	cleaned := extractJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(balanceJSON(cleaned)), v); err != nil {
		return fmt.Errorf("failed to decode generator response: %w", err)
	}
	return nil
}

func parseScaffold(raw string) (*models.Scaffold, error) {
	var scaffold models.Scaffold
	if err := decodeResponse(raw, &scaffold); err != nil {
		return nil, err
	}
	if scaffold.Title == "" {
		return nil, fmt.Errorf("scaffold has no title")
	}
	if len(scaffold.Movements) == 0 {
		return nil, fmt.Errorf("scaffold has no movements")
	}
	for i, m := range scaffold.Movements {
		if m.Title == "" || m.Description == "" {
			return nil, fmt.Errorf("scaffold movement %d is incomplete", i+1)
		}
	}
	return &scaffold, nil
}

func parseMovementDraft(raw string) (*models.MovementDraft, error) {
	var draft models.MovementDraft
	if err := decodeResponse(raw, &draft); err != nil {
		return nil, err
	}
	if draft.Title == "" || draft.Description == "" {
		return nil, fmt.Errorf("movement draft is incomplete")
	}
	return &draft, nil
}

func parseExpansion(raw string) (*models.MovementExpansion, error) {
	var expansion models.MovementExpansion
	if err := decodeResponse(raw, &expansion); err != nil {
		return nil, err
	}
	if expansion.Environment == "" && len(expansion.NPCs) == 0 && len(expansion.Adversaries) == 0 {
		return nil, fmt.Errorf("expansion is empty")
	}
	return &expansion, nil
}

func parseRefinement(raw string) (*models.Refinement, error) {
	var refinement models.Refinement
	if err := decodeResponse(raw, &refinement); err != nil {
		return nil, err
	}
	if refinement.Content == "" {
		return nil, fmt.Errorf("refinement has no content")
	}
	return &refinement, nil
}
