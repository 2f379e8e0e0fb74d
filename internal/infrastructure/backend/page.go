package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// decodePage accepts both the paginated envelope and a bare JSON array.
func decodePage(body []byte) (*ports.Page, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &ports.Page{Results: []json.RawMessage{}}, nil
	}

	if body[0] == '[' {
		var results []json.RawMessage
		if err := json.Unmarshal(body, &results); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if results == nil {
			results = []json.RawMessage{}
		}
		return &ports.Page{Results: results, Count: len(results)}, nil
	}

	var env struct {
		Results  []json.RawMessage `json:"results"`
		Count    *int              `json:"count"`
		Next     *string           `json:"next"`
		Previous *string           `json:"previous"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	page := &ports.Page{
		Results:  env.Results,
		Next:     env.Next,
		Previous: env.Previous,
	}
	if page.Results == nil {
		page.Results = []json.RawMessage{}
	}
	if env.Count != nil {
		page.Count = *env.Count
	} else {
		page.Count = len(page.Results)
	}
	return page, nil
}

func decodeResults[T any](page *ports.Page) ([]T, error) {
	out := make([]T, 0, len(page.Results))
	for _, raw := range page.Results {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
