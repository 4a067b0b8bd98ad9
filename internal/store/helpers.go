package store

import (
	"encoding/json"
	"fmt"
)

// marshalResolutions converts resolutions to JSON text for storage.
func marshalResolutions(res []Resolution) string {
	if len(res) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(res)
	return string(b)
}

// unmarshalResolutions converts JSON text back to resolutions. A corrupt
// column is an error: dropping it would hide a generic call site.
func unmarshalResolutions(s string) ([]Resolution, error) {
	if s == "" || s == "null" || s == "[]" {
		return nil, nil
	}
	var res []Resolution
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return nil, fmt.Errorf("resolutions %q: %w", s, err)
	}
	return res, nil
}
