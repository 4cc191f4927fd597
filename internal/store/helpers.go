package store

import (
	"encoding/json"
	"strings"
)

// whereClause joins conditions with AND, or returns "" when there are none.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// marshalSample converts []string to JSON text for storage.
func marshalSample(sample []string) string {
	if len(sample) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(sample)
	return string(b)
}

// unmarshalSample converts JSON text back to []string.
func unmarshalSample(s string) []string {
	if s == "" || s == "null" {
		return nil
	}
	var sample []string
	_ = json.Unmarshal([]byte(s), &sample)
	return sample
}
