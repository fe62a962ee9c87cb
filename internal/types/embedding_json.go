package types

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// MarshalEmbedding encodes a vector for the jsonb embedding column.
func MarshalEmbedding(vec []float32) (datatypes.JSON, error) {
	if vec == nil {
		vec = []float32{}
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ParseEmbeddingJSON decodes a stored embedding column. A missing or
// malformed value yields a nil vector, not an error: rows written before a
// dimension change are treated as absent and skipped by callers.
func ParseEmbeddingJSON(raw datatypes.JSON) []float32 {
	if len(raw) == 0 {
		return nil
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return vec
}
