package model

import (
	"encoding/json"
	"fmt"
)

// GenerationConfig is the metadata payload embedded in every full build.
// A file can be regenerated deterministically from this alone.
type GenerationConfig struct {
	ID          string  `json:"id"`
	Version     int     `json:"version"`
	Style       string  `json:"style"`
	Mood        string  `json:"mood"`
	Key         string  `json:"key"`
	Seed        int64   `json:"seed"`
	BPM         float64 `json:"bpm"`
	BlueprintID int     `json:"blueprint_id"`
}

// ConfigVersion is bumped whenever the metadata schema changes shape.
const ConfigVersion = 1

// EncodeConfig renders the config as the opaque JSON string the codec
// layer embeds. The codec treats it as bytes; only this package knows
// the schema.
func EncodeConfig(c GenerationConfig) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding generation config: %w", err)
	}
	return string(data), nil
}

// DecodeConfig parses a metadata string extracted from a file.
func DecodeConfig(metadata string) (GenerationConfig, error) {
	var c GenerationConfig
	if err := json.Unmarshal([]byte(metadata), &c); err != nil {
		return c, fmt.Errorf("decoding generation config: %w", err)
	}
	if c.Version == 0 {
		return c, fmt.Errorf("metadata has no version field")
	}
	return c, nil
}
