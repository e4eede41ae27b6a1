package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openvehicle/canagent/internal/domain"
)

// Load reads path, normalizes any legacy section names onto the canonical
// schema, decodes it under strict (unknown-key-rejecting) mode onto
// Default(), and validates the result.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidConfig, path, err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, path, err)
	}
	normalizeLegacy(doc)

	normalized, err := yaml.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("%w: re-encode %s: %v", domain.ErrInvalidConfig, path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(normalized))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalizeLegacy rewrites the pre-canonical section and key names in
// place: "batching" becomes "batch", "upload.s3_bucket" is lifted into
// "s3.bucket", and "offline_buffer" becomes "offline". It operates on the
// generic document so a strict decode afterward only ever sees canonical
// keys, whether the file on disk used the old names, the new names, or
// (harmlessly) both.
func normalizeLegacy(doc map[string]interface{}) {
	if batching, ok := doc["batching"]; ok {
		delete(doc, "batching")
		if _, exists := doc["batch"]; !exists {
			doc["batch"] = batching
		}
	}

	if upload, ok := doc["upload"].(map[string]interface{}); ok {
		if bucket, ok := upload["s3_bucket"]; ok {
			delete(upload, "s3_bucket")
			s3, _ := doc["s3"].(map[string]interface{})
			if s3 == nil {
				s3 = map[string]interface{}{}
			}
			if _, exists := s3["bucket"]; !exists {
				s3["bucket"] = bucket
			}
			doc["s3"] = s3
		}
	}

	if offlineBuffer, ok := doc["offline_buffer"]; ok {
		delete(doc, "offline_buffer")
		if _, exists := doc["offline"]; !exists {
			doc["offline"] = offlineBuffer
		}
	}
}
