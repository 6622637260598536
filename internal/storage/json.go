package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrCorrupt is returned by LoadJSON when a stored value is not valid JSON or
// does not match its schema.
var ErrCorrupt = errors.New("stored value is corrupt")

const datasetSchemaJSON = `{
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {"type": "string", "pattern": "\\S"}
	}
}`

const historySchemaJSON = `{
	"type": "array",
	"maxItems": 10,
	"items": {"type": "string"}
}`

// Schemas for the persisted session keys.
var (
	DatasetSchema = mustCompile("dataset.json", datasetSchemaJSON)
	HistorySchema = mustCompile("history.json", historySchemaJSON)
)

func mustCompile(name, raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("failed to load schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile schema %s: %v", name, err))
	}
	return schema
}

// LoadJSON reads key and decodes it into dst. It reports found=false with a
// nil error when the key is absent, and ErrCorrupt when the stored bytes do
// not decode or fail schema validation. schema may be nil. dst is only
// written when the value is valid.
func LoadJSON(ctx context.Context, kv KV, key string, schema *jsonschema.Schema, dst any) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if schema != nil {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
		}
		if err := schema.Validate(doc); err != nil {
			return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}
