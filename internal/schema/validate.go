// Package schema checks measurement snapshots against JSON Schemas before they are committed.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/wildsync/internal/entity"
)

const forestDataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "tree_count": {"type": "integer", "minimum": 0},
    "soil_data": {
      "type": "object",
      "properties": {
        "health":   {"type": "number", "minimum": 0, "maximum": 1},
        "ph":       {"type": "number", "minimum": 0, "maximum": 14},
        "moisture": {"type": "number", "minimum": 0}
      },
      "additionalProperties": false
    },
    "animal_data": {
      "type": "object",
      "properties": {
        "activity":         {"type": "number", "minimum": 0, "maximum": 1},
        "species_richness": {"type": "integer", "minimum": 0}
      },
      "additionalProperties": false
    },
    "calamity_history": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0}
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func forestData() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("forest_data.json", bytes.NewReader([]byte(forestDataSchema))); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("forest_data.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ValidateForestData checks the measurement columns of d.
func ValidateForestData(d *entity.ForestData) error {
	s, err := forestData()
	if err != nil {
		return err
	}
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal forest data: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal forest data: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("forest data does not match schema: %w", err)
	}
	return nil
}
