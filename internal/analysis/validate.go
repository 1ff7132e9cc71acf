package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/mementolab/driftwatch/pkg/errors"
)

// ParseUnits decodes a model output array into units.
func ParseUnits(data []byte) ([]Unit, error) {
	var units []Unit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, errors.NewParseError("json", "", "model output is not a unit array", err)
	}
	return units, nil
}

// Validate checks a model output array against the expected length
// bounds and shape: every item needs a sentences object with at least
// one non-null side and an assessment carrying every required field.
func Validate(data []byte, minItems, maxItems int) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.NewParseError("json", "", "output root is not an array", err)
	}
	if len(raw) < minItems {
		return fmt.Errorf("too few items: got %d, need at least %d", len(raw), minItems)
	}
	if len(raw) > maxItems {
		return fmt.Errorf("too many items: got %d, must be <= %d", len(raw), maxItems)
	}

	for idx, itemData := range raw {
		var item struct {
			Sentences  *Sentences                 `json:"sentences"`
			Assessment map[string]json.RawMessage `json:"assessment"`
		}
		if err := json.Unmarshal(itemData, &item); err != nil {
			return fmt.Errorf("item %d is not an object: %w", idx, err)
		}
		if item.Sentences == nil {
			return fmt.Errorf("item %d: 'sentences' missing or not object", idx)
		}
		if item.Sentences.M1 == nil && item.Sentences.M2 == nil {
			return fmt.Errorf("item %d: both M1 and M2 are null", idx)
		}
		if item.Assessment == nil {
			return fmt.Errorf("item %d: 'assessment' missing or not object", idx)
		}
		for _, key := range requiredAssessmentKeys {
			if _, ok := item.Assessment[key]; !ok {
				return fmt.Errorf("item %d: missing '%s' in assessment", idx, key)
			}
		}
	}
	return nil
}
