package analysis

// SchemaName names the structured response format.
const SchemaName = "change_assessments"

// Schema is the JSON schema enforced on the first model attempt.
// The retry attempt runs schemaless and falls back to array
// extraction.
func Schema() map[string]any {
	stringEnum := func(values ...string) map[string]any {
		return map[string]any{"type": "string", "enum": values}
	}
	uniqueEnumArray := func(values ...string) map[string]any {
		return map[string]any{
			"type":        "array",
			"items":       stringEnum(values...),
			"uniqueItems": true,
		}
	}
	freeString := map[string]any{"type": "string"}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": stringEnum("match", "insert", "delete", "split", "merge"),
				"sentences": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"M1": map[string]any{"type": []string{"string", "null"}},
						"M2": map[string]any{"type": []string{"string", "null"}},
					},
					"required":             []string{"M1", "M2"},
					"additionalProperties": false,
				},
				"assessment": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"textual differences":  stringEnum("yes", "no", "yes (addition)", "yes (deletion)"),
						"semantic impact":      stringEnum("NA", "low", "moderate", "high"),
						"sentiment before":     stringEnum("Very Negative", "Negative", "Neutral", "Positive", "Very Positive"),
						"sentiment after":      stringEnum("Very Negative", "Negative", "Neutral", "Positive", "Very Positive"),
						"sentiment change direction": stringEnum("more positive", "no change", "more negative"),
						"overall importance of the change": map[string]any{
							"type":    "string",
							"pattern": `^(?:[Ii]mportant|[Nn]ot important)\s-\s.+$`,
						},
						"importance category":  freeString,
						"importance reason":    freeString,
						"literature rationale": freeString,
						"version diff summary": freeString,
						"overall assessment":   freeString,
						"POS category changed": uniqueEnumArray("VERB", "NOUN", "PROPN", "ADJ", "NUM", "ADV"),
						"NER category changed": uniqueEnumArray("PERSON", "ORG", "GPE", "LOC", "DATE", "MONEY", "PERCENT"),
						"grammar change":       stringEnum("yes", "no"),
						"verbal changes":       uniqueEnumArray("tense", "aspect", "voice", "modality"),
						"rewritten":            map[string]any{"type": "boolean"},
					},
					"required": []string{
						"textual differences",
						"semantic impact",
						"sentiment before",
						"sentiment after",
						"sentiment change direction",
						"overall importance of the change",
						"importance category",
						"importance reason",
						"literature rationale",
						"version diff summary",
						"overall assessment",
						"POS category changed",
						"NER category changed",
						"grammar change",
						"verbal changes",
						"rewritten",
					},
					"additionalProperties": false,
				},
			},
			"required":             []string{"sentences", "assessment"},
			"additionalProperties": false,
		},
	}
}

// requiredAssessmentKeys is the presence check applied to model output
// regardless of which attempt produced it.
var requiredAssessmentKeys = []string{
	"textual differences",
	"semantic impact",
	"sentiment before",
	"sentiment after",
	"sentiment change direction",
	"overall importance of the change",
	"importance category",
	"importance reason",
	"literature rationale",
	"version diff summary",
	"overall assessment",
	"POS category changed",
	"NER category changed",
	"grammar change",
	"verbal changes",
	"rewritten",
}
