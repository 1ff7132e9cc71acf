// Package metrics aggregates stored pair analyses into per-article
// metrics files. Every quantifiable counter is computed only among
// units that actually changed (textual differences yes / yes
// (addition) / yes (deletion)); unchanged units contribute to unit
// totals and nothing else.
package metrics

// PairMetrics is the computed view of one analyzed pair.
type PairMetrics struct {
	PairIndex          int            `json:"pair_index"`
	TimestampOld       *string        `json:"timestamp_old"`
	TimestampNew       *string        `json:"timestamp_new"`
	DeltaHours         *float64       `json:"delta_hours"`
	UnitsTotal         int            `json:"units_total"`
	UnitsM1NonNull     int            `json:"units_m1_nonnull"`
	UnitsM2NonNull     int            `json:"units_m2_nonnull"`
	UnitsByType        map[string]int `json:"units_by_type"`
	ChangedUnitsByType map[string]int `json:"changed_units_by_type"`
	ChangedUnitsTotal  int            `json:"changed_units_total"`
	Changes            ChangeCounts   `json:"changes"`
	Semantic           map[string]int `json:"semantic"`
	VerbalFlags        map[string]int `json:"verbal_flags"`
	LLMFields          LLMFields      `json:"llm_fields"`
}

// ChangeCounts breaks down textual differences and importance among
// the changed units of a pair.
type ChangeCounts struct {
	TotalChanged                  int `json:"total_changed"`
	Yes                           int `json:"yes"`
	YesAddition                   int `json:"yes_addition"`
	YesDeletion                   int `json:"yes_deletion"`
	No                            int `json:"no"`
	Important                     int `json:"important"`
	NotImportant                  int `json:"not_important"`
	UnknownImportanceAmongChanged int `json:"unknown_importance_among_changed"`
}

// LLMFields carries frequency maps over the model's assessment fields.
// All counts except textual_differences are restricted to changed
// units.
type LLMFields struct {
	TextualDifferences       map[string]int `json:"textual_differences"`
	SemanticImpact           map[string]int `json:"semantic_impact"`
	SentimentBefore          map[string]int `json:"sentiment_before"`
	SentimentAfter           map[string]int `json:"sentiment_after"`
	SentimentChangeDirection map[string]int `json:"sentiment_change_direction"`
	ImportanceOverall        map[string]int `json:"importance_overall"`
	ImportanceCategoryFreq   map[string]int `json:"importance_category_freq"`
	POSCategoryChanged       map[string]int `json:"pos_category_changed"`
	NERCategoryChanged       map[string]int `json:"ner_category_changed"`
	GrammarChange            map[string]int `json:"grammar_change"`
	VerbalChanges            map[string]int `json:"verbal_changes"`
	Rewritten                map[string]int `json:"rewritten"`
	Bases                    map[string]int `json:"bases"`
}

// Summary is the element-wise sum of a pair metrics list.
type Summary struct {
	PairsTotal         int            `json:"pairs_total"`
	UnitsTotal         int            `json:"units_total"`
	UnitsM1NonNull     int            `json:"units_m1_nonnull"`
	UnitsM2NonNull     int            `json:"units_m2_nonnull"`
	UnitsByType        map[string]int `json:"units_by_type"`
	ChangedUnitsByType map[string]int `json:"changed_units_by_type"`
	ChangedUnitsTotal  int            `json:"changed_units_total"`
	Changes            ChangeCounts   `json:"changes"`
	Semantic           map[string]int `json:"semantic"`
	LLMFields          LLMFields      `json:"llm_fields"`
}

// Report is the stored metrics/metrics.json document.
type Report struct {
	Summary Summary       `json:"summary"`
	PerPair []PairMetrics `json:"per_pair"`
}

// Importance labels used in the importance_overall map.
const (
	LabelImportant    = "Important"
	LabelNotImportant = "Not important"
	LabelUnknown      = "Unknown (among changed)"
)

func zeroedImportanceOverall() map[string]int {
	return map[string]int{LabelImportant: 0, LabelNotImportant: 0, LabelUnknown: 0}
}

func zeroedTypes() map[string]int {
	return map[string]int{"match": 0, "insert": 0, "delete": 0}
}

// zeroedLLMFields seeds the summary accumulator.
func zeroedLLMFields() LLMFields {
	return LLMFields{
		TextualDifferences:       map[string]int{},
		SemanticImpact:           map[string]int{},
		SentimentBefore:          map[string]int{},
		SentimentAfter:           map[string]int{},
		SentimentChangeDirection: map[string]int{},
		ImportanceOverall:        zeroedImportanceOverall(),
		ImportanceCategoryFreq:   map[string]int{},
		POSCategoryChanged:       map[string]int{},
		NERCategoryChanged:       map[string]int{},
		GrammarChange:            map[string]int{},
		VerbalChanges:            map[string]int{},
		Rewritten:                map[string]int{"true": 0, "false": 0},
		Bases:                    map[string]int{"units_total": 0, "changed_units_total": 0},
	}
}

// newPairLLMFields seeds a per-pair accumulator with the closed enum
// vocabularies zeroed, so every pair reports the full category set.
func newPairLLMFields() LLMFields {
	f := zeroedLLMFields()
	for _, k := range []string{"VERB", "NOUN", "PROPN", "ADJ", "NUM", "ADV"} {
		f.POSCategoryChanged[k] = 0
	}
	for _, k := range []string{"PERSON", "ORG", "GPE", "LOC", "DATE", "MONEY", "PERCENT"} {
		f.NERCategoryChanged[k] = 0
	}
	f.GrammarChange["yes"] = 0
	f.GrammarChange["no"] = 0
	for _, k := range []string{"tense", "aspect", "voice", "modality"} {
		f.VerbalChanges[k] = 0
	}
	return f
}
