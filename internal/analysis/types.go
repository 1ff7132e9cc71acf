// Package analysis submits consecutive memento pairs to an LLM and
// stores the structured change judgments. The model aligns the two
// texts into sentence-level units and assesses each unit; results land
// under analysis/<slug>/<pair index>.json.
package analysis

import (
	"github.com/mementolab/driftwatch/internal/dataset"
)

// Unit is one aligned sentence pair with its change assessment.
type Unit struct {
	Type       string     `json:"type,omitempty"`
	Sentences  Sentences  `json:"sentences"`
	Assessment Assessment `json:"assessment"`
}

// Sentences holds the two sides of an aligned unit. A nil side marks
// an insertion (M1 nil) or deletion (M2 nil).
type Sentences struct {
	M1 *string `json:"M1"`
	M2 *string `json:"M2"`
}

// Assessment is the model's judgment of one aligned unit. JSON keys
// match the stored document format, spaces included.
type Assessment struct {
	TextualDifferences       string   `json:"textual differences"`
	POSCategoryChanged       []string `json:"POS category changed"`
	NERCategoryChanged       []string `json:"NER category changed"`
	GrammarChange            string   `json:"grammar change"`
	VerbalChanges            []string `json:"verbal changes"`
	Rewritten                bool     `json:"rewritten"`
	SemanticImpact           string   `json:"semantic impact"`
	SentimentBefore          string   `json:"sentiment before"`
	SentimentAfter           string   `json:"sentiment after"`
	SentimentChangeDirection string   `json:"sentiment change direction"`
	OverallImportance        string   `json:"overall importance of the change"`
	ImportanceCategory       string   `json:"importance category"`
	ImportanceReason         string   `json:"importance reason"`
	LiteratureRationale      string   `json:"literature rationale"`
	VersionDiffSummary       string   `json:"version diff summary"`
	OverallAssessment        string   `json:"overall assessment"`
}

// Document is the stored analysis of one memento pair.
type Document struct {
	PairIndex     int              `json:"pair_index"`
	NSentencesOld int              `json:"n_sentences_old"`
	NSentencesNew int              `json:"n_sentences_new"`
	MetadataOld   dataset.Metadata `json:"metadata_old"`
	MetadataNew   dataset.Metadata `json:"metadata_new"`
	Items         []Unit           `json:"items"`
}

// Present reports whether a sentence side carries real text. Nil,
// blank, and the literal strings "null"/"none" all count as absent.
func Present(s *string) bool {
	if s == nil {
		return false
	}
	t := trimLower(*s)
	return t != "" && t != "null" && t != "none"
}
