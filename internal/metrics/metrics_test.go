package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/internal/dataset"
)

func str(s string) *string { return &s }

func unit(unitType string, m1, m2 *string, a analysis.Assessment) analysis.Unit {
	return analysis.Unit{Type: unitType, Sentences: analysis.Sentences{M1: m1, M2: m2}, Assessment: a}
}

func testDoc() analysis.Document {
	return analysis.Document{
		PairIndex:   3,
		MetadataOld: dataset.Metadata{WARCDate: "2023-01-01T00:00:00Z"},
		MetadataNew: dataset.Metadata{WARCDate: "2023-01-02T12:00:00Z"},
		Items: []analysis.Unit{
			// Unchanged unit: contributes to totals only.
			unit("match", str("same."), str("same."), analysis.Assessment{
				TextualDifferences: "no",
				SemanticImpact:     "NA",
				SentimentBefore:    "Neutral",
				SentimentAfter:     "Neutral",
				GrammarChange:      "no",
			}),
			// Changed match.
			unit("match", str("old."), str("new."), analysis.Assessment{
				TextualDifferences:       "yes",
				OverallImportance:        "Important - meaning reversed",
				ImportanceCategory:       "Major Wording",
				SemanticImpact:           "high",
				SentimentBefore:          "Negative",
				SentimentAfter:           "Neutral",
				SentimentChangeDirection: "more positive",
				POSCategoryChanged:       []string{"VERB", "NOUN"},
				NERCategoryChanged:       []string{"DATE"},
				GrammarChange:            "yes",
				VerbalChanges:            []string{"tense", "Tense", "voice"},
				Rewritten:                true,
			}),
			// Insertion.
			unit("insert", nil, str("added."), analysis.Assessment{
				TextualDifferences:       "yes (addition)",
				OverallImportance:        "not important - boilerplate",
				SemanticImpact:           "low",
				SentimentBefore:          "Neutral",
				SentimentAfter:           "Neutral",
				SentimentChangeDirection: "no change",
				GrammarChange:            "no",
				Rewritten:                false,
			}),
			// Changed unit with unparseable importance.
			unit("delete", str("dropped."), nil, analysis.Assessment{
				TextualDifferences: "yes (deletion)",
				OverallImportance:  "hard to say",
				SemanticImpact:     "moderate",
				Rewritten:          false,
			}),
		},
	}
}

func TestComputePair(t *testing.T) {
	pm := ComputePair(testDoc())

	assert.Equal(t, 3, pm.PairIndex)
	require.NotNil(t, pm.TimestampOld)
	assert.Equal(t, "2023-01-01T00:00:00Z", *pm.TimestampOld)
	require.NotNil(t, pm.DeltaHours)
	assert.InDelta(t, 36.0, *pm.DeltaHours, 1e-9)

	assert.Equal(t, 4, pm.UnitsTotal)
	assert.Equal(t, 3, pm.UnitsM1NonNull)
	assert.Equal(t, 3, pm.UnitsM2NonNull)
	assert.Equal(t, map[string]int{"match": 2, "insert": 1, "delete": 1}, pm.UnitsByType)
	assert.Equal(t, map[string]int{"match": 1, "insert": 1, "delete": 1}, pm.ChangedUnitsByType)
	assert.Equal(t, 3, pm.ChangedUnitsTotal)

	assert.Equal(t, ChangeCounts{
		TotalChanged:                  3,
		Yes:                           1,
		YesAddition:                   1,
		YesDeletion:                   1,
		No:                            1,
		Important:                     1,
		NotImportant:                  1,
		UnknownImportanceAmongChanged: 1,
	}, pm.Changes)

	// Only changed units feed the quantifiable counters: the unchanged
	// unit's NA impact and sentiments never appear.
	assert.Equal(t, map[string]int{"high": 1, "low": 1, "moderate": 1}, pm.Semantic)
	assert.Equal(t, 1, pm.LLMFields.SentimentBefore["Negative"])
	assert.Equal(t, 0, pm.LLMFields.SentimentBefore["Very Negative"])
	assert.NotContains(t, pm.Semantic, "NA")

	assert.Equal(t, 2, pm.LLMFields.TextualDifferences["no"]+pm.LLMFields.TextualDifferences["yes"])
	assert.Equal(t, 1, pm.LLMFields.POSCategoryChanged["VERB"])
	assert.Equal(t, 1, pm.LLMFields.POSCategoryChanged["NOUN"])
	assert.Equal(t, 0, pm.LLMFields.POSCategoryChanged["ADJ"])
	assert.Equal(t, 1, pm.LLMFields.NERCategoryChanged["DATE"])
	assert.Equal(t, map[string]int{"yes": 1, "no": 1}, pm.LLMFields.GrammarChange)
	assert.Equal(t, 2, pm.LLMFields.VerbalChanges["tense"], "case-insensitive verbal values")
	assert.Equal(t, 1, pm.LLMFields.VerbalChanges["voice"])
	assert.Equal(t, map[string]int{"tense": 1, "aspect": 0, "voice": 1, "modality": 0}, pm.VerbalFlags)
	assert.Equal(t, map[string]int{"true": 1, "false": 2}, pm.LLMFields.Rewritten)
	assert.Equal(t, 1, pm.LLMFields.ImportanceCategoryFreq["major wording"])
	assert.Equal(t, map[string]int{
		LabelImportant:    1,
		LabelNotImportant: 1,
		LabelUnknown:      1,
	}, pm.LLMFields.ImportanceOverall)
	assert.Equal(t, map[string]int{"units_total": 4, "changed_units_total": 3}, pm.LLMFields.Bases)
}

func TestImportancePrefixes(t *testing.T) {
	assert.True(t, IsImportant("Important - changes the claim"))
	assert.True(t, IsImportant("  IMPORTANT - x"))
	assert.False(t, IsImportant("Not important - typo fix"))
	assert.True(t, IsNotImportant("Not important - typo fix"))
	assert.False(t, IsNotImportant("Important - x"))
	assert.False(t, IsImportant("Importantly different"))
}

func TestSortPairs(t *testing.T) {
	perPair := []PairMetrics{
		{PairIndex: 2, TimestampNew: str("2023-02-01T00:00:00Z")},
		{PairIndex: 5, TimestampNew: nil},
		{PairIndex: 1, TimestampNew: str("2023-01-01T00:00:00Z")},
		{PairIndex: 0, TimestampNew: str("2023-01-01T00:00:00Z")},
	}
	SortPairs(perPair)

	var order []int
	for _, p := range perPair {
		order = append(order, p.PairIndex)
	}
	assert.Equal(t, []int{5, 0, 1, 2}, order)
}

func TestBuildSummary(t *testing.T) {
	p1 := ComputePair(testDoc())
	p2 := ComputePair(testDoc())
	summary := BuildSummary([]PairMetrics{p1, p2})

	assert.Equal(t, 2, summary.PairsTotal)
	assert.Equal(t, 8, summary.UnitsTotal)
	assert.Equal(t, 6, summary.ChangedUnitsTotal)
	assert.Equal(t, 2, summary.Changes.Important)
	assert.Equal(t, map[string]int{"match": 4, "insert": 2, "delete": 2}, summary.UnitsByType)
	assert.Equal(t, 2, summary.Semantic["high"])
	assert.Equal(t, 2, summary.LLMFields.ImportanceOverall[LabelImportant])
	assert.Equal(t, map[string]int{"units_total": 8, "changed_units_total": 6}, summary.LLMFields.Bases)
}

func TestComputerRun(t *testing.T) {
	analysisDir := t.TempDir()
	articleDir := filepath.Join(analysisDir, "example.com_story")
	require.NoError(t, os.MkdirAll(articleDir, 0o755))

	doc := testDoc()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(articleDir, "0003.json"), data, 0o644))

	// Noise that must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(articleDir, "broken.json"), []byte("{oops"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(articleDir, "noitems.json"), []byte(`{"pair_index":9}`), 0o644))

	require.NoError(t, NewComputer(analysisDir).Run())

	out, err := os.ReadFile(filepath.Join(articleDir, MetricsDirName, MetricsFileName))
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(out, &report))
	assert.Equal(t, 1, report.Summary.PairsTotal)
	require.Len(t, report.PerPair, 1)
	assert.Equal(t, 3, report.PerPair[0].PairIndex)
}
