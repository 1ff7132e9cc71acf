package metrics

import (
	"sort"
	"strings"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/internal/dataset"
)

func nonBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// IsImportant reports whether an overall-importance value starts with
// the "important -" prefix.
func IsImportant(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "important -")
}

// IsNotImportant reports whether an overall-importance value starts
// with the "not important -" prefix.
func IsNotImportant(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "not important -")
}

// changed classifies a textual-differences value. kind is one of
// "yes", "addition", "deletion", or "" for unchanged.
func changed(textualDifferences string) (kind string) {
	switch strings.ToLower(strings.TrimSpace(textualDifferences)) {
	case "yes (addition)", "yes addition":
		return "addition"
	case "yes (deletion)", "yes deletion":
		return "deletion"
	case "yes":
		return "yes"
	default:
		return ""
	}
}

// ComputePair derives the metrics of one analyzed pair.
func ComputePair(doc analysis.Document) PairMetrics {
	pm := PairMetrics{
		PairIndex:          doc.PairIndex,
		UnitsTotal:         len(doc.Items),
		UnitsByType:        zeroedTypes(),
		ChangedUnitsByType: zeroedTypes(),
		Semantic:           map[string]int{},
		VerbalFlags:        map[string]int{"tense": 0, "aspect": 0, "voice": 0, "modality": 0},
		LLMFields:          newPairLLMFields(),
	}

	oldAt, errOld := dataset.ParseWARCDate(doc.MetadataOld.WARCDate)
	if errOld == nil {
		s := dataset.FormatWARCDate(oldAt)
		pm.TimestampOld = &s
	}
	newAt, errNew := dataset.ParseWARCDate(doc.MetadataNew.WARCDate)
	if errNew == nil {
		s := dataset.FormatWARCDate(newAt)
		pm.TimestampNew = &s
	}
	if errOld == nil && errNew == nil {
		d := newAt.Sub(oldAt).Hours()
		pm.DeltaHours = &d
	}

	for _, u := range doc.Items {
		if nonBlank(u.Sentences.M1) {
			pm.UnitsM1NonNull++
		}
		if nonBlank(u.Sentences.M2) {
			pm.UnitsM2NonNull++
		}

		unitType := strings.ToLower(strings.TrimSpace(u.Type))
		if _, ok := pm.UnitsByType[unitType]; ok {
			pm.UnitsByType[unitType]++
		}

		a := u.Assessment
		td := strings.TrimSpace(a.TextualDifferences)
		pm.LLMFields.TextualDifferences[td]++

		switch changed(td) {
		case "addition":
			pm.Changes.YesAddition++
		case "deletion":
			pm.Changes.YesDeletion++
		case "yes":
			pm.Changes.Yes++
		default:
			pm.Changes.No++
			continue
		}

		// Everything below counts changed units only.
		pm.ChangedUnitsTotal++

		switch {
		case IsImportant(a.OverallImportance):
			pm.Changes.Important++
		case IsNotImportant(a.OverallImportance):
			pm.Changes.NotImportant++
		default:
			pm.Changes.UnknownImportanceAmongChanged++
		}

		if _, ok := pm.ChangedUnitsByType[unitType]; ok {
			pm.ChangedUnitsByType[unitType]++
		}

		if si := strings.TrimSpace(a.SemanticImpact); si != "" {
			pm.Semantic[si]++
		}
		if a.SentimentBefore != "" {
			pm.LLMFields.SentimentBefore[a.SentimentBefore]++
		}
		if a.SentimentAfter != "" {
			pm.LLMFields.SentimentAfter[a.SentimentAfter]++
		}
		if a.SentimentChangeDirection != "" {
			pm.LLMFields.SentimentChangeDirection[a.SentimentChangeDirection]++
		}

		for _, p := range a.POSCategoryChanged {
			if _, ok := pm.LLMFields.POSCategoryChanged[p]; ok {
				pm.LLMFields.POSCategoryChanged[p]++
			}
		}
		for _, n := range a.NERCategoryChanged {
			if _, ok := pm.LLMFields.NERCategoryChanged[n]; ok {
				pm.LLMFields.NERCategoryChanged[n]++
			}
		}

		gc := strings.ToLower(strings.TrimSpace(a.GrammarChange))
		if gc == "yes" || gc == "no" {
			pm.LLMFields.GrammarChange[gc]++
		}
		for _, v := range a.VerbalChanges {
			vNorm := strings.ToLower(strings.TrimSpace(v))
			if _, ok := pm.LLMFields.VerbalChanges[vNorm]; ok {
				pm.LLMFields.VerbalChanges[vNorm]++
			}
		}

		if a.Rewritten {
			pm.LLMFields.Rewritten["true"]++
		} else {
			pm.LLMFields.Rewritten["false"]++
		}

		if ic := strings.ToLower(strings.TrimSpace(a.ImportanceCategory)); ic != "" {
			pm.LLMFields.ImportanceCategoryFreq[ic]++
		}
	}

	pm.Changes.TotalChanged = pm.Changes.Yes + pm.Changes.YesAddition + pm.Changes.YesDeletion

	for k := range pm.VerbalFlags {
		if pm.LLMFields.VerbalChanges[k] > 0 {
			pm.VerbalFlags[k] = 1
		}
	}

	pm.LLMFields.SemanticImpact = copyCounts(pm.Semantic)
	pm.LLMFields.ImportanceOverall = map[string]int{
		LabelImportant:    pm.Changes.Important,
		LabelNotImportant: pm.Changes.NotImportant,
		LabelUnknown:      pm.Changes.UnknownImportanceAmongChanged,
	}
	pm.LLMFields.Bases = map[string]int{
		"units_total":         pm.UnitsTotal,
		"changed_units_total": pm.ChangedUnitsTotal,
	}
	return pm
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func addCounts(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}

// SortPairs orders pair metrics chronologically by new-side timestamp,
// then pair index. Pairs without a timestamp sort first.
func SortPairs(perPair []PairMetrics) {
	sort.SliceStable(perPair, func(i, j int) bool {
		ti, tj := "", ""
		if perPair[i].TimestampNew != nil {
			ti = *perPair[i].TimestampNew
		}
		if perPair[j].TimestampNew != nil {
			tj = *perPair[j].TimestampNew
		}
		if ti != tj {
			return ti < tj
		}
		return perPair[i].PairIndex < perPair[j].PairIndex
	})
}

// BuildSummary sums a pair metrics list element-wise.
func BuildSummary(perPair []PairMetrics) Summary {
	s := Summary{
		PairsTotal:         len(perPair),
		UnitsByType:        zeroedTypes(),
		ChangedUnitsByType: zeroedTypes(),
		Semantic:           map[string]int{},
		LLMFields:          zeroedLLMFields(),
	}
	for _, p := range perPair {
		s.UnitsTotal += p.UnitsTotal
		s.UnitsM1NonNull += p.UnitsM1NonNull
		s.UnitsM2NonNull += p.UnitsM2NonNull
		addCounts(s.UnitsByType, p.UnitsByType)
		addCounts(s.ChangedUnitsByType, p.ChangedUnitsByType)
		s.ChangedUnitsTotal += p.ChangedUnitsTotal

		s.Changes.TotalChanged += p.Changes.TotalChanged
		s.Changes.Yes += p.Changes.Yes
		s.Changes.YesAddition += p.Changes.YesAddition
		s.Changes.YesDeletion += p.Changes.YesDeletion
		s.Changes.No += p.Changes.No
		s.Changes.Important += p.Changes.Important
		s.Changes.NotImportant += p.Changes.NotImportant
		s.Changes.UnknownImportanceAmongChanged += p.Changes.UnknownImportanceAmongChanged

		addCounts(s.Semantic, p.Semantic)

		addCounts(s.LLMFields.TextualDifferences, p.LLMFields.TextualDifferences)
		addCounts(s.LLMFields.SemanticImpact, p.LLMFields.SemanticImpact)
		addCounts(s.LLMFields.SentimentBefore, p.LLMFields.SentimentBefore)
		addCounts(s.LLMFields.SentimentAfter, p.LLMFields.SentimentAfter)
		addCounts(s.LLMFields.SentimentChangeDirection, p.LLMFields.SentimentChangeDirection)
		addCounts(s.LLMFields.ImportanceOverall, p.LLMFields.ImportanceOverall)
		addCounts(s.LLMFields.ImportanceCategoryFreq, p.LLMFields.ImportanceCategoryFreq)
		addCounts(s.LLMFields.POSCategoryChanged, p.LLMFields.POSCategoryChanged)
		addCounts(s.LLMFields.NERCategoryChanged, p.LLMFields.NERCategoryChanged)
		addCounts(s.LLMFields.GrammarChange, p.LLMFields.GrammarChange)
		addCounts(s.LLMFields.VerbalChanges, p.LLMFields.VerbalChanges)
		addCounts(s.LLMFields.Rewritten, p.LLMFields.Rewritten)
		addCounts(s.LLMFields.Bases, p.LLMFields.Bases)
	}
	return s
}
