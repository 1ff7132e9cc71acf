// Package charts renders per-article importance-over-time charts from
// stored pair analyses. Each chart shows one memento pair per day as a
// stacked Important / Not important bar of changed units.
package charts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/internal/metrics"
	"github.com/mementolab/driftwatch/pkg/errors"
)

// ImportanceCounts tallies the changed units of one pair by parsed
// importance.
type ImportanceCounts struct {
	Important    int
	NotImportant int
}

// Score is the pair's weight when competing for its day's slot.
func (c ImportanceCounts) Score() int {
	return c.Important + c.NotImportant
}

// PairIndex maps an article's pairs to their new-side capture moments.
// Both slices are aligned with pair index.
type PairIndex struct {
	Timestamps []string // ISO Z timestamp of each pair's M2, or pair_N fallback
	Dates      []string // YYYY-MM-DD prefix of the timestamp
}

// PairDates derives the pair timeline of a chronologically unsorted
// memento list.
func PairDates(mementos []dataset.Memento) PairIndex {
	dataset.SortByWARCDate(mementos)

	var idx PairIndex
	for i := 0; i < len(mementos)-1; i++ {
		ts := fmt.Sprintf("pair_%d", i+1)
		if at, ok := mementos[i+1].CapturedAt(); ok {
			ts = dataset.FormatWARCDate(at)
		}
		idx.Timestamps = append(idx.Timestamps, ts)
		if len(ts) >= 10 {
			idx.Dates = append(idx.Dates, ts[:10])
		} else {
			idx.Dates = append(idx.Dates, ts)
		}
	}
	return idx
}

// IndexDataset builds the pair timeline for every dataset file, keyed
// by the article's analysis slug. Unreadable files are skipped.
func IndexDataset(store *dataset.Store) (map[string]PairIndex, error) {
	titles, err := store.List()
	if err != nil {
		return nil, err
	}
	out := make(map[string]PairIndex, len(titles))
	for _, title := range titles {
		mementos, err := store.Load(title)
		if err != nil {
			return nil, err
		}
		if len(mementos) == 0 {
			continue
		}
		out[analysis.Slug(title, mementos)] = PairDates(mementos)
	}
	return out, nil
}

// LoadImportanceCounts reads the numeric pair files of one article
// folder and counts Important / Not important among changed units.
func LoadImportanceCounts(articleDir string) (map[int]ImportanceCounts, error) {
	entries, err := os.ReadDir(articleDir)
	if err != nil {
		return nil, errors.WrapIO("read article directory", articleDir, err)
	}

	out := make(map[int]ImportanceCounts)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".json")
		pairIndex, err := strconv.Atoi(base)
		if err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(articleDir, e.Name()))
		if err != nil {
			continue
		}
		var doc analysis.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}

		var counts ImportanceCounts
		for _, u := range doc.Items {
			if !isChange(u.Assessment.TextualDifferences) {
				continue
			}
			switch {
			case metrics.IsImportant(u.Assessment.OverallImportance):
				counts.Important++
			case metrics.IsNotImportant(u.Assessment.OverallImportance):
				counts.NotImportant++
			}
		}
		out[pairIndex] = counts
	}
	return out, nil
}

func isChange(textualDifferences string) bool {
	switch strings.ToLower(strings.TrimSpace(textualDifferences)) {
	case "yes", "yes (addition)", "yes addition", "yes (deletion)", "yes deletion":
		return true
	}
	return false
}

// PickDailyPairs selects one pair per calendar day, in chronological
// day order: the pair with the highest importance score wins, and ties
// go to the day's earliest pair.
func PickDailyPairs(pairDates []string, counts map[int]ImportanceCounts) []int {
	byDate := map[string][]int{}
	for i, d := range pairDates {
		byDate[d] = append(byDate[d], i)
	}

	days := make([]string, 0, len(byDate))
	for d := range byDate {
		days = append(days, d)
	}
	sort.Strings(days)

	var selected []int
	for _, d := range days {
		candidates := byDate[d]
		bestScore, bestNegIdx := -1, 0
		bestIdx := candidates[len(candidates)-1]
		for _, pairIndex := range candidates {
			score := counts[pairIndex].Score()
			if score > bestScore || (score == bestScore && -pairIndex > bestNegIdx) {
				bestScore, bestNegIdx = score, -pairIndex
				bestIdx = pairIndex
			}
		}
		selected = append(selected, bestIdx)
	}
	return selected
}
