package alignments

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SortOn is the attribute subject groups are ranked by.
type SortOn int

const (
	SortOnMaxScore SortOn = iota
	SortOnMedianScore
	SortOnReadCount
	SortOnLength
	SortOnTitle
)

var sortOnNames = map[SortOn]string{
	SortOnMaxScore:    "maxScore",
	SortOnMedianScore: "medianScore",
	SortOnReadCount:   "readCount",
	SortOnLength:      "length",
	SortOnTitle:       "title",
}

func (s SortOn) String() string {
	if name, ok := sortOnNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSortOn converts a sort key name to a SortOn.
func ParseSortOn(name string) (SortOn, error) {
	for s, n := range sortOnNames {
		if n == name {
			return s, nil
		}
	}
	return 0, errors.Errorf("invalid sort key %q (use maxScore, medianScore, readCount, length or title)", name)
}

// titleSortList implements sort.Interface over subject groups. Numeric keys
// put the best group first; titles sort ascending and break every tie.
type titleSortList struct {
	items   []*TitleAlignments
	keys    []float64
	on      SortOn
	scoring Scoring
}

func newTitleSortList(items []*TitleAlignments, on SortOn, scoring Scoring) *titleSortList {
	list := &titleSortList{
		items:   items,
		keys:    make([]float64, len(items)),
		on:      on,
		scoring: scoring,
	}
	for i, g := range items {
		switch on {
		case SortOnMaxScore:
			list.keys[i] = g.BestScore()
		case SortOnMedianScore:
			list.keys[i] = g.MedianScore()
		case SortOnReadCount:
			list.keys[i] = float64(g.ReadCount())
		case SortOnLength:
			list.keys[i] = float64(g.SubjectLength)
		}
	}
	return list
}

func (list *titleSortList) Len() int { return len(list.items) }
func (list *titleSortList) Swap(i, j int) {
	list.items[i], list.items[j] = list.items[j], list.items[i]
	list.keys[i], list.keys[j] = list.keys[j], list.keys[i]
}

func (list *titleSortList) Less(i, j int) bool {
	ki, kj := list.keys[i], list.keys[j]
	if ki != kj {
		switch list.on {
		case SortOnMaxScore, SortOnMedianScore:
			return list.scoring.Better(ki, kj)
		case SortOnReadCount, SortOnLength:
			return ki > kj
		}
	}
	return list.items[i].SubjectTitle < list.items[j].SubjectTitle
}

// SortTitles returns the titles ordered by the given key.
func (t *TitlesAlignments) SortTitles(on SortOn) []string {
	list := newTitleSortList(t.Values(), on, t.Scoring)
	sort.Sort(list)
	titles := make([]string, len(list.items))
	for i, g := range list.items {
		titles[i] = g.SubjectTitle
	}
	return titles
}

// Summary is one tab-separated line describing the group: coverage, median
// score, best score, read count, HSP count, subject length and title.
func (t *TitleAlignments) Summary() string {
	return fmt.Sprintf("%f\t%f\t%f\t%d\t%d\t%d\t%s",
		t.Coverage(),
		t.MedianScore(),
		t.BestScore(),
		t.ReadCount(),
		t.HSPCount(),
		t.SubjectLength,
		t.SubjectTitle)
}

// TabSeparatedSummary returns one Summary line per group, ordered by the
// given key.
func (t *TitlesAlignments) TabSeparatedSummary(on SortOn) string {
	titles := t.SortTitles(on)
	lines := make([]string, len(titles))
	for i, title := range titles {
		lines[i] = t.groups[title].Summary()
	}
	return strings.Join(lines, "\n")
}
