package alignments

import (
	"sort"

	"github.com/biogo/store/interval"
)

// TitleAlignment is the part of one read's alignment that hits a given
// subject.
type TitleAlignment struct {
	Read Read
	HSPs []HSP
}

// TitleAlignments holds every alignment against one subject.
type TitleAlignments struct {
	SubjectTitle  string
	SubjectLength int
	Alignments    []TitleAlignment
	Scoring       Scoring
}

// HSPs returns all HSPs of the group, in read order.
func (t *TitleAlignments) HSPs() []HSP {
	var hsps []HSP
	for _, a := range t.Alignments {
		hsps = append(hsps, a.HSPs...)
	}
	return hsps
}

// HSPCount is the number of HSPs in the group.
func (t *TitleAlignments) HSPCount() int {
	n := 0
	for _, a := range t.Alignments {
		n += len(a.HSPs)
	}
	return n
}

// BestHSP returns the best-scoring HSP of the group. On ties the first one
// encountered (read order, then HSP order) wins. The second result is false
// for a group without HSPs.
func (t *TitleAlignments) BestHSP() (HSP, bool) {
	hsps := t.HSPs()
	i := bestHSPIndex(hsps, t.Scoring)
	if i == -1 {
		return HSP{}, false
	}
	return hsps[i], true
}

// BestScore is the score of BestHSP, or 0 for an empty group.
func (t *TitleAlignments) BestScore() float64 {
	h, _ := t.BestHSP()
	return h.Score
}

// HasScoreNotWorseThan reports whether at least one HSP is at least as
// good as score.
func (t *TitleAlignments) HasScoreNotWorseThan(score float64) bool {
	for _, a := range t.Alignments {
		for _, h := range a.HSPs {
			if t.Scoring.NotWorse(h.Score, score) {
				return true
			}
		}
	}
	return false
}

// MedianScore is the median of all HSP scores (mean of the two middle
// values for an even count), or 0 for an empty group.
func (t *TitleAlignments) MedianScore() float64 {
	hsps := t.HSPs()
	if len(hsps) == 0 {
		return 0
	}
	scores := make([]float64, len(hsps))
	for i, h := range hsps {
		scores[i] = h.Score
	}
	sort.Float64s(scores)
	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		return scores[mid]
	}
	return (scores[mid-1] + scores[mid]) / 2
}

// ReadIDs returns the set of distinct read ids in the group.
func (t *TitleAlignments) ReadIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(t.Alignments))
	for _, a := range t.Alignments {
		ids[a.Read.ID] = struct{}{}
	}
	return ids
}

// ReadCount is the number of distinct reads aligned to the subject.
func (t *TitleAlignments) ReadCount() int {
	return len(t.ReadIDs())
}

// span is an HSP subject range stored in the coverage interval tree.
type span struct {
	id         uintptr
	start, end int
}

func (s span) Overlap(b interval.IntRange) bool {
	return s.end > b.Start && s.start < b.End
}
func (s span) ID() uintptr { return s.id }
func (s span) Range() interval.IntRange {
	return interval.IntRange{Start: s.start, End: s.end}
}

// Coverage is the fraction of the subject covered by the union of all HSP
// subject spans. Spans are clipped to the subject, so the result is always
// in [0, 1].
func (t *TitleAlignments) Coverage() float64 {
	if t.SubjectLength <= 0 {
		return 0
	}

	var tree interval.IntTree
	var id uintptr
	for _, a := range t.Alignments {
		for _, h := range a.HSPs {
			start, end := max(h.SubjectStart, 0), min(h.SubjectEnd, t.SubjectLength)
			if start >= end {
				continue
			}
			// ids are unique, so Insert cannot fail.
			_ = tree.Insert(span{id: id, start: start, end: end}, false)
			id++
		}
	}

	covered, curStart, curEnd := 0, 0, 0
	tree.Do(func(e interval.IntInterface) bool {
		r := e.Range()
		if r.Start > curEnd {
			covered += curEnd - curStart
			curStart, curEnd = r.Start, r.End
		} else if r.End > curEnd {
			curEnd = r.End
		}
		return false
	})
	covered += curEnd - curStart

	return float64(covered) / float64(t.SubjectLength)
}

// TitlesAlignments is an ordered collection of subject groups.
type TitlesAlignments struct {
	Scoring Scoring
	titles  []string
	groups  map[string]*TitleAlignments
}

// NewTitlesAlignments groups the alignments of reads by subject title. Titles
// keep the order in which they are first seen.
func NewTitlesAlignments(reads *ReadsAlignments) *TitlesAlignments {
	t := &TitlesAlignments{
		Scoring: reads.Scoring,
		groups:  make(map[string]*TitleAlignments),
	}
	for _, ra := range reads.Reads {
		for _, a := range ra.Alignments {
			g, ok := t.groups[a.SubjectTitle]
			if !ok {
				g = &TitleAlignments{
					SubjectTitle:  a.SubjectTitle,
					SubjectLength: a.SubjectLength,
					Scoring:       reads.Scoring,
				}
				t.groups[a.SubjectTitle] = g
				t.titles = append(t.titles, a.SubjectTitle)
			}
			g.Alignments = append(g.Alignments, TitleAlignment{
				Read: ra.Read,
				HSPs: append([]HSP(nil), a.HSPs...),
			})
		}
	}
	return t
}

// Len is the number of subject groups.
func (t *TitlesAlignments) Len() int { return len(t.titles) }

// Titles returns the subject titles in collection order.
func (t *TitlesAlignments) Titles() []string {
	return append([]string(nil), t.titles...)
}

// Get returns the group for title.
func (t *TitlesAlignments) Get(title string) (*TitleAlignments, bool) {
	g, ok := t.groups[title]
	return g, ok
}

// Values returns the groups in collection order.
func (t *TitlesAlignments) Values() []*TitleAlignments {
	values := make([]*TitleAlignments, len(t.titles))
	for i, title := range t.titles {
		values[i] = t.groups[title]
	}
	return values
}

// Subset returns a new collection holding the named groups in the given
// order. Unknown and repeated titles are skipped.
func (t *TitlesAlignments) Subset(titles []string) *TitlesAlignments {
	sub := &TitlesAlignments{
		Scoring: t.Scoring,
		groups:  make(map[string]*TitleAlignments, len(titles)),
	}
	for _, title := range titles {
		g, ok := t.groups[title]
		if !ok {
			continue
		}
		if _, dup := sub.groups[title]; dup {
			continue
		}
		sub.groups[title] = g
		sub.titles = append(sub.titles, title)
	}
	return sub
}
