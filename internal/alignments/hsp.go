// Package alignments holds the in-memory model of search results: the HSPs
// found between query reads and subject sequences, grouped per read
// (ReadsAlignments) and per subject title (TitlesAlignments).
package alignments

import (
	"fmt"
)

// Scoring tells how two scores compare. BLAST and DIAMOND bit scores are
// better when higher, e-values are better when lower.
type Scoring int

const (
	HigherIsBetter Scoring = iota
	LowerIsBetter
)

// String returns the scoring name
func (s Scoring) String() string {
	switch s {
	case HigherIsBetter:
		return "higher-is-better"
	case LowerIsBetter:
		return "lower-is-better"
	default:
		return "unknown"
	}
}

// Better reports whether score a is strictly better than score b.
func (s Scoring) Better(a, b float64) bool {
	if s == LowerIsBetter {
		return a < b
	}
	return a > b
}

// NotWorse reports whether score a is at least as good as score b.
func (s Scoring) NotWorse(a, b float64) bool {
	return !s.Better(b, a)
}

// HSP is one high-scoring pair between a read and a subject. Subject and
// query offsets are 0-based and half-open.
type HSP struct {
	Score          float64
	Expect         float64
	SubjectStart   int
	SubjectEnd     int
	QueryStart     int
	QueryEnd       int
	PositiveCount  int
	IdenticalCount int
}

// MatchLength is the length of the HSP on the subject.
func (h HSP) MatchLength() int {
	return h.SubjectEnd - h.SubjectStart
}

// IntegrityError reports input that breaks an invariant of the model, such
// as an HSP with more positive matches than aligned subject positions.
type IntegrityError struct {
	ReadID       string
	SubjectTitle string
	Reason       string
}

func (e *IntegrityError) Error() string {
	if e.ReadID == "" {
		return fmt.Sprintf("data integrity fault for subject %q: %s", e.SubjectTitle, e.Reason)
	}
	return fmt.Sprintf("data integrity fault for read %q vs subject %q: %s", e.ReadID, e.SubjectTitle, e.Reason)
}

// check rejects HSPs that would make match fractions meaningless: empty or
// inverted subject spans and positive counts outside [0, span].
func (h HSP) check(readID, title string) error {
	span := h.MatchLength()
	switch {
	case span <= 0:
		return &IntegrityError{
			ReadID: readID, SubjectTitle: title,
			Reason: fmt.Sprintf("empty subject span [%d, %d)", h.SubjectStart, h.SubjectEnd),
		}
	case h.SubjectStart < 0:
		return &IntegrityError{
			ReadID: readID, SubjectTitle: title,
			Reason: fmt.Sprintf("negative subject start %d", h.SubjectStart),
		}
	case h.PositiveCount < 0 || h.PositiveCount > span:
		return &IntegrityError{
			ReadID: readID, SubjectTitle: title,
			Reason: fmt.Sprintf("positive count %d outside [0, %d]", h.PositiveCount, span),
		}
	}
	return nil
}

// bestHSPIndex returns the index of the best HSP in hsps, the first one on
// ties, or -1 for an empty slice.
func bestHSPIndex(hsps []HSP, scoring Scoring) int {
	best := -1
	for i, h := range hsps {
		if best == -1 || scoring.Better(h.Score, hsps[best].Score) {
			best = i
		}
	}
	return best
}
