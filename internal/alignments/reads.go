package alignments

import (
	"strings"

	"github.com/pkg/errors"
)

// Read is a query sequence. Only the length is kept here; sequences are
// fetched from the read store when the output is written.
type Read struct {
	ID     string
	Length int
}

// Record is one raw HSP as produced by a hit-file reader.
type Record struct {
	ReadID        string
	SubjectTitle  string
	SubjectLength int
	HSP           HSP
}

// Alignment associates one read with one subject through one or more HSPs.
type Alignment struct {
	SubjectTitle  string
	SubjectLength int
	HSPs          []HSP
}

// ReadAlignments is a read together with all of its alignments.
type ReadAlignments struct {
	Read       Read
	Alignments []Alignment
}

// ReadsAlignments is the full set of reads and their alignments. Filters
// never modify a ReadsAlignments, they return a new, narrower one.
type ReadsAlignments struct {
	Reads   []ReadAlignments
	Scoring Scoring
}

// firstToken returns the first whitespace-delimited field of s. Read ids and
// subject titles are both shortened this way.
func firstToken(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}

// NewReadsAlignments groups records by read (in the order of reads) and,
// within a read, by subject title (in first-seen order). Records are matched
// to reads by their full id and then by first token. Every HSP is checked
// against the model invariants.
func NewReadsAlignments(reads []Read, records []Record, scoring Scoring) (*ReadsAlignments, error) {
	byID := make(map[string]int, len(reads))
	byToken := make(map[string]int, len(reads))
	ambiguous := make(map[string]bool)
	for i, r := range reads {
		if _, ok := byID[r.ID]; ok {
			return nil, errors.Errorf("duplicate read id %q", r.ID)
		}
		byID[r.ID] = i
		tok := firstToken(r.ID)
		if _, ok := byToken[tok]; ok {
			ambiguous[tok] = true
		}
		byToken[tok] = i
	}

	result := &ReadsAlignments{
		Reads:   make([]ReadAlignments, len(reads)),
		Scoring: scoring,
	}
	titleIndex := make([]map[string]int, len(reads))
	for i, r := range reads {
		result.Reads[i].Read = r
	}

	for _, rec := range records {
		i, ok := byID[rec.ReadID]
		if !ok {
			tok := firstToken(rec.ReadID)
			if i, ok = byToken[tok]; ok && ambiguous[tok] {
				return nil, errors.Errorf("read id %q matches more than one read", rec.ReadID)
			}
		}
		if !ok {
			return nil, errors.Errorf("hit for unknown read %q", rec.ReadID)
		}
		if err := rec.HSP.check(reads[i].ID, rec.SubjectTitle); err != nil {
			return nil, err
		}

		if titleIndex[i] == nil {
			titleIndex[i] = make(map[string]int)
		}
		ra := &result.Reads[i]
		j, seen := titleIndex[i][rec.SubjectTitle]
		if !seen {
			j = len(ra.Alignments)
			titleIndex[i][rec.SubjectTitle] = j
			ra.Alignments = append(ra.Alignments, Alignment{
				SubjectTitle:  rec.SubjectTitle,
				SubjectLength: rec.SubjectLength,
			})
		}
		ra.Alignments[j].HSPs = append(ra.Alignments[j].HSPs, rec.HSP)
	}

	return result, nil
}

// AlignmentCount is the number of alignments across all reads.
func (r *ReadsAlignments) AlignmentCount() int {
	n := 0
	for _, ra := range r.Reads {
		n += len(ra.Alignments)
	}
	return n
}

// BestAlignmentIndex returns the index of the alignment holding the best HSP
// of the read, or -1 if the read has no HSPs.
func (ra ReadAlignments) BestAlignmentIndex(scoring Scoring) int {
	best, bestHSP := -1, HSP{}
	for i, a := range ra.Alignments {
		j := bestHSPIndex(a.HSPs, scoring)
		if j == -1 {
			continue
		}
		if best == -1 || scoring.Better(a.HSPs[j].Score, bestHSP.Score) {
			best, bestHSP = i, a.HSPs[j]
		}
	}
	return best
}
