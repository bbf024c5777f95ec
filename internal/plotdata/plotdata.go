// Package plotdata reduces the filtered subject groups to the document read
// by the plotting front end: one point per subject, x the length of the
// best HSP on the subject and y the fraction of positive matches in it.
package plotdata

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"matchplot/internal/alignments"
)

// QuerySequences gives the sequence of a query read.
type QuerySequences interface {
	Sequence(id string) (string, error)
}

// Config controls Build.
type Config struct {
	SampleName string
	// VerboseLabels selects the multi-field HTML summary for the hover text
	// instead of the bare subject title.
	VerboseLabels bool
	Subjects      alignments.SubjectLookup
	Queries       QuerySequences
}

// Document is the JSON output. X, Y, MatchingQueries and Text are parallel.
type Document struct {
	SampleName      string            `json:"sampleName"`
	X               []int             `json:"x"`
	Y               []float64         `json:"y"`
	MatchingQueries [][]string        `json:"matchingQueries"`
	Text            []string          `json:"text"`
	Subjects        map[string]string `json:"subjects"`
	Queries         map[string]string `json:"queries"`
}

// Len is the number of points.
func (d *Document) Len() int { return len(d.X) }

// WriteJSON writes d as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Build makes one point per group of titles, in collection order.
func Build(titles *alignments.TitlesAlignments, cfg Config) (*Document, error) {
	doc := &Document{
		SampleName:      cfg.SampleName,
		X:               []int{},
		Y:               []float64{},
		MatchingQueries: [][]string{},
		Text:            []string{},
		Subjects:        make(map[string]string),
		Queries:         make(map[string]string),
	}

	for _, g := range titles.Values() {
		subject, err := alignments.ResolveSubject(cfg.Subjects, g.SubjectTitle)
		if err != nil {
			return nil, err
		}
		title := subject.Title
		doc.Subjects[title] = subject.Sequence

		for _, a := range g.Alignments {
			id := a.Read.ID
			if _, ok := doc.Queries[id]; ok {
				continue
			}
			seq, err := cfg.Queries.Sequence(id)
			if err != nil {
				return nil, errors.Wrapf(err, "sequence of query %q", id)
			}
			doc.Queries[id] = seq
		}

		best, ok := g.BestHSP()
		if !ok {
			return nil, &alignments.IntegrityError{SubjectTitle: g.SubjectTitle, Reason: "subject has no HSPs"}
		}
		matchLength := best.MatchLength()
		if matchLength <= 0 {
			return nil, &alignments.IntegrityError{
				SubjectTitle: g.SubjectTitle,
				Reason:       fmt.Sprintf("best HSP has empty match length %d", matchLength),
			}
		}
		if matchLength > g.SubjectLength {
			return nil, &alignments.IntegrityError{
				SubjectTitle: g.SubjectTitle,
				Reason:       fmt.Sprintf("match length %d exceeds subject length %d", matchLength, g.SubjectLength),
			}
		}
		matchFraction := float64(best.PositiveCount) / float64(matchLength)

		queries := make([]string, 0, len(g.Alignments))
		queryLines := make([]string, 0, len(g.Alignments))
		for _, a := range g.Alignments {
			queries = append(queries, a.Read.ID)
			queryLines = append(queryLines, QueryLabel(a.Read, matchLength))
		}

		var text string
		if cfg.VerboseLabels {
			text = SubjectLabel(title, g, best, matchFraction) + strings.Join(queryLines, "<br>")
		} else {
			text = title
		}

		doc.X = append(doc.X, matchLength)
		doc.Y = append(doc.Y, matchFraction)
		doc.MatchingQueries = append(doc.MatchingQueries, queries)
		doc.Text = append(doc.Text, text)
	}

	return doc, nil
}

// QueryLabel describes one matching query: its length in nucleotides and
// amino acids and how much of it is not covered by the match. A query
// shorter than one codon has no unmatched percentage.
func QueryLabel(read alignments.Read, matchLength int) string {
	lengthAA := read.Length / 3
	unmatched := lengthAA - matchLength
	percent := "n/a"
	if lengthAA > 0 {
		percent = fmt.Sprintf("%.2f%%", float64(unmatched)/float64(lengthAA)*100)
	}
	return fmt.Sprintf(
		"<strong>Matching query:</strong> %s (length %d nt / %d aa), %d aa (%s) unmatched",
		read.ID, read.Length, lengthAA, unmatched, percent)
}

// SubjectLabel is the verbose summary of a subject group.
func SubjectLabel(title string, g *alignments.TitleAlignments, best alignments.HSP, matchFraction float64) string {
	return fmt.Sprintf(
		"<strong>Matched subject:</strong> %s<br>"+
			"<strong>Subject length:</strong> %d aa<br>"+
			"<strong>Matched region length:</strong> %d aa<br>"+
			"<strong>Number of positive aa matches in region:</strong> %d (%.2f%%)<br>"+
			"<strong>Subject coverage (across all matching queries):</strong> %.2f%%<br>"+
			"<strong>Queries matching subject:</strong> %d<br>",
		title,
		g.SubjectLength,
		best.MatchLength(),
		best.PositiveCount, matchFraction*100,
		g.Coverage()*100,
		g.ReadCount())
}
