// Package hits reads BLAST and DIAMOND output into alignment records.
//
// Both matchers are read from JSON lines: a first line holding the run
// parameters followed by one object per query,
//
//	{"query": "read1", "alignments": [{"title": "...", "length": 310,
//	  "hsps": [{"bits": 51.2, "expect": 1e-6, "sbjct_start": 12, ...}]}]}
//
// DIAMOND may also be given as 15-column tabular output
// (qtitle stitle bitscore evalue qframe qseq qstart qend sseq sstart send
// slen btop nident positive). Coordinates in both formats are 1-based and
// inclusive, possibly reversed; records carry 0-based half-open offsets.
package hits

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"

	"matchplot/internal/alignments"
)

// Matcher is the program that produced the hits.
type Matcher int

const (
	Blast Matcher = iota
	Diamond
)

func (m Matcher) String() string {
	if m == Diamond {
		return "diamond"
	}
	return "blast"
}

// ParseMatcher parses a --matcher value.
func ParseMatcher(name string) (Matcher, error) {
	switch name {
	case "blast":
		return Blast, nil
	case "diamond":
		return Diamond, nil
	}
	return Blast, errors.Errorf("unknown matcher %q (valid: blast, diamond)", name)
}

// Score selects which HSP value is used as the score.
type Score int

const (
	Bits Score = iota
	Expect
)

func (s Score) String() string {
	if s == Expect {
		return "expect"
	}
	return "bits"
}

// Scoring is the comparison that goes with the score: more bits are
// better, a smaller e-value is better.
func (s Score) Scoring() alignments.Scoring {
	if s == Expect {
		return alignments.LowerIsBetter
	}
	return alignments.HigherIsBetter
}

// ParseScore parses a --score value.
func ParseScore(name string) (Score, error) {
	switch name {
	case "bits":
		return Bits, nil
	case "expect":
		return Expect, nil
	}
	return Bits, errors.Errorf("unknown score %q (valid: bits, expect)", name)
}

// Params are the run parameters from the first line of a JSON hit file.
type Params map[string]interface{}

// Database is the database the search was run against, if recorded.
func (p Params) Database() string {
	if s, ok := p["database"].(string); ok {
		return s
	}
	return ""
}

// DatabaseType is the blastdbcmd -dbtype of the searched database, derived
// from the recorded application. Unknown applications give "guess".
func (p Params) DatabaseType() string {
	app, _ := p["application"].(string)
	switch strings.ToLower(app) {
	case "blastn", "tblastn", "tblastx":
		return "nucl"
	case "blastp", "blastx":
		return "prot"
	}
	return "guess"
}

// Result is everything read from a set of hit files.
type Result struct {
	Params  Params
	Records []alignments.Record
}

type jsonHSP struct {
	Bits           float64 `json:"bits"`
	Expect         float64 `json:"expect"`
	SubjectStart   int     `json:"sbjct_start"`
	SubjectEnd     int     `json:"sbjct_end"`
	QueryStart     int     `json:"query_start"`
	QueryEnd       int     `json:"query_end"`
	PositiveCount  int     `json:"positiveCount"`
	IdenticalCount int     `json:"identicalCount"`
}

type jsonAlignment struct {
	Title  string    `json:"title"`
	Length int       `json:"length"`
	HSPs   []jsonHSP `json:"hsps"`
}

type jsonQuery struct {
	Query      *string         `json:"query"`
	Alignments []jsonAlignment `json:"alignments"`
}

const maxLineSize = 256 << 20

// ReadFiles reads the hit files in order. Parameters come from the first
// file; a later file naming a different application or database is an
// error.
func ReadFiles(files []string, matcher Matcher, score Score) (*Result, error) {
	result := &Result{}
	for _, file := range files {
		params, records, err := readFile(file, matcher, score)
		if err != nil {
			return nil, err
		}
		if result.Params == nil {
			result.Params = params
		} else if params != nil {
			for _, key := range []string{"application", "database"} {
				if a, b := result.Params[key], params[key]; a != nil && b != nil && fmt.Sprint(a) != fmt.Sprint(b) {
					return nil, errors.Errorf("%s: %s %v differs from %v in %s", file, key, b, a, files[0])
				}
			}
		}
		result.Records = append(result.Records, records...)
	}
	if result.Params == nil {
		result.Params = Params{}
	}
	return result, nil
}

func readFile(file string, matcher Matcher, score Score) (Params, []alignments.Record, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", file)
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 1<<20), maxLineSize)

	var (
		params  Params
		records []alignments.Record
		tabular bool
		queries bool
		first   = true
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if first {
			first = false
			if line[0] != '{' {
				if matcher != Diamond {
					return nil, nil, errors.Errorf("%s: BLAST hits must be JSON", file)
				}
				tabular = true
			}
		}

		if tabular {
			record, err := parseTabular(string(line), score)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "%s line %d", file, lineNo)
			}
			records = append(records, record)
			continue
		}

		var q jsonQuery
		if err := json.Unmarshal(line, &q); err != nil {
			return nil, nil, errors.Wrapf(err, "%s line %d", file, lineNo)
		}
		if q.Query == nil {
			if params != nil || queries {
				return nil, nil, errors.Errorf("%s line %d: record has no query", file, lineNo)
			}
			params = Params{}
			if err := json.Unmarshal(line, &params); err != nil {
				return nil, nil, errors.Wrapf(err, "%s line %d", file, lineNo)
			}
			continue
		}
		queries = true
		for _, a := range q.Alignments {
			for _, h := range a.HSPs {
				records = append(records, alignments.Record{
					ReadID:        *q.Query,
					SubjectTitle:  a.Title,
					SubjectLength: a.Length,
					HSP:           h.toHSP(score),
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", file)
	}
	return params, records, nil
}

func (h jsonHSP) toHSP(score Score) alignments.HSP {
	hsp := alignments.HSP{
		Score:          h.Bits,
		Expect:         h.Expect,
		PositiveCount:  h.PositiveCount,
		IdenticalCount: h.IdenticalCount,
	}
	if score == Expect {
		hsp.Score = h.Expect
	}
	hsp.SubjectStart, hsp.SubjectEnd = halfOpen(h.SubjectStart, h.SubjectEnd)
	hsp.QueryStart, hsp.QueryEnd = halfOpen(h.QueryStart, h.QueryEnd)
	return hsp
}

// halfOpen turns a 1-based inclusive range, in either direction, into a
// 0-based half-open one.
func halfOpen(a, b int) (int, int) {
	if a > b {
		a, b = b, a
	}
	return a - 1, b
}

// firstField is used in error messages for long tabular lines.
func firstField(line string) string {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i]
	}
	return line
}
