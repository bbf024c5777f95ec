package hits

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"matchplot/internal/alignments"
)

// DIAMOND --outfmt 6 columns, in this order.
const (
	colQTitle = iota
	colSTitle
	colBitScore
	colEValue
	colQFrame
	colQSeq
	colQStart
	colQEnd
	colSSeq
	colSStart
	colSEnd
	colSLen
	colBtop
	colNIdent
	colPositive
	numColumns
)

func parseTabular(line string, score Score) (alignments.Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != numColumns {
		return alignments.Record{}, errors.Errorf("query %q: expected %d columns, found %d",
			firstField(line), numColumns, len(fields))
	}

	var err error
	float := func(col int) float64 {
		if err != nil {
			return 0
		}
		var v float64
		v, err = strconv.ParseFloat(fields[col], 64)
		if err != nil {
			err = errors.Wrapf(err, "column %d", col+1)
		}
		return v
	}
	integer := func(col int) int {
		if err != nil {
			return 0
		}
		var v int
		v, err = strconv.Atoi(fields[col])
		if err != nil {
			err = errors.Wrapf(err, "column %d", col+1)
		}
		return v
	}

	h := jsonHSP{
		Bits:           float(colBitScore),
		Expect:         float(colEValue),
		QueryStart:     integer(colQStart),
		QueryEnd:       integer(colQEnd),
		SubjectStart:   integer(colSStart),
		SubjectEnd:     integer(colSEnd),
		IdenticalCount: integer(colNIdent),
		PositiveCount:  integer(colPositive),
	}
	length := integer(colSLen)
	if err != nil {
		return alignments.Record{}, errors.Wrapf(err, "query %q", fields[colQTitle])
	}

	return alignments.Record{
		ReadID:        fields[colQTitle],
		SubjectTitle:  fields[colSTitle],
		SubjectLength: length,
		HSP:           h.toHSP(score),
	}, nil
}
