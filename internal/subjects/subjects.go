// Package subjects finds the sequences of database subjects by title.
//
// All lookups return alignments.ErrSubjectNotFound when a key is missing so
// that alignments.ResolveSubject can move on to the next candidate key.
package subjects

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"matchplot/internal/alignments"
)

// FastaLookup holds every record of a FASTA file in memory, keyed by the
// full header and by its first word.
type FastaLookup struct {
	seqs map[string]string
}

// LoadFasta reads file into a FastaLookup. When two records share a key
// the first one is kept.
func LoadFasta(file string) (*FastaLookup, error) {
	seq.ValidateSeq = false
	reader, err := fastx.NewDefaultReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}
	defer reader.Close()

	l := &FastaLookup{seqs: make(map[string]string)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading record from %s", file)
		}
		sequence := string(record.Seq.Seq)
		for _, key := range []string{string(record.Name), string(record.ID)} {
			if _, ok := l.seqs[key]; !ok {
				l.seqs[key] = sequence
			}
		}
	}
	return l, nil
}

// Len is the number of keys.
func (l *FastaLookup) Len() int { return len(l.seqs) }

func (l *FastaLookup) Subject(key string) (alignments.Subject, error) {
	s, ok := l.seqs[key]
	if !ok {
		return alignments.Subject{}, alignments.ErrSubjectNotFound
	}
	return alignments.Subject{Title: key, Sequence: s}, nil
}

// Chain tries each lookup in turn. A miss moves on to the next lookup;
// any other error stops the search.
type Chain []alignments.SubjectLookup

func (c Chain) Subject(key string) (alignments.Subject, error) {
	for _, l := range c {
		s, err := l.Subject(key)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, alignments.ErrSubjectNotFound) {
			return alignments.Subject{}, err
		}
	}
	return alignments.Subject{}, alignments.ErrSubjectNotFound
}
