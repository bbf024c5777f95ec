package subjects

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fai"
	"github.com/shenwei356/util/cliutil"

	"matchplot/internal/alignments"
)

// IndexLookup fetches subjects from a collection of FASTA files without
// loading them. The index file is two tab-separated columns, subject id and
// the FASTA file holding it; relative file names are taken relative to the
// directory. Each FASTA file is opened through its .fai index, which is
// created next to it when missing.
type IndexLookup struct {
	dir   string
	files map[string]string
	open  map[string]*fai.Faidx
}

// NewIndexLookup reads the index file.
func NewIndexLookup(indexFile, dir string) (*IndexLookup, error) {
	files, err := cliutil.ReadKVs(indexFile, false)
	if err != nil {
		return nil, errors.Wrapf(err, "reading subject index %s", indexFile)
	}
	return &IndexLookup{dir: dir, files: files, open: make(map[string]*fai.Faidx)}, nil
}

// Len is the number of indexed subjects.
func (l *IndexLookup) Len() int { return len(l.files) }

func (l *IndexLookup) Subject(key string) (alignments.Subject, error) {
	file, ok := l.files[key]
	if !ok {
		return alignments.Subject{}, alignments.ErrSubjectNotFound
	}
	if l.dir != "" && !filepath.IsAbs(file) {
		file = filepath.Join(l.dir, file)
	}

	faidx, ok := l.open[file]
	if !ok {
		var err error
		faidx, err = fai.New(file)
		if err != nil {
			return alignments.Subject{}, errors.Wrapf(err, "opening indexed FASTA %s", file)
		}
		l.open[file] = faidx
	}

	// the .fai is keyed by the first word of each header
	id := key
	if fields := strings.Fields(key); len(fields) > 0 {
		id = fields[0]
	}
	s, err := faidx.Seq(id)
	if err != nil {
		return alignments.Subject{}, errors.Wrapf(err, "fetching %q from %s", id, file)
	}
	return alignments.Subject{Title: key, Sequence: string(s)}, nil
}

// Close closes every FASTA file opened so far.
func (l *IndexLookup) Close() error {
	var first error
	for file, faidx := range l.open {
		if err := faidx.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "closing %s", file)
		}
	}
	l.open = make(map[string]*fai.Faidx)
	return first
}
