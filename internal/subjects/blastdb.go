package subjects

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"matchplot/internal/alignments"
)

// BlastDBLookup fetches subjects from a BLAST database with blastdbcmd.
// Results, including misses, are cached.
type BlastDBLookup struct {
	Database string
	DBType   string // "prot", "nucl" or "guess"
	// Program is the blastdbcmd executable, found on PATH by default.
	Program string

	cache map[string]*alignments.Subject
}

// NewBlastDBLookup looks up subjects in db, leaving blastdbcmd to work out
// whether it is a protein or a nucleotide database.
func NewBlastDBLookup(db string) *BlastDBLookup {
	return &BlastDBLookup{Database: db, DBType: "guess", Program: "blastdbcmd"}
}

func (l *BlastDBLookup) Subject(key string) (alignments.Subject, error) {
	if l.cache == nil {
		l.cache = make(map[string]*alignments.Subject)
	}
	if s, ok := l.cache[key]; ok {
		if s == nil {
			return alignments.Subject{}, alignments.ErrSubjectNotFound
		}
		return *s, nil
	}

	sequence, found, err := l.fetch(key)
	if err != nil {
		return alignments.Subject{}, err
	}
	if !found {
		l.cache[key] = nil
		return alignments.Subject{}, alignments.ErrSubjectNotFound
	}
	s := &alignments.Subject{Title: key, Sequence: sequence}
	l.cache[key] = s
	return *s, nil
}

func (l *BlastDBLookup) fetch(entry string) (string, bool, error) {
	// -entry mangles ids with special characters, -entry_batch does not
	entryFile, err := os.CreateTemp("", "matchplot-entry-*")
	if err != nil {
		return "", false, errors.Wrap(err, "creating blastdbcmd entry file")
	}
	defer os.Remove(entryFile.Name())
	if _, err := entryFile.WriteString(entry + "\n"); err != nil {
		entryFile.Close()
		return "", false, errors.Wrapf(err, "writing blastdbcmd entry file %s", entryFile.Name())
	}
	if err := entryFile.Close(); err != nil {
		return "", false, errors.Wrapf(err, "closing blastdbcmd entry file %s", entryFile.Name())
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(l.Program,
		"-db", l.Database,
		"-dbtype", l.DBType,
		"-entry_batch", entryFile.Name(),
		"-outfmt", "%s",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "not found") {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "blastdbcmd %s from %s: %s",
			entry, l.Database, strings.TrimSpace(stderr.String()))
	}

	// one line per matching entry; the first one is used
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", false, nil
	}
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	return strings.TrimSpace(out), true, nil
}
