package subjects

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchplot/internal/alignments"
)

func writeFile(t *testing.T, dir, name, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

func TestFastaLookup(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "db.fasta", ">P1 capsid protein\nMKVL\nAAG\n>P2\nMSTN\n>P1 duplicate\nXXXX\n", 0o644)

	l, err := LoadFasta(file)
	require.NoError(t, err)

	s, err := l.Subject("P1 capsid protein")
	require.NoError(t, err)
	assert.Equal(t, alignments.Subject{Title: "P1 capsid protein", Sequence: "MKVLAAG"}, s)

	s, err = l.Subject("P1")
	require.NoError(t, err)
	assert.Equal(t, "MKVLAAG", s.Sequence)

	s, err = l.Subject("P1 duplicate")
	require.NoError(t, err)
	assert.Equal(t, "XXXX", s.Sequence)

	_, err = l.Subject("P3")
	assert.True(t, errors.Is(err, alignments.ErrSubjectNotFound))

	// the title is not a key but its first word is
	s, err = alignments.ResolveSubject(l, "P2 hypothetical")
	require.NoError(t, err)
	assert.Equal(t, alignments.Subject{Title: "P2", Sequence: "MSTN"}, s)
}

func TestIndexLookup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.fasta", ">P1 capsid\nMKVL\nAAG\n>P2\nMSTN\n", 0o644)
	writeFile(t, dir, "b.fasta", ">P3 polymerase\nMDE\n", 0o644)
	index := writeFile(t, dir, "index.tsv", "P1 capsid\ta.fasta\nP2\ta.fasta\nP3\tb.fasta\n", 0o644)

	l, err := NewIndexLookup(index, dir)
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, 3, l.Len())

	s, err := l.Subject("P1 capsid")
	require.NoError(t, err)
	assert.Equal(t, alignments.Subject{Title: "P1 capsid", Sequence: "MKVLAAG"}, s)

	s, err = l.Subject("P3")
	require.NoError(t, err)
	assert.Equal(t, "MDE", s.Sequence)

	_, err = l.Subject("P9")
	assert.True(t, errors.Is(err, alignments.ErrSubjectNotFound))
	assert.NoError(t, l.Close())
}

type failing struct{}

func (failing) Subject(string) (alignments.Subject, error) {
	return alignments.Subject{}, errors.New("disk on fire")
}

type single struct{ key, seq string }

func (s single) Subject(key string) (alignments.Subject, error) {
	if key == s.key {
		return alignments.Subject{Title: key, Sequence: s.seq}, nil
	}
	return alignments.Subject{}, alignments.ErrSubjectNotFound
}

func TestChain(t *testing.T) {
	c := Chain{single{"a", "AA"}, single{"b", "BB"}}
	s, err := c.Subject("b")
	require.NoError(t, err)
	assert.Equal(t, "BB", s.Sequence)

	_, err = c.Subject("z")
	assert.True(t, errors.Is(err, alignments.ErrSubjectNotFound))

	_, err = Chain{single{"a", "AA"}, failing{}}.Subject("z")
	require.Error(t, err)
	assert.False(t, errors.Is(err, alignments.ErrSubjectNotFound))
}

const fakeBlastdbcmd = `#!/bin/sh
echo "call $4" >> "$(dirname "$0")/calls"
entry=$(cat "$6")
case "$entry" in
P1) echo MKVLAAG ;;
broken) echo "BLAST Database error: No alias or index file found" >&2; exit 2 ;;
*) echo "Error: [blastdbcmd] Entry not found: $entry" >&2; exit 1 ;;
esac
`

func TestBlastDBLookup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	program := writeFile(t, dir, "blastdbcmd", fakeBlastdbcmd, 0o755)

	l := NewBlastDBLookup("nr")
	assert.Equal(t, "guess", l.DBType)
	l.Program = program

	for i := 0; i < 2; i++ {
		s, err := l.Subject("P1")
		require.NoError(t, err)
		assert.Equal(t, alignments.Subject{Title: "P1", Sequence: "MKVLAAG"}, s)

		_, err = l.Subject("P2")
		assert.True(t, errors.Is(err, alignments.ErrSubjectNotFound))
	}

	calls, err := os.ReadFile(filepath.Join(dir, "calls"))
	require.NoError(t, err)
	assert.Equal(t, "call guess\ncall guess\n", string(calls))

	nucl := NewBlastDBLookup("nt")
	nucl.DBType = "nucl"
	nucl.Program = program
	_, err = nucl.Subject("P1")
	require.NoError(t, err)
	calls, err = os.ReadFile(filepath.Join(dir, "calls"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(calls), "call nucl\n"), "calls = %q", calls)

	_, err = l.Subject("broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, alignments.ErrSubjectNotFound))
	assert.Contains(t, err.Error(), "No alias")
}
