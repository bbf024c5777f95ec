package reads

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchplot/internal/alignments"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	fasta := writeFile(t, "1-2.fasta", ">read1 sample=a\nACGTACGTAC\nGTA\n>read2\nTTTT\n")
	fastq := writeFile(t, "3-4.fastq", "@read3\nGGGCCC\n+\nIIIIII\n")

	for _, level := range []int{0, 3} {
		s, err := Load([]string{fasta, fastq}, level)
		require.NoError(t, err)

		assert.Equal(t, []alignments.Read{
			{ID: "read1 sample=a", Length: 13},
			{ID: "read2", Length: 4},
			{ID: "read3", Length: 6},
		}, s.Reads())
		assert.Equal(t, 3, s.Len())

		got, err := s.Sequence("read1 sample=a")
		require.NoError(t, err)
		assert.Equal(t, "ACGTACGTACGTA", got)

		got, err = s.Sequence("read3")
		require.NoError(t, err)
		assert.Equal(t, "GGGCCC", got)

		_, err = s.Sequence("missing")
		assert.Error(t, err)
		s.Close()
	}
}

func TestLoadErrors(t *testing.T) {
	dup := writeFile(t, "dup.fasta", ">r\nAC\n>r\nGT\n")
	_, err := Load([]string{dup}, 0)
	assert.Error(t, err)

	_, err = Load([]string{filepath.Join(t.TempDir(), "absent.fasta")}, 0)
	assert.Error(t, err)

	_, err = Load(nil, 23)
	assert.Error(t, err)
}
