package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shenwei356/bio/taxdump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1 root
// └── 10239 Viruses
//     ├── 11000 Retroviridae
//     │   └── 11676 HIV-1
//     └── 12000 Phage
// 2 Bacteria (child of root), 2000 Dup, 2001 Dup
func writeTaxdump(t *testing.T) (dir string, taxidFile string) {
	t.Helper()
	dir = t.TempDir()

	node := func(child, parent int, rank string) string {
		return fmt.Sprintf("%d\t|\t%d\t|\t%s\t|\t\t|\t0\t|\t0\t|\t1\t|\t0\t|\t0\t|\t0\t|\t0\t|\t0\t|\t\t|\n", child, parent, rank)
	}
	name := func(taxid int, name, class string) string {
		return fmt.Sprintf("%d\t|\t%s\t|\t\t|\t%s\t|\n", taxid, name, class)
	}

	var nodes, names strings.Builder
	for _, n := range []struct {
		child, parent int
		rank, name    string
	}{
		{1, 1, "no rank", "root"},
		{10239, 1, "superkingdom", "Viruses"},
		{11000, 10239, "family", "Retroviridae"},
		{11676, 11000, "species", "HIV-1"},
		{12000, 10239, "family", "Phage"},
		{2, 1, "superkingdom", "Bacteria"},
		{2000, 2, "genus", "Dup"},
		{2001, 2, "genus", "Dup"},
	} {
		nodes.WriteString(node(n.child, n.parent, n.rank))
		names.WriteString(name(n.child, n.name, "scientific name"))
	}
	names.WriteString(name(11676, "human immunodeficiency virus 1", "genbank common name"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodes.dmp"), []byte(nodes.String()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "names.dmp"), []byte(names.String()), 0o644))

	taxidFile = filepath.Join(dir, "taxids.tsv")
	require.NoError(t, os.WriteFile(taxidFile, []byte(
		"gi|1 HIV-1 env protein\t11676\n"+
			"gi|2\t12000\n"+
			"gi|3 E. coli lacZ\t2\n"), 0o644))
	return dir, taxidFile
}

func TestInGroup(t *testing.T) {
	dir, taxidFile := writeTaxdump(t)
	l, err := Load(dir, taxidFile)
	require.NoError(t, err)

	tests := []struct {
		title string
		group string
		want  bool
	}{
		{"gi|1 HIV-1 env protein", "Viruses", true},
		{"gi|1 HIV-1 env protein", "retroviridae", true},
		{"gi|1 HIV-1 env protein", "11676", true},
		{"gi|1 HIV-1 env protein", "Phage", false},
		{"gi|2 some phage protein", "10239", true},
		{"gi|2 some phage protein", "Retroviridae", false},
		{"gi|3 E. coli lacZ", "Viruses", false},
		{"gi|3 E. coli lacZ", "Bacteria", true},
		{"gi|9 unmapped", "Viruses", false},
	}
	for _, tt := range tests {
		got, err := l.InGroup(tt.title, tt.group)
		require.NoError(t, err, tt.title)
		assert.Equal(t, tt.want, got, "%s in %s", tt.title, tt.group)
	}
}

func TestGroupTaxid(t *testing.T) {
	dir, taxidFile := writeTaxdump(t)
	l, err := Load(dir, taxidFile)
	require.NoError(t, err)

	taxid, err := l.GroupTaxid("VIRUSES")
	require.NoError(t, err)
	assert.Equal(t, uint32(10239), taxid)

	_, err = l.GroupTaxid("Fungi")
	assert.Error(t, err)

	_, err = l.GroupTaxid("Dup")
	assert.Error(t, err)

	// common names are not used
	_, err = l.GroupTaxid("human immunodeficiency virus 1")
	assert.Error(t, err)

	_, err = l.InGroup("gi|2", "Fungi")
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	dir, taxidFile := writeTaxdump(t)

	_, err := Load(t.TempDir(), taxidFile)
	assert.Error(t, err)

	_, err = Load(dir, filepath.Join(dir, "absent.tsv"))
	assert.Error(t, err)

	noNames := t.TempDir()
	nodes, err := os.ReadFile(filepath.Join(dir, "nodes.dmp"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(noNames, "nodes.dmp"), nodes, 0o644))
	_, err = Load(noNames, taxidFile)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "names.dmp")
	}

	bad := filepath.Join(dir, "bad.tsv")
	require.NoError(t, os.WriteFile(bad, []byte("gi|1\tnot-a-number\n"), 0o644))
	_, err = Load(dir, bad)
	assert.Error(t, err)
}

func TestScientificNames(t *testing.T) {
	dir, taxidFile := writeTaxdump(t)
	l, err := Load(dir, taxidFile)
	require.NoError(t, err)

	assert.Equal(t, "HIV-1", l.tax.Names[11676], "common names must not replace scientific names")
	assert.Equal(t, uint32(11676), l.names["hiv-1"])
	assert.Equal(t, uint32(0), l.names["dup"])
	assert.NotContains(t, l.names, "human immunodeficiency virus 1")

	names := scientificNames(&taxdump.Taxonomy{Names: map[uint32]string{
		1: "root",
		5: "Mixed",
		6: "MIXED",
		7: "mixed",
	}})
	assert.Equal(t, map[string]uint32{"root": 1, "mixed": 0}, names)
}
