// Package taxonomy answers whether a database subject belongs to a
// taxonomic group, using an NCBI taxdump and a subject-to-taxid map.
package taxonomy

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/taxdump"
	"github.com/shenwei356/util/cliutil"

	"matchplot/internal/alignments"
)

// Lineage implements readfilter.TaxonomyLookup.
type Lineage struct {
	tax    *taxdump.Taxonomy
	titles map[string]uint32
	// lower-cased scientific name -> taxid, 0 if the name is ambiguous
	names  map[string]uint32
	groups map[string]uint32
}

// Load reads nodes.dmp and names.dmp from taxdumpDir and the two-column
// subject-title-to-taxid file.
func Load(taxdumpDir, titleTaxidFile string) (*Lineage, error) {
	tax, err := taxdump.NewTaxonomyFromNCBI(filepath.Join(taxdumpDir, "nodes.dmp"))
	if err != nil {
		return nil, errors.Wrapf(err, "loading taxonomy from %s", taxdumpDir)
	}
	tax.CacheLCA()

	namesFile := filepath.Join(taxdumpDir, "names.dmp")
	if err := tax.LoadNamesFromNCBI(namesFile); err != nil {
		return nil, errors.Wrapf(err, "loading scientific names from %s", namesFile)
	}

	kvs, err := cliutil.ReadKVs(titleTaxidFile, false)
	if err != nil {
		return nil, errors.Wrapf(err, "reading subject taxids from %s", titleTaxidFile)
	}
	titles := make(map[string]uint32, len(kvs))
	for title, value := range kvs {
		taxid, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: taxid of %q", titleTaxidFile, title)
		}
		titles[title] = uint32(taxid)
	}

	return &Lineage{
		tax:    tax,
		titles: titles,
		names:  scientificNames(tax),
		groups: make(map[string]uint32),
	}, nil
}

// scientificNames inverts the taxonomy's taxid -> scientific name map into
// a lower-cased name -> taxid lookup. A name shared by several taxids maps
// to 0.
func scientificNames(tax *taxdump.Taxonomy) map[string]uint32 {
	names := make(map[string]uint32, len(tax.Names))
	for taxid, name := range tax.Names {
		name = strings.ToLower(name)
		if prev, ok := names[name]; ok && prev != taxid {
			names[name] = 0
			continue
		}
		names[name] = taxid
	}
	return names
}

// GroupTaxid resolves a group given as a taxid or a scientific name
// (case-insensitive).
func (l *Lineage) GroupTaxid(group string) (uint32, error) {
	if taxid, ok := l.groups[group]; ok {
		return taxid, nil
	}
	var taxid uint32
	if n, err := strconv.ParseUint(group, 10, 32); err == nil {
		taxid = uint32(n)
	} else {
		var ok bool
		taxid, ok = l.names[strings.ToLower(group)]
		if !ok {
			return 0, errors.Errorf("unknown taxonomic group %q", group)
		}
		if taxid == 0 {
			return 0, errors.Errorf("taxonomic group name %q is ambiguous, give a taxid", group)
		}
	}
	l.groups[group] = taxid
	return taxid, nil
}

// Taxid is the taxid of a subject title, looked up by the full title and
// then by its first word.
func (l *Lineage) Taxid(title string) (uint32, bool) {
	for _, key := range alignments.CandidateKeys(title) {
		if taxid, ok := l.titles[key]; ok {
			return taxid, true
		}
	}
	return 0, false
}

// InGroup reports whether the subject is the group or one of its
// descendants. Subjects without a taxid are not in any group.
func (l *Lineage) InGroup(title, group string) (bool, error) {
	groupTaxid, err := l.GroupTaxid(group)
	if err != nil {
		return false, err
	}
	taxid, ok := l.Taxid(title)
	if !ok {
		return false, nil
	}
	return l.tax.LCA(taxid, groupTaxid) == groupTaxid, nil
}
