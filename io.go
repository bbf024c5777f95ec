// Input file handling and JSON output

package main

import (
	"path/filepath"
	"regexp"
	"sort"

	"github.com/pkg/errors"
	"github.com/shenwei356/natsort"
	"github.com/shenwei356/xopen"

	"matchplot/internal/plotdata"
)

// sampleNameRegexp matches run-numbered file names such as "2341-17.fastq"
var sampleNameRegexp = regexp.MustCompile(`\d+-\d+`)

// sampleNameFromFile returns the first NNN-NNN found in the file name
func sampleNameFromFile(file string) (string, error) {
	name := sampleNameRegexp.FindString(filepath.Base(file))
	if name == "" {
		return "", errors.Errorf("input file name %q did not match the sample name regex (use --sampleName)", file)
	}
	return name, nil
}

// sortFilenames returns a copy of files in natural order of their base
// names, so that 2.out comes before 10.out. Files with the same base name
// keep their relative order.
func sortFilenames(files []string) []string {
	sorted := make([]string, len(files))
	copy(sorted, files)
	// natsort.Compare is true for equal names, so it is not a strict order
	less := func(a, b string) bool {
		return natsort.Compare(a, b, false) && !natsort.Compare(b, a, false)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(filepath.Base(sorted[i]), filepath.Base(sorted[j]))
	})
	return sorted
}

// writeDocument writes the plot document to outFile ("-" for stdout).
// A .gz, .xz or .zst suffix compresses the output.
func writeDocument(doc *plotdata.Document, outFile string) error {
	outfh, err := xopen.Wopen(outFile)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	if err := doc.WriteJSON(outfh); err != nil {
		outfh.Close()
		return errors.Wrapf(err, "writing %s", outFile)
	}
	return outfh.Close()
}
