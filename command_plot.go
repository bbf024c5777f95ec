// The plot run: load reads and hits, filter by read and by subject title,
// then write the scatter plot document

package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"matchplot/internal/alignments"
	"matchplot/internal/hits"
	"matchplot/internal/plotdata"
	"matchplot/internal/readfilter"
	"matchplot/internal/reads"
	"matchplot/internal/subjects"
	"matchplot/internal/taxonomy"
	"matchplot/internal/titlefilter"
)

// runPlot executes a validated configuration. Progress, the hit summary
// and the no-output notice go to stderr; the document goes to cfg.outFile.
func runPlot(cfg *config, stderr io.Writer) error {
	logf := func(format string, args ...interface{}) {
		if cfg.verbose {
			fmt.Fprintln(stderr, cyan(fmt.Sprintf(format, args...)))
		}
	}

	// Reads
	readSet, err := reads.Load(cfg.readFiles, cfg.compLevel)
	if err != nil {
		return err
	}
	defer readSet.Close()
	logf("Loaded %s reads from %d file(s)", humanize.Comma(int64(readSet.Len())), len(cfg.readFiles))

	// Hits
	result, err := hits.ReadFiles(cfg.jsonFiles, cfg.matcher, cfg.score)
	if err != nil {
		return err
	}
	logf("Loaded %s %s HSPs from %d file(s)", humanize.Comma(int64(len(result.Records))), cfg.matcher, len(cfg.jsonFiles))

	readsAlignments, err := alignments.NewReadsAlignments(readSet.Reads(), result.Records, cfg.score.Scoring())
	if err != nil {
		return err
	}

	// Subject sequences, set up before filtering so a bad database fails early
	lookup, closeLookup, err := subjectLookup(cfg, result.Params)
	if err != nil {
		return err
	}
	defer closeLookup()

	// Read-level filtering
	readOpts := cfg.readFilter
	if readOpts.Taxonomy != "" {
		lineage, err := taxonomy.Load(cfg.taxdumpDir, cfg.subjectTaxidFile)
		if err != nil {
			return err
		}
		if _, err := lineage.GroupTaxid(readOpts.Taxonomy); err != nil {
			return err
		}
		readOpts.TaxonomyLookup = lineage
		logf("Loaded taxonomy from %s", cfg.taxdumpDir)
	}
	readFilter, err := readfilter.New(readOpts)
	if err != nil {
		return err
	}
	readsAlignments, err = readFilter.Apply(readsAlignments)
	if err != nil {
		return err
	}
	logf("%s reads left after read filtering (%s alignments)",
		humanize.Comma(int64(len(readsAlignments.Reads))),
		humanize.Comma(int64(readsAlignments.AlignmentCount())))

	// Title-level filtering
	titles, err := titlefilter.Apply(alignments.NewTitlesAlignments(readsAlignments), cfg.titleFilter)
	if err != nil {
		return err
	}

	nTitles := titles.Len()
	if cfg.printHits && nTitles > 0 {
		plural := "s"
		if nTitles == 1 {
			plural = ""
		}
		fmt.Fprintf(stderr, "Found %d interesting title%s.\n", nTitles, plural)
		fmt.Fprintln(stderr, titles.TabSeparatedSummary(cfg.sortOn))
	}
	if cfg.earlyExit {
		return nil
	}
	if nTitles == 0 {
		fmt.Fprintln(stderr, yellow("No output generated due to no matching titles."))
		return nil
	}

	doc, err := plotdata.Build(titles, plotdata.Config{
		SampleName:    cfg.sampleName,
		VerboseLabels: cfg.verboseLabels,
		Subjects:      lookup,
		Queries:       readSet,
	})
	if err != nil {
		return err
	}
	if err := writeDocument(doc, cfg.outFile); err != nil {
		return err
	}
	logf("Wrote %s points for sample %s", humanize.Comma(int64(doc.Len())), cfg.sampleName)
	return nil
}

// subjectLookup builds the subject sequence source. A FASTA file or an
// index is used when given; for BLAST, blastdbcmd on the search database is
// the fallback.
func subjectLookup(cfg *config, params hits.Params) (alignments.SubjectLookup, func(), error) {
	var chain subjects.Chain
	closer := func() {}

	switch {
	case cfg.databaseFasta != "":
		l, err := subjects.LoadFasta(cfg.databaseFasta)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, l)
	case cfg.databaseIndex != "":
		l, err := subjects.NewIndexLookup(cfg.databaseIndex, cfg.databaseDir)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, l)
		closer = func() { l.Close() }
	}

	if cfg.matcher == hits.Blast {
		db := cfg.blastDatabase
		if db == "" && len(chain) == 0 {
			db = params.Database()
		}
		if db != "" {
			l := subjects.NewBlastDBLookup(db)
			l.DBType = params.DatabaseType()
			chain = append(chain, l)
		}
	}

	if len(chain) == 0 {
		return nil, nil, errors.New("no subject database: use --databaseFastaFilename, --databaseIndexFilename or --blastDatabase")
	}
	return chain, closer, nil
}
