// Command-line options, and their validation into a run configuration

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"matchplot/internal/alignments"
	"matchplot/internal/hits"
	"matchplot/internal/readfilter"
	"matchplot/internal/titlefilter"
)

// options holds the raw flag values
type options struct {
	matcher    string
	jsonFiles  []string
	fastaFiles []string
	fastqFiles []string
	score      string

	databaseFasta string
	databaseIndex string
	databaseDir   string
	blastDatabase string

	// read-level filters
	minStart             int
	maxStop              int
	oneAlignmentPerRead  bool
	maxAlignmentsPerRead int
	maxHSPsPerHit        int
	scoreCutoff          float64
	minSequenceLen       int
	maxSequenceLen       int
	whitelist            []string
	blacklist            []string
	titleRegex           string
	negativeTitleRegex   string
	truncateTitlesAfter  string
	taxonomy             string
	taxdumpDir           string
	subjectTaxidFile     string

	// title-level filters
	minMatchingReads    int
	minMedianScore      float64
	withScoreBetterThan float64
	minNewReads         float64
	maxTitles           int
	minCoverage         float64
	sortOn              string

	verboseLabels bool
	printHits     bool
	earlyExit     bool
	sortFilenames bool
	sampleName    string
	outFile       string
	compLevel     int
	verbose       bool
	version       bool
}

// config is a validated run configuration
type config struct {
	matcher   hits.Matcher
	score     hits.Score
	sortOn    alignments.SortOn
	jsonFiles []string
	readFiles []string

	databaseFasta string
	databaseIndex string
	databaseDir   string
	blastDatabase string

	readFilter  readfilter.Options
	titleFilter titlefilter.Options

	taxdumpDir       string
	subjectTaxidFile string

	verboseLabels bool
	printHits     bool
	earlyExit     bool
	sampleName    string
	outFile       string
	compLevel     int
	verbose       bool
}

func (o *options) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&o.matcher, "matcher", "m", "blast", "Matching algorithm that produced the hits (blast, diamond)")
	flags.StringArrayVarP(&o.jsonFiles, "json", "j", nil, "BLAST or DIAMOND output file (required; repeat the flag for each file)")
	flags.StringArrayVar(&o.fastaFiles, "fasta", nil, "FASTA file of the reads given to BLAST or DIAMOND (repeat the flag for each file)")
	flags.StringArrayVar(&o.fastqFiles, "fastq", nil, "FASTQ file of the reads given to BLAST or DIAMOND (repeat the flag for each file)")
	flags.StringVar(&o.score, "score", "bits", "HSP score to use (bits, expect)")

	flags.StringVar(&o.databaseFasta, "databaseFastaFilename", "", "FASTA file used to make the BLAST or DIAMOND database")
	flags.StringVar(&o.databaseIndex, "databaseIndexFilename", "", "Tab-separated subject id to FASTA file index")
	flags.StringVar(&o.databaseDir, "databaseFastaDirectory", "", "Directory holding the FASTA files named in the index")
	flags.StringVar(&o.blastDatabase, "blastDatabase", "", "BLAST database for blastdbcmd subject lookup (default: from the BLAST output)")

	flags.IntVar(&o.minStart, "minStart", 0, "Drop HSPs that start before this subject offset")
	flags.IntVar(&o.maxStop, "maxStop", 0, "Drop HSPs that end after this subject offset")
	flags.BoolVar(&o.oneAlignmentPerRead, "oneAlignmentPerRead", false, "Only keep the best alignment of each read")
	flags.IntVar(&o.maxAlignmentsPerRead, "maxAlignmentsPerRead", 0, "Drop reads with more alignments (0 keeps only reads without alignments)")
	flags.IntVar(&o.maxHSPsPerHit, "maxHspsPerHit", 0, "Maximum number of HSPs to keep per alignment")
	flags.Float64Var(&o.scoreCutoff, "scoreCutoff", 0, "Drop HSPs with a worse score")
	flags.IntVar(&o.minSequenceLen, "minSequenceLen", 0, "Drop shorter reads")
	flags.IntVar(&o.maxSequenceLen, "maxSequenceLen", 0, "Drop longer reads")
	flags.StringArrayVar(&o.whitelist, "whitelist", nil, "Only keep alignments to this subject title (repeatable)")
	flags.StringArrayVar(&o.blacklist, "blacklist", nil, "Drop alignments to this subject title (repeatable)")
	flags.StringVar(&o.titleRegex, "titleRegex", "", "Regex subject titles must match")
	flags.StringVar(&o.negativeTitleRegex, "negativeTitleRegex", "", "Regex subject titles must not match")
	flags.StringVar(&o.truncateTitlesAfter, "truncateTitlesAfter", "", "Truncate titles after this string and drop later titles with the same truncation")
	flags.StringVar(&o.taxonomy, "taxonomy", "", "Only keep subjects in this taxonomic group (name or taxid)")
	flags.StringVar(&o.taxdumpDir, "taxdumpDirectory", "", "Directory with NCBI taxdump nodes.dmp and names.dmp")
	flags.StringVar(&o.subjectTaxidFile, "subjectTaxidFilename", "", "Tab-separated subject title to taxid file")

	flags.IntVar(&o.minMatchingReads, "minMatchingReads", 0, "Drop subjects matched by fewer reads")
	flags.Float64Var(&o.minMedianScore, "minMedianScore", 0, "Drop subjects with a worse median score")
	flags.Float64Var(&o.withScoreBetterThan, "withScoreBetterThan", 0, "Drop subjects without an HSP at least this good")
	flags.Float64Var(&o.minNewReads, "minNewReads", 0, "Fraction of reads a subject must not share with any kept subject (0-1)")
	flags.IntVar(&o.maxTitles, "maxTitles", 0, "Maximum number of subjects to keep, best first by --sortOn")
	flags.Float64Var(&o.minCoverage, "minCoverage", 0, "Minimum fraction of the subject covered by reads (0-1)")
	flags.StringVar(&o.sortOn, "sortOn", "maxScore", "Subject ordering (maxScore, medianScore, readCount, length, title)")

	flags.BoolVar(&o.verboseLabels, "verboseLabels", false, "Detailed hover text for each point")
	flags.BoolVar(&o.printHits, "printHits", false, "Print a summary of the kept subjects to stderr")
	flags.BoolVar(&o.earlyExit, "earlyExit", false, "Stop after printing the summary (implies --printHits)")
	flags.BoolVar(&o.sortFilenames, "sortFilenames", false, "Process input files in natural order of their names")
	flags.StringVar(&o.sampleName, "sampleName", "", "Sample name (default: first NNN-NNN in the first read file name)")
	flags.StringVarP(&o.outFile, "out", "o", "-", "Output JSON file (default: stdout)")
	flags.IntVarP(&o.compLevel, "compress", "c", 0, "Memory compression level for read sequences (0=disabled, 1-22)")
	flags.BoolVar(&o.verbose, "verbose", false, "Report progress to stderr")
	flags.BoolVarP(&o.version, "version", "v", false, "Show version information")
}

// noPositionalArgs rejects stray arguments. Each --json, --fasta and --fastq
// takes one file, so "--json a.json b.json" leaves b.json behind.
func noPositionalArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.Errorf("unexpected argument %q: repeat the flag for each input file (--json a.json --json b.json)", args[0])
	}
	return nil
}

// validate checks option combinations and builds the run configuration.
// Numeric filters only apply when their flag was given.
func (o *options) validate(cmd *cobra.Command) (*config, error) {
	changed := cmd.Flags().Changed

	if len(o.jsonFiles) == 0 {
		return nil, errors.New("at least one --json file is required")
	}
	if len(o.fastaFiles) > 0 && len(o.fastqFiles) > 0 {
		return nil, errors.New("--fasta and --fastq cannot be used together")
	}
	if len(o.fastaFiles) == 0 && len(o.fastqFiles) == 0 {
		return nil, errors.New("one of --fasta or --fastq is required")
	}

	matcher, err := hits.ParseMatcher(o.matcher)
	if err != nil {
		return nil, err
	}
	score, err := hits.ParseScore(o.score)
	if err != nil {
		return nil, err
	}
	sortOn, err := alignments.ParseSortOn(o.sortOn)
	if err != nil {
		return nil, err
	}

	if o.databaseFasta != "" && o.databaseIndex != "" {
		return nil, errors.New("--databaseFastaFilename and --databaseIndexFilename cannot both be used")
	}
	if matcher == hits.Diamond && o.databaseFasta == "" && o.databaseIndex == "" {
		return nil, errors.New("either --databaseFastaFilename or --databaseIndexFilename must be used with --matcher diamond")
	}
	if o.databaseDir != "" && o.databaseIndex == "" {
		return nil, errors.New("--databaseFastaDirectory is only useful with --databaseIndexFilename")
	}
	if o.compLevel < 0 || o.compLevel > 22 {
		return nil, errors.New("compression level must be between 0 and 22")
	}
	if o.taxonomy != "" && (o.taxdumpDir == "" || o.subjectTaxidFile == "") {
		return nil, errors.New("--taxonomy needs --taxdumpDirectory and --subjectTaxidFilename")
	}

	for _, name := range []string{"maxAlignmentsPerRead", "maxHspsPerHit", "maxTitles", "minMatchingReads"} {
		if v, _ := cmd.Flags().GetInt(name); changed(name) && v < 0 {
			return nil, errors.Errorf("--%s cannot be negative", name)
		}
	}

	readFiles := o.fastaFiles
	if len(o.fastqFiles) > 0 {
		readFiles = o.fastqFiles
	}
	jsonFiles := o.jsonFiles
	if o.sortFilenames {
		readFiles = sortFilenames(readFiles)
		jsonFiles = sortFilenames(jsonFiles)
	}

	sampleName := o.sampleName
	if !changed("sampleName") {
		sampleName, err = sampleNameFromFile(readFiles[0])
		if err != nil {
			return nil, err
		}
	}

	intOpt := func(name string, v int) *int {
		if !changed(name) {
			return nil
		}
		return &v
	}
	floatOpt := func(name string, v float64) *float64 {
		if !changed(name) {
			return nil
		}
		return &v
	}

	cfg := &config{
		matcher:   matcher,
		score:     score,
		sortOn:    sortOn,
		jsonFiles: jsonFiles,
		readFiles: readFiles,

		databaseFasta: o.databaseFasta,
		databaseIndex: o.databaseIndex,
		databaseDir:   o.databaseDir,
		blastDatabase: o.blastDatabase,

		readFilter: readfilter.Options{
			MinStart:             intOpt("minStart", o.minStart),
			MaxStop:              intOpt("maxStop", o.maxStop),
			OneAlignmentPerRead:  o.oneAlignmentPerRead,
			MaxAlignmentsPerRead: intOpt("maxAlignmentsPerRead", o.maxAlignmentsPerRead),
			MaxHSPsPerHit:        intOpt("maxHspsPerHit", o.maxHSPsPerHit),
			ScoreCutoff:          floatOpt("scoreCutoff", o.scoreCutoff),
			MinSequenceLen:       intOpt("minSequenceLen", o.minSequenceLen),
			MaxSequenceLen:       intOpt("maxSequenceLen", o.maxSequenceLen),
			Whitelist:            o.whitelist,
			Blacklist:            o.blacklist,
			TitleRegex:           o.titleRegex,
			NegativeTitleRegex:   o.negativeTitleRegex,
			TruncateTitlesAfter:  o.truncateTitlesAfter,
			Taxonomy:             o.taxonomy,
		},
		titleFilter: titlefilter.Options{
			MinMatchingReads:    intOpt("minMatchingReads", o.minMatchingReads),
			MinMedianScore:      floatOpt("minMedianScore", o.minMedianScore),
			WithScoreBetterThan: floatOpt("withScoreBetterThan", o.withScoreBetterThan),
			MinCoverage:         floatOpt("minCoverage", o.minCoverage),
			MinNewReads:         floatOpt("minNewReads", o.minNewReads),
			MaxTitles:           intOpt("maxTitles", o.maxTitles),
			SortOn:              sortOn,
		},

		taxdumpDir:       o.taxdumpDir,
		subjectTaxidFile: o.subjectTaxidFile,

		verboseLabels: o.verboseLabels,
		printHits:     o.printHits || o.earlyExit,
		earlyExit:     o.earlyExit,
		sampleName:    sampleName,
		outFile:       o.outFile,
		compLevel:     o.compLevel,
		verbose:       o.verbose,
	}
	return cfg, nil
}
