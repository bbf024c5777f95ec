package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Custom help function used
// It lists the flags grouped by the stage of the run they affect
func helpFunc(cmd *cobra.Command, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), `
%s

%s
  Reads BLAST or DIAMOND hits for a set of reads, filters them per read and
  per subject, and writes a JSON document for a scatter plot of the fraction
  of positive matches in the best HSP against the length of that HSP, one
  point per subject.

%s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s

%s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s

%s
  %s
  %s
  %s
  %s
  %s
  %s
  %s

%s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s
  %s

%s
  # BLAST hits, subjects fetched from the BLAST database with blastdbcmd
  %s

  # DIAMOND hits, only subjects matched by 3+ reads, print the summary only
  %s

%s
  %s
  %s
  %s
  %s
  %s
  %s
  %s

`,
		bold(getColorizedLogo()+" matchplot v."+VERSION+" - Match fraction vs. match length plot data for BLAST/DIAMOND hits"),
		bold(yellow("Description:")),
		bold(yellow("Input flags:")),
		cyan("-m, --matcher")+" <string>            : Program that produced the hits (blast, diamond) (default, 'blast')",
		cyan("-j, --json")+" <file>                 : BLAST/DIAMOND output file (required; repeat the flag for each file: -j 1.json -j 2.json)",
		cyan("--fasta")+" <file>                    : FASTA reads given to BLAST/DIAMOND (repeat the flag for each file)",
		cyan("--fastq")+" <file>                    : FASTQ reads given to BLAST/DIAMOND (repeat the flag for each file)",
		cyan("--score")+" <string>                  : HSP score (bits, expect) (default, 'bits')",
		cyan("--databaseFastaFilename")+" <file>    : FASTA file the database was made from",
		cyan("--databaseIndexFilename")+" <file>    : Tab-separated subject id to FASTA file index",
		cyan("--databaseFastaDirectory")+" <dir>    : Directory of the FASTA files in the index",
		cyan("--blastDatabase")+" <string>          : BLAST database for blastdbcmd (default, from the BLAST output)",
		cyan("--sortFilenames")+"                   : Process input files in natural order of their names",
		bold(yellow("Read filters:")),
		cyan("--minSequenceLen")+" <int>            : Drop shorter reads",
		cyan("--maxSequenceLen")+" <int>            : Drop longer reads",
		cyan("--maxAlignmentsPerRead")+" <int>      : Drop reads with more alignments (0 keeps reads without any)",
		cyan("--whitelist")+" <title>               : Only keep alignments to these subjects (repeatable)",
		cyan("--blacklist")+" <title>               : Drop alignments to these subjects (repeatable)",
		cyan("--titleRegex")+" <regex>              : Subject titles must match (case-insensitive)",
		cyan("--negativeTitleRegex")+" <regex>      : Subject titles must not match (case-insensitive)",
		cyan("--truncateTitlesAfter")+" <string>    : Keep one title per truncated title",
		cyan("--taxonomy")+" <name|taxid>           : Only keep subjects in this taxonomic group",
		cyan("--taxdumpDirectory")+" <dir>          : NCBI taxdump directory (for --taxonomy)",
		cyan("--subjectTaxidFilename")+" <file>     : Tab-separated subject to taxid file (for --taxonomy)",
		cyan("--scoreCutoff")+" <float>             : Drop HSPs with a worse score",
		cyan("--minStart, --maxStop")+" <int>       : Drop HSPs outside these subject offsets",
		cyan("--maxHspsPerHit")+" <int>, "+cyan("--oneAlignmentPerRead")+" : Keep only the best HSPs / alignment",
		bold(yellow("Subject filters:")),
		cyan("--minMatchingReads")+" <int>          : Drop subjects matched by fewer reads",
		cyan("--minMedianScore")+" <float>          : Drop subjects with a worse median score",
		cyan("--withScoreBetterThan")+" <float>     : Drop subjects without an HSP at least this good",
		cyan("--minCoverage")+" <float>             : Minimum covered fraction of the subject (0-1)",
		cyan("--minNewReads")+" <float>             : Fraction of reads not shared with any kept subject (0-1)",
		cyan("--maxTitles")+" <int>                 : Keep at most this many subjects, best first",
		cyan("--sortOn")+" <string>                 : maxScore, medianScore, readCount, length, title (default, 'maxScore')",
		bold(yellow("Output flags:")),
		cyan("-o, --out")+" <file>                  : Output JSON file (default, '-' for stdout)",
		cyan("--sampleName")+" <string>             : Sample name (default, first NNN-NNN in the first read file name)",
		cyan("--verboseLabels")+"                   : Detailed hover text for each point",
		cyan("--printHits")+"                       : Print the kept subjects to stderr",
		cyan("--earlyExit")+"                       : Stop after printing the kept subjects (implies --printHits)",
		cyan("-c, --compress")+" <int>              : Memory compression level for read sequences (0=disabled, 1-22)",
		cyan("--verbose")+"                         : Report progress to stderr",
		cyan("-h, --help")+"                        : Show help message",
		cyan("-v, --version")+"                     : Show version information",
		bold(yellow("Usage examples:")),
		cyan("matchplot --json 2341-17.json.gz --fastq 2341-17.fastq.gz --verboseLabels -o 2341-17.plot.json"),
		cyan("matchplot -m diamond -j 1.out -j 10.out --sortFilenames --fasta reads.fa --sampleName 12-3 --databaseFastaFilename nr.fa --minMatchingReads 3 --earlyExit"),
		bold(yellow("Summary columns (--printHits):")),
		"  1) subject coverage fraction",
		"  2) median score of the matching reads",
		"  3) best score of the matching reads",
		"  4) number of matching reads",
		"  5) HSP count",
		"  6) subject length",
		"  7) subject title",
	)
}
