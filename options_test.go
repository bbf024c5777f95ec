package main

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"matchplot/internal/alignments"
	"matchplot/internal/hits"
)

// parseOptions parses args the way the root command does, without running it
func parseOptions(t *testing.T, args ...string) (*config, error) {
	t.Helper()
	opts := &options{}
	cmd := &cobra.Command{Use: "matchplot"}
	opts.addFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error = %v", args, err)
	}
	return opts.validate(cmd)
}

func TestValidateErrors(t *testing.T) {
	base := []string{"--json", "h.json", "--fasta", "12-3.fasta"}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "Missing json", args: []string{"--fasta", "12-3.fasta"}, wantErr: "--json"},
		{name: "No reads", args: []string{"--json", "h.json"}, wantErr: "one of --fasta or --fastq"},
		{name: "FASTA and FASTQ", args: append(base, "--fastq", "12-3.fastq"), wantErr: "cannot be used together"},
		{name: "Unknown matcher", args: append(base, "--matcher", "bowtie"), wantErr: "unknown matcher"},
		{name: "Unknown score", args: append(base, "--score", "pident"), wantErr: "unknown score"},
		{name: "Unknown sortOn", args: append(base, "--sortOn", "coverage"), wantErr: "coverage"},
		{name: "Diamond without database", args: append(base, "--matcher", "diamond"), wantErr: "must be used with --matcher diamond"},
		{
			name:    "Both databases",
			args:    append(base, "--databaseFastaFilename", "db.fa", "--databaseIndexFilename", "db.tsv"),
			wantErr: "cannot both be used",
		},
		{name: "Directory without index", args: append(base, "--databaseFastaDirectory", "dbs"), wantErr: "--databaseIndexFilename"},
		{name: "Compression level", args: append(base, "--compress", "23"), wantErr: "between 0 and 22"},
		{name: "Taxonomy without taxdump", args: append(base, "--taxonomy", "Viruses"), wantErr: "--taxdumpDirectory"},
		{name: "Negative maxTitles", args: append(base, "--maxTitles", "-1"), wantErr: "--maxTitles"},
		{name: "Negative maxHspsPerHit", args: append(base, "--maxHspsPerHit", "-2"), wantErr: "--maxHspsPerHit"},
		{name: "No sample name", args: []string{"--json", "h.json", "--fasta", "reads.fasta"}, wantErr: "sample name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOptions(t, tt.args...)
			if err == nil {
				t.Fatalf("validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg, err := parseOptions(t, "--json", "h.json", "--fasta", "/data/2341-17.fasta")
	if err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if cfg.matcher != hits.Blast || cfg.score != hits.Bits || cfg.sortOn != alignments.SortOnMaxScore {
		t.Errorf("defaults = %v/%v/%v", cfg.matcher, cfg.score, cfg.sortOn)
	}
	if cfg.sampleName != "2341-17" {
		t.Errorf("sampleName = %q, want 2341-17", cfg.sampleName)
	}
	if cfg.outFile != "-" {
		t.Errorf("outFile = %q, want -", cfg.outFile)
	}
	rf := cfg.readFilter
	if rf.MinStart != nil || rf.MaxStop != nil || rf.MaxAlignmentsPerRead != nil || rf.ScoreCutoff != nil {
		t.Errorf("unset read filters should be nil: %+v", rf)
	}
	tf := cfg.titleFilter
	if tf.MaxTitles != nil || tf.MinCoverage != nil || tf.MinNewReads != nil {
		t.Errorf("unset title filters should be nil: %+v", tf)
	}
}

func TestValidateValues(t *testing.T) {
	cfg, err := parseOptions(t,
		"--json", "10.out", "-j", "2.out",
		"--fastq", "b/10-1.fastq", "--fastq", "a/9-1.fastq",
		"--sortFilenames",
		"--matcher", "diamond", "--databaseFastaFilename", "db.fa",
		"--score", "expect",
		"--sortOn", "readCount",
		"--maxAlignmentsPerRead", "0",
		"--minStart", "0",
		"--scoreCutoff", "1e-5",
		"--whitelist", "title, with comma", "--whitelist", "other",
		"--maxTitles", "10",
		"--minCoverage", "0.25",
		"--earlyExit",
		"--sampleName", "custom",
	)
	if err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if !reflect.DeepEqual(cfg.jsonFiles, []string{"2.out", "10.out"}) {
		t.Errorf("jsonFiles = %v", cfg.jsonFiles)
	}
	if !reflect.DeepEqual(cfg.readFiles, []string{"a/9-1.fastq", "b/10-1.fastq"}) {
		t.Errorf("readFiles = %v", cfg.readFiles)
	}
	if cfg.matcher != hits.Diamond || cfg.score != hits.Expect || cfg.sortOn != alignments.SortOnReadCount {
		t.Errorf("parsed = %v/%v/%v", cfg.matcher, cfg.score, cfg.sortOn)
	}
	if cfg.titleFilter.SortOn != alignments.SortOnReadCount {
		t.Errorf("title filter sortOn = %v", cfg.titleFilter.SortOn)
	}

	rf := cfg.readFilter
	if rf.MaxAlignmentsPerRead == nil || *rf.MaxAlignmentsPerRead != 0 {
		t.Errorf("MaxAlignmentsPerRead = %v, want 0", rf.MaxAlignmentsPerRead)
	}
	if rf.MinStart == nil || *rf.MinStart != 0 {
		t.Errorf("MinStart = %v, want 0", rf.MinStart)
	}
	if rf.ScoreCutoff == nil || *rf.ScoreCutoff != 1e-5 {
		t.Errorf("ScoreCutoff = %v, want 1e-5", rf.ScoreCutoff)
	}
	if !reflect.DeepEqual(rf.Whitelist, []string{"title, with comma", "other"}) {
		t.Errorf("Whitelist = %q", rf.Whitelist)
	}

	tf := cfg.titleFilter
	if tf.MaxTitles == nil || *tf.MaxTitles != 10 {
		t.Errorf("MaxTitles = %v, want 10", tf.MaxTitles)
	}
	if tf.MinCoverage == nil || *tf.MinCoverage != 0.25 {
		t.Errorf("MinCoverage = %v, want 0.25", tf.MinCoverage)
	}

	if !cfg.earlyExit || !cfg.printHits {
		t.Errorf("earlyExit should imply printHits: earlyExit=%v printHits=%v", cfg.earlyExit, cfg.printHits)
	}
	if cfg.sampleName != "custom" {
		t.Errorf("sampleName = %q, want custom", cfg.sampleName)
	}
}
