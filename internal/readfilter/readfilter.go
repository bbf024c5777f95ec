// Package readfilter prunes alignments read by read: read length bounds,
// per-read alignment caps, subject title rules, score cutoff, subject
// position bounds, HSP caps and best-alignment-only.
package readfilter

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"matchplot/internal/alignments"
)

// TaxonomyLookup reports whether a subject belongs to a taxonomic group.
type TaxonomyLookup interface {
	InGroup(title, group string) (bool, error)
}

// Options selects the read-level filters. Nil pointers and empty values
// disable a filter.
type Options struct {
	MinStart             *int
	MaxStop              *int
	OneAlignmentPerRead  bool
	MaxAlignmentsPerRead *int
	MaxHSPsPerHit        *int
	ScoreCutoff          *float64
	MinSequenceLen       *int
	MaxSequenceLen       *int
	Whitelist            []string
	Blacklist            []string
	TitleRegex           string
	NegativeTitleRegex   string
	TruncateTitlesAfter  string
	Taxonomy             string
	TaxonomyLookup       TaxonomyLookup
}

// Filter applies Options to a ReadsAlignments.
type Filter struct {
	opts      Options
	whitelist map[string]struct{}
	blacklist map[string]struct{}
	positive  *regexp.Regexp
	negative  *regexp.Regexp
}

func toSet(titles []string) map[string]struct{} {
	if len(titles) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[t] = struct{}{}
	}
	return set
}

// New validates opts and compiles the title regexes. Regexes are matched
// case-insensitively anywhere in the title.
func New(opts Options) (*Filter, error) {
	for name, v := range map[string]*int{
		"maxAlignmentsPerRead": opts.MaxAlignmentsPerRead,
		"maxHspsPerHit":        opts.MaxHSPsPerHit,
		"minSequenceLen":       opts.MinSequenceLen,
		"maxSequenceLen":       opts.MaxSequenceLen,
	} {
		if v != nil && *v < 0 {
			return nil, errors.Errorf("%s must not be negative (got %d)", name, *v)
		}
	}
	if opts.Taxonomy != "" && opts.TaxonomyLookup == nil {
		return nil, errors.New("taxonomy filtering needs a taxonomy lookup")
	}

	f := &Filter{
		opts:      opts,
		whitelist: toSet(opts.Whitelist),
		blacklist: toSet(opts.Blacklist),
	}
	var err error
	if opts.TitleRegex != "" {
		if f.positive, err = regexp.Compile("(?i)" + opts.TitleRegex); err != nil {
			return nil, errors.Wrap(err, "invalid title regex")
		}
	}
	if opts.NegativeTitleRegex != "" {
		if f.negative, err = regexp.Compile("(?i)" + opts.NegativeTitleRegex); err != nil {
			return nil, errors.Wrap(err, "invalid negative title regex")
		}
	}
	return f, nil
}

// TruncateTitle cuts title at the first occurrence of marker. Titles without
// the marker are returned unchanged.
func TruncateTitle(title, marker string) string {
	if marker == "" {
		return title
	}
	if i := strings.Index(title, marker); i >= 0 {
		return title[:i]
	}
	return title
}

// titleFilter decides per title, remembering truncated titles for the
// duration of one Apply call.
type titleFilter struct {
	*Filter
	truncated map[string]string
	taxa      map[string]bool
}

func (tf *titleFilter) accept(title string) (bool, error) {
	if tf.whitelist != nil {
		if _, ok := tf.whitelist[title]; !ok {
			return false, nil
		}
	}
	if _, ok := tf.blacklist[title]; ok {
		return false, nil
	}
	if tf.positive != nil && !tf.positive.MatchString(title) {
		return false, nil
	}
	if tf.negative != nil && tf.negative.MatchString(title) {
		return false, nil
	}
	if tf.opts.TaxonomyLookup != nil && tf.opts.Taxonomy != "" {
		in, seen := tf.taxa[title]
		if !seen {
			var err error
			if in, err = tf.opts.TaxonomyLookup.InGroup(title, tf.opts.Taxonomy); err != nil {
				return false, errors.Wrapf(err, "taxonomy lookup for %q", title)
			}
			tf.taxa[title] = in
		}
		if !in {
			return false, nil
		}
	}
	if tf.opts.TruncateTitlesAfter != "" {
		short := TruncateTitle(title, tf.opts.TruncateTitlesAfter)
		if first, ok := tf.truncated[short]; ok && first != title {
			return false, nil
		}
		tf.truncated[short] = title
	}
	return true, nil
}

// Apply returns a new ReadsAlignments holding the alignments of reads that
// pass every active filter. reads is not modified. A read whose alignments
// are all removed is dropped; a read that had none to start with is kept
// unless its length or alignment count rules it out.
func (f *Filter) Apply(reads *alignments.ReadsAlignments) (*alignments.ReadsAlignments, error) {
	tf := &titleFilter{
		Filter:    f,
		truncated: make(map[string]string),
		taxa:      make(map[string]bool),
	}
	scoring := reads.Scoring
	result := &alignments.ReadsAlignments{Scoring: scoring}

	for _, ra := range reads.Reads {
		length := ra.Read.Length
		if f.opts.MinSequenceLen != nil && length < *f.opts.MinSequenceLen {
			continue
		}
		if f.opts.MaxSequenceLen != nil && length > *f.opts.MaxSequenceLen {
			continue
		}
		if f.opts.MaxAlignmentsPerRead != nil && len(ra.Alignments) > *f.opts.MaxAlignmentsPerRead {
			continue
		}

		if len(ra.Alignments) == 0 {
			result.Reads = append(result.Reads, alignments.ReadAlignments{Read: ra.Read})
			continue
		}

		var kept []alignments.Alignment
		for _, a := range ra.Alignments {
			ok, err := tf.accept(a.SubjectTitle)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if hsps := f.hsps(a.HSPs, scoring); len(hsps) > 0 {
				a.HSPs = hsps
				kept = append(kept, a)
			}
		}
		if len(kept) == 0 {
			continue
		}

		filtered := alignments.ReadAlignments{Read: ra.Read, Alignments: kept}
		if f.opts.OneAlignmentPerRead {
			best := filtered.BestAlignmentIndex(scoring)
			filtered.Alignments = []alignments.Alignment{kept[best]}
		}
		result.Reads = append(result.Reads, filtered)
	}

	return result, nil
}

// hsps returns a new slice with the HSPs that pass the score cutoff and the
// position bounds, capped to the best MaxHSPsPerHit.
func (f *Filter) hsps(in []alignments.HSP, scoring alignments.Scoring) []alignments.HSP {
	var out []alignments.HSP
	for _, h := range in {
		if f.opts.ScoreCutoff != nil && !scoring.NotWorse(h.Score, *f.opts.ScoreCutoff) {
			continue
		}
		if f.opts.MinStart != nil && h.SubjectStart < *f.opts.MinStart {
			continue
		}
		if f.opts.MaxStop != nil && h.SubjectEnd > *f.opts.MaxStop {
			continue
		}
		out = append(out, h)
	}
	if n := f.opts.MaxHSPsPerHit; n != nil && len(out) > *n {
		order := make([]int, len(out))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return scoring.Better(out[order[i]].Score, out[order[j]].Score)
		})
		// keep the survivors in their input order
		keep := order[:*n]
		sort.Ints(keep)
		capped := make([]alignments.HSP, len(keep))
		for i, k := range keep {
			capped[i] = out[k]
		}
		out = capped
	}
	return out
}
