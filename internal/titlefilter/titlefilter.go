// Package titlefilter drops or ranks whole subject groups after read-level
// filtering.
package titlefilter

import (
	"github.com/pkg/errors"

	"matchplot/internal/alignments"
)

// Options selects the title-level filters. Nil pointers disable a filter.
type Options struct {
	MinMatchingReads    *int
	MinMedianScore      *float64
	WithScoreBetterThan *float64
	MinCoverage         *float64
	MinNewReads         *float64
	MaxTitles           *int
	SortOn              alignments.SortOn
}

func (o Options) validate() error {
	if o.MaxTitles != nil && *o.MaxTitles < 0 {
		return errors.Errorf("maxTitles must not be negative (got %d)", *o.MaxTitles)
	}
	if o.MinNewReads != nil && (*o.MinNewReads < 0 || *o.MinNewReads > 1) {
		return errors.Errorf("minNewReads must be between 0.0 and 1.0 (got %g)", *o.MinNewReads)
	}
	if o.MinCoverage != nil && (*o.MinCoverage < 0 || *o.MinCoverage > 1) {
		return errors.Errorf("minCoverage must be between 0.0 and 1.0 (got %g)", *o.MinCoverage)
	}
	return nil
}

// ReadSetFilter accepts a group only if its reads differ enough from the
// reads of every group accepted before it. The difference is the fraction
// of the candidate's reads that are missing from an accepted group:
// |candidate \ accepted| / |candidate|.
type ReadSetFilter struct {
	minNewReads float64
	accepted    []map[string]struct{}
}

// NewReadSetFilter returns a filter requiring at least minNewReads new reads.
func NewReadSetFilter(minNewReads float64) *ReadSetFilter {
	return &ReadSetFilter{minNewReads: minNewReads}
}

// NewReadFraction is the fraction of ids absent from other.
func NewReadFraction(ids, other map[string]struct{}) float64 {
	if len(ids) == 0 {
		return 0
	}
	missing := 0
	for id := range ids {
		if _, ok := other[id]; !ok {
			missing++
		}
	}
	return float64(missing) / float64(len(ids))
}

// Accept reports whether ids is different enough from every accepted set,
// remembering it if so. Order of calls matters.
func (f *ReadSetFilter) Accept(ids map[string]struct{}) bool {
	for _, prev := range f.accepted {
		if NewReadFraction(ids, prev) < f.minNewReads {
			return false
		}
	}
	f.accepted = append(f.accepted, ids)
	return true
}

// Apply returns a new collection holding the groups of titles that pass
// every active filter, visited in collection order. If more than MaxTitles
// remain, only the best MaxTitles by SortOn are kept, in sorted order.
// titles is not modified.
func Apply(titles *alignments.TitlesAlignments, opts Options) (*alignments.TitlesAlignments, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	scoring := titles.Scoring
	var readSets *ReadSetFilter
	if opts.MinNewReads != nil {
		readSets = NewReadSetFilter(*opts.MinNewReads)
	}

	var kept []string
	for _, g := range titles.Values() {
		if opts.MinMatchingReads != nil && g.ReadCount() < *opts.MinMatchingReads {
			continue
		}
		if opts.MinMedianScore != nil && scoring.Better(*opts.MinMedianScore, g.MedianScore()) {
			continue
		}
		if opts.WithScoreBetterThan != nil && !g.HasScoreNotWorseThan(*opts.WithScoreBetterThan) {
			continue
		}
		if opts.MinCoverage != nil && g.Coverage() < *opts.MinCoverage {
			continue
		}
		if readSets != nil && !readSets.Accept(g.ReadIDs()) {
			continue
		}
		kept = append(kept, g.SubjectTitle)
	}

	result := titles.Subset(kept)
	if opts.MaxTitles != nil && result.Len() > *opts.MaxTitles {
		sorted := result.SortTitles(opts.SortOn)
		result = result.Subset(sorted[:*opts.MaxTitles])
	}
	return result, nil
}
