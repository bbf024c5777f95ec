package alignments

import (
	"fmt"

	"github.com/pkg/errors"
)

// Subject is a database sequence.
type Subject struct {
	Title    string
	Sequence string
}

// ErrSubjectNotFound is returned by a SubjectLookup that has no sequence for
// a key.
var ErrSubjectNotFound = errors.New("subject not found")

// SubjectLookup maps a lookup key to a subject sequence. Implementations
// must give the same answer for a key for the whole run.
type SubjectLookup interface {
	Subject(key string) (Subject, error)
}

// LookupError is returned when none of the candidate keys of a title
// resolve.
type LookupError struct {
	Title string
	Tried []string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("could not find subject %q (tried %q)", e.Title, e.Tried)
}

func (e *LookupError) Unwrap() error { return ErrSubjectNotFound }

// CandidateKeys returns the keys tried when resolving a title: the full
// title, then its first whitespace-delimited token.
func CandidateKeys(title string) []string {
	keys := []string{title}
	if tok := firstToken(title); tok != title {
		keys = append(keys, tok)
	}
	return keys
}

// ResolveSubject returns the subject of the first candidate key of title
// that lookup knows. Errors other than a miss are returned as they are.
func ResolveSubject(lookup SubjectLookup, title string) (Subject, error) {
	keys := CandidateKeys(title)
	for _, key := range keys {
		subject, err := lookup.Subject(key)
		if err == nil {
			return subject, nil
		}
		if !errors.Is(err, ErrSubjectNotFound) {
			return Subject{}, errors.Wrapf(err, "looking up subject %q", key)
		}
	}
	return Subject{}, &LookupError{Title: title, Tried: keys}
}
