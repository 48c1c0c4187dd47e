package conversation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ErrMalformedIndex marks a stored child index whose keys are not positive integers.
var ErrMalformedIndex = errors.New("malformed child version index")

// NextVersion returns the version the next child of a parent with index ix receives.
func NextVersion(ix ChildVersionIndex) (int, error) {
	max := 0
	for k := range ix {
		n, err := strconv.Atoi(k)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: key %q", ErrMalformedIndex, k)
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}

// AllocateVersion assigns childID the next sibling version and returns a new index
// containing the entry. ix itself is never modified.
func AllocateVersion(ix ChildVersionIndex, childID uuid.UUID) (int, ChildVersionIndex, error) {
	if childID == uuid.Nil {
		return 0, nil, errors.New("allocate version: missing child id")
	}
	next, err := NextVersion(ix)
	if err != nil {
		return 0, nil, err
	}
	out := ix.Clone()
	out[strconv.Itoa(next)] = childID
	return next, out, nil
}
