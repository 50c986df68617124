package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ErrInvalidPatch is returned when a synthesized patch does not parse back
// into exactly one file with self-consistent fragments.
var ErrInvalidPatch = errors.New("invalid patch")

// Verify parses patch as git would and checks every fragment's line counts.
func Verify(patch string) error {
	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if len(files) != 1 {
		return fmt.Errorf("%w: expected one file, found %d", ErrInvalidPatch, len(files))
	}
	for i, frag := range files[0].TextFragments {
		if err := frag.Validate(); err != nil {
			return fmt.Errorf("%w: fragment %d: %v", ErrInvalidPatch, i, err)
		}
	}
	return nil
}
