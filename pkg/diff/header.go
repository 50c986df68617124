// Package diff parses single-file unified diffs and synthesizes patches from
// arbitrary selections of them.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -([0-9,]+) \+([0-9,]+) @@`)

// HunkHeader is the structured form of an "@@ -a,b +c,d @@" line.
type HunkHeader struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	// Section is everything after the closing "@@", kept verbatim.
	Section string
}

// ParseHunkHeader parses a hunk header line. A bare "N" range means a count of 1.
func ParseHunkHeader(line string) (HunkHeader, error) {
	m := hunkHeaderRe.FindStringSubmatchIndex(line)
	if m == nil {
		return HunkHeader{}, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
	}
	oldStart, oldCount, err := parseRange(line[m[2]:m[3]])
	if err != nil {
		return HunkHeader{}, fmt.Errorf("%w: %q: old range: %v", ErrInvalidHeader, line, err)
	}
	newStart, newCount, err := parseRange(line[m[4]:m[5]])
	if err != nil {
		return HunkHeader{}, fmt.Errorf("%w: %q: new range: %v", ErrInvalidHeader, line, err)
	}
	return HunkHeader{
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
		Section:  line[m[1]:],
	}, nil
}

func parseRange(s string) (start, count int, err error) {
	startStr, countStr, hasCount := strings.Cut(s, ",")
	start, err = strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, err
	}
	if !hasCount {
		return start, 1, nil
	}
	count, err = strconv.Atoi(countStr)
	if err != nil {
		return 0, 0, err
	}
	return start, count, nil
}

// SetOldCount updates the old-side count. A count that changes to 1 on a
// range starting at 0 moves the start to 1 so the header never reads "0,1".
func (h *HunkHeader) SetOldCount(n int) {
	if n != h.OldCount && n == 1 && h.OldStart == 0 {
		h.OldStart = 1
	}
	h.OldCount = n
}

// SetNewCount is the new-side counterpart of SetOldCount.
func (h *HunkHeader) SetNewCount(n int) {
	if n != h.NewCount && n == 1 && h.NewStart == 0 {
		h.NewStart = 1
	}
	h.NewCount = n
}

// Reverse returns the header with the old and new ranges swapped, as rendered
// by "git diff -R".
func (h HunkHeader) Reverse() HunkHeader {
	return HunkHeader{
		OldStart: h.NewStart,
		OldCount: h.NewCount,
		NewStart: h.OldStart,
		NewCount: h.OldCount,
		Section:  h.Section,
	}
}

// String renders the header the way git does.
func (h HunkHeader) String() string {
	return "@@ -" + formatRange(h.OldStart, h.OldCount) +
		" +" + formatRange(h.NewStart, h.NewCount) + " @@" + h.Section
}

func formatRange(start, count int) string {
	if count == 1 {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "," + strconv.Itoa(count)
}
