package diff

import (
	"fmt"
	"strings"
)

// HunkForOffset returns the index of the first hunk whose end lies past
// offset, i.e. the hunk under a cursor at that position.
func (d *Document) HunkForOffset(offset int) (int, bool) {
	for i, h := range d.Hunks {
		if h.Offset() > offset {
			return i, true
		}
	}
	return -1, false
}

// HunksForRange returns, in document order, every hunk the byte range
// [start, end) begins in, fully covers, or ends in.
func (d *Document) HunksForRange(start, end int) []int {
	var indices []int
	for i, h := range d.Hunks {
		s, e := h.Span.Start, h.Span.End
		tail := start >= s && start < e
		all := start <= s && end >= e
		head := end >= s && end <= e
		if tail || all || head {
			indices = append(indices, i)
		}
	}
	return indices
}

// LocateText finds selection verbatim inside the forward diff text. Text
// widgets may hand back LF line endings for a CRLF diff, so a miss is retried
// once with "\n" expanded to "\r\n".
func LocateText(forward, selection string) (start, end int, err error) {
	if selection == "" {
		return 0, 0, fmt.Errorf("%w: empty selection", ErrSelectionNotFound)
	}
	if i := strings.Index(forward, selection); i >= 0 {
		return i, i + len(selection), nil
	}
	crlf := strings.ReplaceAll(selection, "\n", "\r\n")
	if crlf != selection {
		if i := strings.Index(forward, crlf); i >= 0 {
			return i, i + len(crlf), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %d bytes", ErrSelectionNotFound, len(selection))
}
