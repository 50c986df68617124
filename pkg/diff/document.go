package diff

import (
	"fmt"
	"strings"
)

// LineTag classifies a diff body line by its leading byte.
type LineTag int

const (
	TagContext LineTag = iota
	TagAdded
	TagRemoved
	// TagMarker is the "\ No newline at end of file" annotation. It belongs
	// to the line before it and is never counted.
	TagMarker
)

func (t LineTag) String() string {
	switch t {
	case TagAdded:
		return "added"
	case TagRemoved:
		return "removed"
	case TagMarker:
		return "marker"
	default:
		return "context"
	}
}

// Line is one physical line of a hunk body, without its trailing newline.
type Line struct {
	Text string
	Tag  LineTag
}

// NewLine tags text by its first byte. Anything unrecognised is context.
func NewLine(text string) Line {
	tag := TagContext
	if text != "" {
		switch text[0] {
		case '+':
			tag = TagAdded
		case '-':
			tag = TagRemoved
		case '\\':
			tag = TagMarker
		}
	}
	return Line{Text: text, Tag: tag}
}

// Span is a half-open byte range [Start, End) within the diff body text.
type Span struct {
	Start int
	End   int
}

// Hunk is a header line plus its body lines.
type Hunk struct {
	Header HunkHeader
	Lines  []Line
	// Span covers the header line and every body line, each counted with its newline.
	Span Span
}

// Offset is the cumulative end of the hunk within the body text.
func (h Hunk) Offset() int {
	return h.Span.End
}

// String renders the hunk header followed by its lines, joined by newlines.
func (h Hunk) String() string {
	var sb strings.Builder
	sb.WriteString(h.Header.String())
	for _, l := range h.Lines {
		sb.WriteByte('\n')
		sb.WriteString(l.Text)
	}
	return sb.String()
}

// Stats returns the number of added and removed lines.
func (h Hunk) Stats() (added, removed int) {
	for _, l := range h.Lines {
		switch l.Tag {
		case TagAdded:
			added++
		case TagRemoved:
			removed++
		}
	}
	return added, removed
}

// Document is one file's diff: the preamble before the first hunk and the
// hunks parsed from the body.
type Document struct {
	// Header holds the "diff --git", "index", "---" and "+++" lines, without a trailing newline.
	Header string
	// Text is the body the hunks were parsed from. Spans index into it.
	Text  string
	Hunks []Hunk
}

// Parse builds a Document from a preamble and a body that starts at the
// first hunk header. Body content before any header is rejected.
func Parse(header, body string) (*Document, error) {
	doc := &Document{
		Header: strings.TrimSuffix(header, "\n"),
		Text:   body,
	}
	if body == "" {
		return doc, nil
	}

	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	offset := 0
	var cur *Hunk
	for _, text := range lines {
		size := len(text) + 1
		if hunkHeaderRe.MatchString(text) {
			h, err := ParseHunkHeader(text)
			if err != nil {
				return nil, err
			}
			doc.Hunks = append(doc.Hunks, Hunk{
				Header: h,
				Span:   Span{Start: offset, End: offset + size},
			})
			cur = &doc.Hunks[len(doc.Hunks)-1]
			offset += size
			continue
		}
		if cur == nil {
			return nil, &MalformedDiffError{Line: text, Offset: offset}
		}
		cur.Lines = append(cur.Lines, NewLine(text))
		cur.Span.End += size
		offset += size
	}
	return doc, nil
}

// Hunk returns the hunk at index i.
func (d *Document) Hunk(i int) (Hunk, error) {
	if i < 0 || i >= len(d.Hunks) {
		return Hunk{}, fmt.Errorf("%w: %d of %d", ErrHunkIndex, i, len(d.Hunks))
	}
	return d.Hunks[i], nil
}
