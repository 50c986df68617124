package diff

import "strings"

// HunkPatch renders hunk i as a complete patch: the document preamble
// followed by the hunk exactly as parsed.
func (d *Document) HunkPatch(i int) (string, error) {
	h, err := d.Hunk(i)
	if err != nil {
		return "", err
	}
	return d.Header + "\n" + h.String() + "\n", nil
}

// Subset is a hunk rewritten to carry only the lines inside a selection.
type Subset struct {
	Hunk Hunk

	Adds    int
	Deletes int
	// Context counts original context lines plus demoted removals.
	Context int

	// Kept, Demoted and Dropped partition the original body lines.
	Kept    int
	Demoted int
	Dropped int
}

// HasChanges reports whether any addition or removal survived.
func (s Subset) HasChanges() bool {
	return s.Adds+s.Deletes > 0
}

// SubsetHunk rewrites hunk i so that only the lines touched by the byte
// range [start, end) change anything. Unselected additions are dropped and
// unselected removals become context; the header counts are recomputed.
func (d *Document) SubsetHunk(i, start, end int) (Subset, error) {
	h, err := d.Hunk(i)
	if err != nil {
		return Subset{}, err
	}

	pos := h.Span.End
	for _, l := range h.Lines {
		pos -= len(l.Text) + 1
	}

	var sub Subset
	lines := make([]Line, 0, len(h.Lines))
	prevDropped := false
	for _, l := range h.Lines {
		lineStart := pos
		lineEnd := pos + len(l.Text) + 1
		pos = lineEnd

		if l.Tag == TagMarker {
			if prevDropped {
				sub.Dropped++
			} else {
				lines = append(lines, l)
				sub.Kept++
			}
			continue
		}

		prevDropped = false
		switch {
		case lineSelected(start, end, lineStart, lineEnd):
			lines = append(lines, l)
			sub.Kept++
			switch l.Tag {
			case TagAdded:
				sub.Adds++
			case TagRemoved:
				sub.Deletes++
			default:
				sub.Context++
			}
		case l.Tag == TagAdded:
			sub.Dropped++
			prevDropped = true
		case l.Tag == TagRemoved:
			lines = append(lines, Line{Text: " " + l.Text[1:], Tag: TagContext})
			sub.Demoted++
			sub.Context++
		default:
			lines = append(lines, l)
			sub.Kept++
			sub.Context++
		}
	}

	header := h.Header
	header.SetOldCount(sub.Context + sub.Deletes)
	header.SetNewCount(sub.Context + sub.Adds)
	sub.Hunk = Hunk{Header: header, Lines: lines, Span: h.Span}
	return sub, nil
}

// lineSelected reports whether the line [lineStart, lineEnd) is inside the
// selection [start, end). A selection starting on a line's newline does not
// select that line.
func lineSelected(start, end, lineStart, lineEnd int) bool {
	head := start <= lineStart && lineStart < end && end <= lineEnd
	all := start <= lineStart && end >= lineEnd
	tail := start >= lineStart && start < lineEnd-1
	return head || all || tail
}

// SubsetPatch rewrites every listed hunk in line-subset mode and joins the
// ones that still change something into a single patch. A file creation or
// deletion that the selection only partly applies becomes a plain
// modification, since the file exists on both sides afterwards.
func (d *Document) SubsetPatch(indices []int, start, end int) (string, error) {
	var hunks []Hunk
	oldLines, newLines := 0, 0
	for _, i := range indices {
		sub, err := d.SubsetHunk(i, start, end)
		if err != nil {
			return "", err
		}
		if !sub.HasChanges() {
			continue
		}
		hunks = append(hunks, sub.Hunk)
		oldLines += sub.Hunk.Header.OldCount
		newLines += sub.Hunk.Header.NewCount
	}
	if len(hunks) == 0 {
		return "", ErrEmptySelection
	}

	header := d.Header
	if newLines > 0 && hasPreambleLine(header, "deleted file mode ") {
		header = keepFile(header, "deleted file mode ", "--- ", "+++ ", "b/")
		for i := range hunks {
			if hunks[i].Header.NewStart == 0 {
				hunks[i].Header.NewStart = 1
			}
		}
	}
	if oldLines > 0 && hasPreambleLine(header, "new file mode ") {
		header = keepFile(header, "new file mode ", "+++ ", "--- ", "a/")
		for i := range hunks {
			if hunks[i].Header.OldStart == 0 {
				hunks[i].Header.OldStart = 1
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteByte('\n')
	for _, h := range hunks {
		sb.WriteString(h.String())
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func hasPreambleLine(header, prefix string) bool {
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// keepFile turns a creation or deletion preamble into a modification: the
// mode line moves onto the index line and the /dev/null side (nullSide)
// takes the path named on the other side (pathSide).
func keepFile(header, modePrefix, pathSide, nullSide, pathPrefix string) string {
	lines := strings.Split(header, "\n")
	mode, path := "", ""
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, modePrefix); ok {
			mode = rest
		}
		if rest, ok := strings.CutPrefix(line, pathSide); ok && rest != "/dev/null" {
			if _, p, ok := strings.Cut(rest, "/"); ok {
				path = p
			}
		}
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, modePrefix):
			continue
		case strings.HasPrefix(line, "index ") && mode != "" && !strings.Contains(strings.TrimPrefix(line, "index "), " "):
			line += " " + mode
		case strings.HasPrefix(line, nullSide) && path != "":
			line = nullSide + pathPrefix + path
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
