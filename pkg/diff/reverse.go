package diff

import "strings"

// Reverse returns the document as it reads when applied in the opposite
// direction: hunk ranges are swapped and every addition becomes a removal
// and vice versa. Lines keep their positions, so spans and selection
// offsets carry over unchanged. Unlike "git diff -R", removals are not
// reordered ahead of additions.
func (d *Document) Reverse() *Document {
	r := &Document{
		Header: reversePreamble(d.Header),
		Hunks:  make([]Hunk, len(d.Hunks)),
	}
	var sb strings.Builder
	for i, h := range d.Hunks {
		rh := Hunk{
			Header: h.Header.Reverse(),
			Lines:  make([]Line, len(h.Lines)),
			Span:   h.Span,
		}
		for j, l := range h.Lines {
			rh.Lines[j] = l.reverse()
		}
		r.Hunks[i] = rh
		sb.WriteString(rh.String())
		sb.WriteByte('\n')
	}
	r.Text = sb.String()
	return r
}

func (l Line) reverse() Line {
	switch l.Tag {
	case TagAdded:
		return Line{Text: "-" + l.Text[1:], Tag: TagRemoved}
	case TagRemoved:
		return Line{Text: "+" + l.Text[1:], Tag: TagAdded}
	default:
		return l
	}
}

var preambleSwaps = [][2]string{
	{"new file mode ", "deleted file mode "},
	{"old mode ", "new mode "},
	{"rename from ", "rename to "},
	{"copy from ", "copy to "},
}

func reversePreamble(header string) string {
	if header == "" {
		return ""
	}
	lines := strings.Split(header, "\n")
	oldIdx, newIdx := -1, -1
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "--- "):
			oldIdx = i
		case strings.HasPrefix(line, "+++ "):
			newIdx = i
		case strings.HasPrefix(line, "index "):
			lines[i] = reverseIndexLine(line)
		case strings.HasPrefix(line, "diff --git "):
			lines[i] = reverseGitLine(line)
		default:
			lines[i] = swapPrefix(line)
		}
	}
	if oldIdx >= 0 && newIdx >= 0 {
		oldPath := strings.TrimPrefix(lines[oldIdx], "--- ")
		newPath := strings.TrimPrefix(lines[newIdx], "+++ ")
		lines[oldIdx] = "--- " + newPath
		lines[newIdx] = "+++ " + oldPath
	}
	return strings.Join(lines, "\n")
}

func swapPrefix(line string) string {
	for _, pair := range preambleSwaps {
		if rest, ok := strings.CutPrefix(line, pair[0]); ok {
			return pair[1] + rest
		}
		if rest, ok := strings.CutPrefix(line, pair[1]); ok {
			return pair[0] + rest
		}
	}
	return line
}

// reverseGitLine swaps the paths of "diff --git a/old b/new". Lines whose
// split point is ambiguous are left alone.
func reverseGitLine(line string) string {
	rest, ok := strings.CutPrefix(line, "diff --git a/")
	if !ok || strings.Count(rest, " b/") != 1 {
		return line
	}
	oldPath, newPath, _ := strings.Cut(rest, " b/")
	return "diff --git a/" + newPath + " b/" + oldPath
}

// reverseIndexLine turns "index a..b 100644" into "index b..a 100644".
func reverseIndexLine(line string) string {
	rest := strings.TrimPrefix(line, "index ")
	hashes, mode, hasMode := strings.Cut(rest, " ")
	from, to, ok := strings.Cut(hashes, "..")
	if !ok {
		return line
	}
	out := "index " + to + ".." + from
	if hasMode {
		out += " " + mode
	}
	return out
}
