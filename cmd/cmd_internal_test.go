package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renatogalera/hunkpick/pkg/diff"
	"github.com/renatogalera/hunkpick/pkg/git"
)

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in         string
		start, end int
		wantErr    bool
	}{
		{in: "10:42", start: 10, end: 42},
		{in: " 0 : 0 ", start: 0, end: 0},
		{in: "42", wantErr: true},
		{in: "a:3", wantErr: true},
		{in: "3:b", wantErr: true},
		{in: "9:3", wantErr: true},
		{in: "-1:3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			start, end, err := parseRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestSelectionFlags(t *testing.T) {
	t.Parallel()

	t.Run("offset is the default", func(t *testing.T) {
		t.Parallel()

		sel, err := selectionFlags{offset: 17}.selection(nil)
		require.NoError(t, err)
		assert.Equal(t, 17, sel.Offset)
		assert.False(t, sel.HasRange)
		assert.Empty(t, sel.Text)
	})

	t.Run("range", func(t *testing.T) {
		t.Parallel()

		sel, err := selectionFlags{rng: "4:9", lines: true}.selection(nil)
		require.NoError(t, err)
		assert.True(t, sel.HasRange)
		assert.Equal(t, 4, sel.Start)
		assert.Equal(t, 9, sel.End)
		assert.True(t, sel.Lines)
	})

	t.Run("text from stdin drops the final newline", func(t *testing.T) {
		t.Parallel()

		sel, err := selectionFlags{textFile: "-"}.selection(strings.NewReader("+six\n"))
		require.NoError(t, err)
		assert.Equal(t, "+six", sel.Text)
	})

	t.Run("text from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "sel.txt")
		require.NoError(t, os.WriteFile(path, []byte("-two\n+TWO\n"), 0o644))
		sel, err := selectionFlags{textFile: path}.selection(nil)
		require.NoError(t, err)
		assert.Equal(t, "-two\n+TWO", sel.Text)
	})

	t.Run("empty text file", func(t *testing.T) {
		t.Parallel()

		_, err := selectionFlags{textFile: "-"}.selection(strings.NewReader("\n"))
		assert.ErrorIs(t, err, diff.ErrEmptySelection)
	})
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	files := []git.FileStatus{
		{Path: "both.go", Staging: gogit.Modified, Worktree: gogit.Modified},
		{Path: "staged.go", Staging: gogit.Added, Worktree: gogit.Unmodified},
		{Path: "worktree.go", Staging: gogit.Unmodified, Worktree: gogit.Modified},
	}

	paths := func(fs []git.FileStatus) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.Path)
		}
		return out
	}
	assert.Equal(t, []string{"both.go", "worktree.go"}, paths(candidates(files, git.ActionStage)))
	assert.Equal(t, []string{"both.go", "staged.go"}, paths(candidates(files, git.ActionUnstage)))
	assert.Equal(t, []string{"both.go", "worktree.go"}, paths(candidates(files, git.ActionRevert)))
}

func TestPrintDocument(t *testing.T) {
	t.Parallel()

	doc, err := diff.Parse("diff --git a/x b/x\n--- a/x\n+++ b/x", "@@ -1 +1 @@\n-a\n+b\n")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printDocument(&buf, "x", doc))
	out := buf.String()
	assert.Contains(t, out, "x: 1 hunk(s)")
	assert.Contains(t, out, "#0 [0,18) +1 -1")
	assert.Contains(t, out, "@@ -1 +1 @@\n-a\n+b\n")
	assert.NotContains(t, out, "invalid patch")
}

func TestPrintDocument_FlagsInvalidHunks(t *testing.T) {
	t.Parallel()

	doc, err := diff.Parse("diff --git a/old.txt b/new.txt\n--- a/old.txt\n+++ b/new.txt", "@@ -1,5 +1 @@\n-a\n+b\n")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printDocument(&buf, "old.txt", doc))
	out := buf.String()
	assert.Contains(t, out, "new.txt: 1 hunk(s)")
	assert.Contains(t, out, "invalid patch")
}
