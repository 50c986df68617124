package git

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renatogalera/hunkpick/pkg/patch"
)

func TestDiffArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts DiffOptions
		want []string
	}{
		{
			name: "worktree diff of one path",
			opts: DiffOptions{Path: "main.go"},
			want: []string{"diff", "--no-color", "--no-ext-diff", "--", "main.go"},
		},
		{
			name: "cached diff with context",
			opts: DiffOptions{Path: "main.go", Cached: true, ContextLines: 5},
			want: []string{"diff", "--no-color", "--no-ext-diff", "-U5", "--cached", "--", "main.go"},
		},
		{
			name: "against a ref",
			opts: DiffOptions{Ref: "HEAD~1", Path: "a b.txt"},
			want: []string{"diff", "--no-color", "--no-ext-diff", "HEAD~1", "--", "a b.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, diffArgs(tt.opts))
		})
	}
}

func TestApplyArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"apply", "--cached", "/tmp/p.patch"}, applyArgs("/tmp/p.patch", patch.TargetIndex, patch.Forward))
	assert.Equal(t, []string{"apply", "--reverse", "/tmp/p.patch"}, applyArgs("/tmp/p.patch", patch.TargetWorktree, patch.Reverse))
	assert.Equal(t, []string{"apply", "--cached", "--reverse", "/tmp/p.patch"}, applyArgs("/tmp/p.patch", patch.TargetIndex, patch.Reverse))
}
