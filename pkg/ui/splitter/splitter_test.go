package splitter

import (
	"context"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renatogalera/hunkpick/pkg/diff"
	"github.com/renatogalera/hunkpick/pkg/git"
	"github.com/renatogalera/hunkpick/pkg/patch"
)

const testHeader = `diff --git a/README b/README
index 1111111..2222222 100644
--- a/README
+++ b/README`

const testBody = `@@ -1,3 +1,3 @@
 alpha
-beta
+BETA
 gamma
@@ -20,3 +20,4 @@ section two
 twenty
-twenty-one
+twenty-one!
+twenty-one and a half
 twenty-two
`

type recordingApplier struct {
	patches []string
	targets []patch.Target
}

func (r *recordingApplier) Apply(ctx context.Context, path string, target patch.Target, _ patch.Direction) (int, string, string, error) {
	if err := ctx.Err(); err != nil {
		return 0, "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", "", err
	}
	r.patches = append(r.patches, string(data))
	r.targets = append(r.targets, target)
	return 0, "", "", nil
}

func newTestModel(t *testing.T, action git.Action) (Model, *recordingApplier) {
	t.Helper()

	return newTestModelContext(t, context.Background(), action)
}

func newTestModelContext(t *testing.T, ctx context.Context, action git.Action) (Model, *recordingApplier) {
	t.Helper()

	doc, err := diff.Parse(testHeader, testBody)
	require.NoError(t, err)
	applier := &recordingApplier{}
	engine := patch.NewEngine(applier)
	engine.Temp = patch.DirTempFiles{Dir: t.TempDir()}

	m := NewSplitterModel(ctx, "README", doc, action, engine)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), applier
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyApply = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}
	keyAll   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
	keyPeek  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}
)

// runApply executes the batched command returned by the apply key and feeds
// the apply result back into the model.
func runApply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(applyResultMsg); ok {
			next, _ := m.Update(msg)
			return next.(Model)
		}
	}
	t.Fatal("no apply result produced")
	return m
}

func TestSplitter_ToggleAndApply(t *testing.T) {
	t.Parallel()

	m, applier := newTestModel(t, git.ActionStage)
	m, _ = press(t, m, keyDown)
	m, _ = press(t, m, keySpace)
	assert.Equal(t, []int{1}, m.Selected())
	assert.Contains(t, m.View(), "1 of 2 hunks selected")

	m, cmd := press(t, m, keyApply)
	assert.Equal(t, stateApplying, m.state)
	m = runApply(t, m, cmd)

	res, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, []int{1}, res.Hunks)
	require.NoError(t, m.Err())
	require.Len(t, applier.patches, 1)
	assert.Contains(t, applier.patches[0], "@@ -20,3 +20,4 @@ section two\n")
	assert.Equal(t, patch.TargetIndex, applier.targets[0])
	assert.Contains(t, m.View(), "Applied 1 patch(es)")
}

func TestSplitter_RevertUsesReversedRendering(t *testing.T) {
	t.Parallel()

	m, applier := newTestModel(t, git.ActionRevert)
	m, _ = press(t, m, keySpace)
	m, cmd := press(t, m, keyApply)
	m = runApply(t, m, cmd)

	require.Len(t, applier.patches, 1)
	assert.Equal(t, patch.TargetWorktree, applier.targets[0])
	assert.Contains(t, applier.patches[0], "+beta\n-BETA\n")
	_, ok := m.Result()
	assert.True(t, ok)
}

func TestSplitter_ApplyWithoutSelection(t *testing.T) {
	t.Parallel()

	m, applier := newTestModel(t, git.ActionStage)
	m, cmd := press(t, m, keyApply)
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.Err(), ErrNothingSelected)
	assert.Equal(t, stateList, m.state)
	assert.Empty(t, applier.patches)
}

func TestSplitter_ToggleAll(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, git.ActionStage)
	m, _ = press(t, m, keyAll)
	assert.Equal(t, []int{0, 1}, m.Selected())
	m, _ = press(t, m, keyAll)
	assert.Empty(t, m.Selected())
}

func TestSplitter_ApplyUsesModelContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, applier := newTestModelContext(t, ctx, git.ActionStage)
	m, _ = press(t, m, keySpace)
	m, cmd := press(t, m, keyApply)
	m = runApply(t, m, cmd)

	assert.ErrorIs(t, m.Err(), context.Canceled)
	assert.Empty(t, applier.patches)
	_, ok := m.Result()
	assert.False(t, ok)
}

func TestSplitter_PreviewShowsHunk(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, git.ActionStage)
	m, _ = press(t, m, keyDown)
	m, _ = press(t, m, keyPeek)
	require.Equal(t, statePreview, m.state)
	view := m.View()
	assert.Contains(t, view, "Hunk #1")
	assert.Contains(t, view, "+twenty-one and a half")

	m, _ = press(t, m, keyDown)
	assert.Equal(t, stateList, m.state)
}
