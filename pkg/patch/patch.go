// Package patch turns a resolved selection into patches and hands them to an
// apply collaborator one invocation at a time.
package patch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/renatogalera/hunkpick/pkg/diff"
)

var (
	// ErrNoHunk is returned when a selection does not touch any hunk.
	ErrNoHunk = errors.New("selection does not touch any hunk")
	// ErrRenderingMismatch is returned when the forward and apply renderings
	// of a diff do not share the same hunk layout.
	ErrRenderingMismatch = errors.New("forward and apply renderings differ")
)

// Target is where a patch is applied.
type Target int

const (
	TargetIndex Target = iota
	TargetWorktree
)

func (t Target) String() string {
	if t == TargetWorktree {
		return "worktree"
	}
	return "index"
}

// Direction is the direction a patch is applied in.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Applier applies a patch file. A non-zero status is a result, not an error;
// err is reserved for failures to run the apply at all.
type Applier interface {
	Apply(ctx context.Context, path string, target Target, dir Direction) (status int, stdout, stderr string, err error)
}

// TempFiles hands out uniquely named scratch files.
type TempFiles interface {
	Create(pattern string) (*os.File, error)
}

// DirTempFiles creates scratch files in Dir, or the system temp dir when empty.
type DirTempFiles struct {
	Dir string
}

func (d DirTempFiles) Create(pattern string) (*os.File, error) {
	return os.CreateTemp(d.Dir, pattern)
}

// Selection describes what the user picked. With neither Text, HasRange nor
// Hunks set it is a cursor Offset and always selects a whole hunk.
type Selection struct {
	Offset int

	// Text is located verbatim in the forward rendering.
	Text string

	HasRange bool
	Start    int
	End      int

	// Hunks selects whole hunks by index.
	Hunks []int

	// Lines applies only the selected lines of a Text or range selection
	// instead of every hunk it touches.
	Lines bool
}

// Request is one apply action against a single file's diff.
type Request struct {
	// Forward is the canonical rendering that selection coordinates refer to.
	Forward *diff.Document
	// Document is the rendering that matches Direction and Target. Nil means Forward.
	Document  *diff.Document
	Selection Selection
	Target    Target
	Direction Direction
}

// Result aggregates every apply invocation of a request.
type Result struct {
	// Status is the worst exit status seen; 0 only if every apply succeeded.
	Status int
	// Output concatenates the stdout and stderr of every apply.
	Output string
	// Hunks lists the forward hunk indices the selection resolved to.
	Hunks []int
	// Applied counts apply invocations.
	Applied int
}

// Failed reports whether any apply returned a non-zero status.
func (r Result) Failed() bool {
	return r.Status != 0
}

// Err returns an *ApplyError for a failed result and nil otherwise.
func (r Result) Err() error {
	if !r.Failed() {
		return nil
	}
	return &ApplyError{Status: r.Status, Output: r.Output}
}

// ApplyError is a non-zero apply status surfaced as an error.
type ApplyError struct {
	Status int
	Output string
}

func (e *ApplyError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("apply failed with status %d", e.Status)
	}
	return fmt.Sprintf("apply failed with status %d: %s", e.Status, out)
}

// Engine synthesizes patches for a selection and applies them.
type Engine struct {
	Applier Applier
	Temp    TempFiles
	// Encode converts a patch to the file encoding before it is written. Nil keeps UTF-8.
	Encode func(string) (string, error)
	// Verify parses every synthesized patch before anything is written.
	Verify bool
}

// NewEngine returns an Engine that verifies patches and writes them to the
// system temp dir.
func NewEngine(applier Applier) *Engine {
	return &Engine{
		Applier: applier,
		Temp:    DirTempFiles{},
		Verify:  true,
	}
}

// ApplySelection applies a selection of the forward diff. Unstaging
// (staged) and reverting (applyToWorktree) synthesize from the reversed
// rendering so that lines outside the selection are judged against the side
// of the diff the target currently holds.
func (e *Engine) ApplySelection(ctx context.Context, fwd *diff.Document, sel Selection, applyToWorktree, staged bool) (Result, error) {
	req := Request{
		Forward:   fwd,
		Document:  fwd,
		Selection: sel,
		Target:    TargetIndex,
		Direction: Forward,
	}
	if applyToWorktree {
		req.Target = TargetWorktree
	}
	if fwd != nil && (applyToWorktree || staged) {
		req.Document = fwd.Reverse()
	}
	return e.Apply(ctx, req)
}

type pending struct {
	name string
	text string
}

// Apply resolves the selection against the forward rendering and applies the
// matching patches. Line selections produce a single patch and a single apply;
// whole-hunk selections apply each hunk on its own so one failure does not
// block the rest.
func (e *Engine) Apply(ctx context.Context, req Request) (Result, error) {
	fwd, doc := req.Forward, req.Document
	if fwd == nil {
		return Result{}, errors.New("no forward diff to resolve the selection against")
	}
	if doc == nil {
		doc = fwd
	}
	if !sameLayout(fwd, doc) {
		return Result{}, ErrRenderingMismatch
	}

	indices, start, end, ranged, err := resolve(fwd, req.Selection)
	if err != nil {
		return Result{}, err
	}
	log.Debug().Ints("hunks", indices).Bool("lines", req.Selection.Lines && ranged).Msg("selection resolved")

	var patches []pending
	if req.Selection.Lines && ranged {
		text, err := doc.SubsetPatch(indices, start, end)
		if err != nil {
			return Result{Hunks: indices}, err
		}
		patches = append(patches, pending{name: "selection", text: text})
	} else {
		for _, i := range indices {
			text, err := doc.HunkPatch(i)
			if err != nil {
				return Result{Hunks: indices}, err
			}
			patches = append(patches, pending{name: fmt.Sprintf("patch%02d", i), text: text})
		}
	}

	if e.Verify {
		for _, p := range patches {
			if err := Verify(p.text); err != nil {
				return Result{Hunks: indices}, err
			}
		}
	}

	res := Result{Hunks: indices}
	for _, p := range patches {
		status, output, err := e.applyOne(ctx, p, req.Target, req.Direction)
		if err != nil {
			return res, err
		}
		res.Applied++
		res.Output += output
		res.Status = max(res.Status, status)
	}
	return res, nil
}

func resolve(fwd *diff.Document, sel Selection) (indices []int, start, end int, ranged bool, err error) {
	switch {
	case len(sel.Hunks) > 0:
		for _, i := range sel.Hunks {
			if _, err := fwd.Hunk(i); err != nil {
				return nil, 0, 0, false, err
			}
		}
		return sel.Hunks, 0, 0, false, nil
	case sel.Text != "":
		start, end, err = diff.LocateText(fwd.Text, sel.Text)
		if err != nil {
			return nil, 0, 0, false, err
		}
		ranged = true
	case sel.HasRange:
		start, end, ranged = sel.Start, sel.End, true
	default:
		i, ok := fwd.HunkForOffset(sel.Offset)
		if !ok {
			return nil, 0, 0, false, fmt.Errorf("%w: offset %d", ErrNoHunk, sel.Offset)
		}
		return []int{i}, 0, 0, false, nil
	}

	indices = fwd.HunksForRange(start, end)
	if len(indices) == 0 {
		return nil, 0, 0, false, fmt.Errorf("%w: range %d-%d", ErrNoHunk, start, end)
	}
	return indices, start, end, ranged, nil
}

// sameLayout reports whether b mirrors a line for line: identical spans and
// lines that differ at most in their +/- prefix. A "git diff -R" rendering
// that reorders removals ahead of additions fails this check.
func sameLayout(a, b *diff.Document) bool {
	if a == b {
		return true
	}
	if len(a.Hunks) != len(b.Hunks) {
		return false
	}
	for i := range a.Hunks {
		ha, hb := a.Hunks[i], b.Hunks[i]
		if ha.Span != hb.Span || len(ha.Lines) != len(hb.Lines) {
			return false
		}
		for j := range ha.Lines {
			la, lb := ha.Lines[j].Text, hb.Lines[j].Text
			if len(la) != len(lb) || (la != "" && la[1:] != lb[1:]) {
				return false
			}
		}
	}
	return true
}

func (e *Engine) applyOne(ctx context.Context, p pending, target Target, dir Direction) (int, string, error) {
	data := p.text
	if e.Encode != nil {
		var err error
		if data, err = e.Encode(data); err != nil {
			return 0, "", err
		}
	}

	temp := e.Temp
	if temp == nil {
		temp = DirTempFiles{}
	}
	f, err := temp.Create(p.name + "-*.patch")
	if err != nil {
		return 0, "", fmt.Errorf("create patch file: %w", err)
	}
	path := f.Name()
	defer removeTemp(path)

	if _, err := f.WriteString(data); err != nil {
		f.Close()
		return 0, "", fmt.Errorf("write patch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, "", fmt.Errorf("close patch file: %w", err)
	}

	log.Debug().
		Str("path", path).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Stringer("target", target).
		Stringer("direction", dir).
		Msg("applying patch")

	status, stdout, stderr, err := e.Applier.Apply(ctx, path, target, dir)
	if err != nil {
		return 0, "", fmt.Errorf("apply %s: %w", p.name, err)
	}
	if status != 0 {
		log.Warn().Int("status", status).Str("patch", p.name).Msg("apply failed")
	}
	return status, stdout + stderr, nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove patch file")
	}
}
