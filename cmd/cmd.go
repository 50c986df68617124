// Package cmd provides the hunkpick subcommands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/hunkpick/pkg/config"
	"github.com/renatogalera/hunkpick/pkg/diff"
	"github.com/renatogalera/hunkpick/pkg/git"
	"github.com/renatogalera/hunkpick/pkg/patch"
	"github.com/renatogalera/hunkpick/pkg/ui/splitter"
)

// Env is what every subcommand works with, built once per invocation.
type Env struct {
	Config *config.Config
	Client *git.Client
	Engine *patch.Engine
	Dir    string
}

// SetupFunc builds the Env from the root command's flags and config file.
type SetupFunc func() (*Env, error)

// ExitError carries a git apply status out of a command so main can exit with it.
type ExitError struct {
	Status int
	Err    error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Status)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

var (
	hunkTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	invalidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type selectionFlags struct {
	offset   int
	rng      string
	text     string
	textFile string
	lines    bool
}

// NewActionCmd creates the "stage", "unstage" or "revert" command.
func NewActionCmd(action git.Action, setup SetupFunc) *cobra.Command {
	var flags selectionFlags

	short := map[git.Action]string{
		git.ActionStage:   "Stage the selected part of a file's worktree changes",
		git.ActionUnstage: "Unstage the selected part of a file's staged changes",
		git.ActionRevert:  "Discard the selected part of a file's worktree changes",
	}[action]

	cmd := &cobra.Command{
		Use:   action.String() + " <path>",
		Short: short,
		Long: `Selects from the diff of one file and applies it with git apply.

With --offset the hunk under that byte offset of the diff body is used.
With --range or --text every hunk the selection touches is used, or, with
--lines, only the selected lines of those hunks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup()
			if err != nil {
				return err
			}
			sel, err := flags.selection(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runAction(cmd, env, action, args[0], sel)
		},
	}

	cmd.Flags().IntVar(&flags.offset, "offset", 0, "byte offset into the diff body; selects the hunk under it")
	cmd.Flags().StringVar(&flags.rng, "range", "", "byte range start:end of the diff body")
	cmd.Flags().StringVar(&flags.text, "text", "", "text copied from the diff; located verbatim")
	cmd.Flags().StringVar(&flags.textFile, "text-file", "", "read the selection text from a file, or - for stdin")
	cmd.Flags().BoolVar(&flags.lines, "lines", false, "apply only the selected lines instead of whole hunks")
	cmd.MarkFlagsMutuallyExclusive("offset", "range", "text", "text-file")
	return cmd
}

func runAction(cmd *cobra.Command, env *Env, action git.Action, path string, sel patch.Selection) error {
	ctx := cmd.Context()
	doc, err := env.Client.Document(ctx, path, action, env.Config.ContextLines)
	if err != nil {
		return err
	}
	if len(doc.Hunks) == 0 {
		return fmt.Errorf("no %s changes in %s", changeKind(action), path)
	}

	res, err := env.Engine.ApplySelection(ctx, doc, sel, action.ToWorktree(), action.Staged())
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", action, path, err)
	}
	if res.Output != "" {
		fmt.Fprint(cmd.OutOrStdout(), res.Output)
	}
	if res.Failed() {
		return &ExitError{Status: res.Status, Err: res.Err()}
	}
	log.Info().
		Str("action", action.String()).
		Str("path", path).
		Ints("hunks", res.Hunks).
		Int("patches", res.Applied).
		Msg("applied")
	return nil
}

func changeKind(action git.Action) string {
	if action.Staged() {
		return "staged"
	}
	return "unstaged"
}

func (f selectionFlags) selection(stdin io.Reader) (patch.Selection, error) {
	sel := patch.Selection{Offset: f.offset, Lines: f.lines}
	switch {
	case f.textFile != "":
		var data []byte
		var err error
		if f.textFile == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(f.textFile)
		}
		if err != nil {
			return patch.Selection{}, fmt.Errorf("failed to read selection text: %w", err)
		}
		sel.Text = strings.TrimSuffix(string(data), "\n")
		if sel.Text == "" {
			return patch.Selection{}, diff.ErrEmptySelection
		}
	case f.text != "":
		sel.Text = f.text
	case f.rng != "":
		start, end, err := parseRange(f.rng)
		if err != nil {
			return patch.Selection{}, err
		}
		sel.HasRange, sel.Start, sel.End = true, start, end
	}
	return sel, nil
}

// parseRange parses "start:end" into a half-open byte range.
func parseRange(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid range %q: want start:end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q: %w", a, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q: %w", b, err)
	}
	if start < 0 || end < start {
		return 0, 0, fmt.Errorf("invalid range %q: need 0 <= start <= end", s)
	}
	return start, end, nil
}

// NewShowCmd creates the "show" command.
func NewShowCmd(setup SetupFunc) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print a file's diff body with the index, byte span and header of every hunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup()
			if err != nil {
				return err
			}
			action := git.ActionStage
			if cached {
				action = git.ActionUnstage
			}
			doc, err := env.Client.Document(cmd.Context(), args[0], action, env.Config.ContextLines)
			if err != nil {
				return err
			}
			return printDocument(cmd.OutOrStdout(), args[0], doc)
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "show the staged diff instead of the worktree diff")
	return cmd
}

// printDocument lists every hunk with its byte span and whether its
// whole-hunk patch passes verification, followed by the hunk itself.
func printDocument(w io.Writer, path string, doc *diff.Document) error {
	if name := git.ParseFilePath(doc.Header); name != "" {
		path = name
	}
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("%s: %d hunk(s), %s", path, len(doc.Hunks), humanize.Bytes(uint64(len(doc.Text))))))
	for i, h := range doc.Hunks {
		added, removed := h.Stats()
		title := fmt.Sprintf("#%d [%d,%d) +%d -%d", i, h.Span.Start, h.Span.End, added, removed)
		text, err := doc.HunkPatch(i)
		if err != nil {
			return err
		}
		if err := patch.Verify(text); err != nil {
			title += " " + invalidStyle.Render(err.Error())
		}
		fmt.Fprintln(w, hunkTitleStyle.Render(title))
		if _, err := fmt.Fprintln(w, h.String()); err != nil {
			return err
		}
	}
	return nil
}

// NewPickCmd creates the "pick" command.
func NewPickCmd(setup SetupFunc) *cobra.Command {
	var actionName string

	cmd := &cobra.Command{
		Use:   "pick [path]",
		Short: "Choose a changed file with a fuzzy finder, then pick its hunks interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup()
			if err != nil {
				return err
			}
			action, err := git.ParseAction(actionName)
			if err != nil {
				return err
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				path, err = pickFile(cmd, env, action)
				if errors.Is(err, fuzzyfinder.ErrAbort) {
					return nil
				}
				if err != nil {
					return err
				}
			}
			return runSplitter(cmd, env, action, path)
		},
	}
	cmd.Flags().StringVarP(&actionName, "action", "a", "stage", "action to apply: stage, unstage or revert")
	return cmd
}

// candidates returns the files an action can select from.
func candidates(files []git.FileStatus, action git.Action) []git.FileStatus {
	var out []git.FileStatus
	for _, f := range files {
		if action.Staged() && f.Staged() || !action.Staged() && f.Unstaged() {
			out = append(out, f)
		}
	}
	return out
}

func pickFile(cmd *cobra.Command, env *Env, action git.Action) (string, error) {
	files, err := git.ChangedFiles(env.Dir)
	if err != nil {
		return "", err
	}
	files = candidates(files, action)
	if len(files) == 0 {
		return "", fmt.Errorf("no %s changes to %s", changeKind(action), action)
	}

	prompt := fmt.Sprintf("%s> ", action)
	if branch, err := git.GetCurrentBranch(env.Dir); err == nil && branch != "" {
		prompt = fmt.Sprintf("%s on %s> ", action, branch)
	}

	idx, err := fuzzyfinder.Find(
		files,
		func(i int) string {
			return fmt.Sprintf("%s %s", files[i].Code(), files[i].Path)
		},
		fuzzyfinder.WithPromptString(prompt),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i < 0 {
				return ""
			}
			_, body, err := env.Client.Diff(cmd.Context(), git.DiffOptions{
				Path:         files[i].Path,
				Cached:       action.Staged(),
				ContextLines: env.Config.ContextLines,
			})
			if err != nil {
				return err.Error()
			}
			return body
		}),
	)
	if err != nil {
		return "", err
	}
	return files[idx].Path, nil
}

func runSplitter(cmd *cobra.Command, env *Env, action git.Action, path string) error {
	doc, err := env.Client.Document(cmd.Context(), path, action, env.Config.ContextLines)
	if err != nil {
		return err
	}
	if len(doc.Hunks) == 0 {
		return fmt.Errorf("no %s changes in %s", changeKind(action), path)
	}

	final, err := splitter.NewProgram(splitter.NewSplitterModel(cmd.Context(), path, doc, action, env.Engine)).Run()
	if err != nil {
		return fmt.Errorf("failed to run hunk picker: %w", err)
	}
	m, ok := final.(splitter.Model)
	if !ok {
		return nil
	}
	if err := m.Err(); err != nil && !errors.Is(err, splitter.ErrNothingSelected) {
		return err
	}
	if res, ok := m.Result(); ok {
		if res.Output != "" {
			fmt.Fprint(cmd.OutOrStdout(), res.Output)
		}
		if res.Failed() {
			return &ExitError{Status: res.Status, Err: res.Err()}
		}
	}
	return nil
}
