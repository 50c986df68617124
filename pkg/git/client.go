package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/renatogalera/hunkpick/pkg/diff"
	"github.com/renatogalera/hunkpick/pkg/patch"
	"github.com/renatogalera/hunkpick/pkg/textenc"
)

// DiffOptions selects which diff of a single path to produce.
type DiffOptions struct {
	Ref    string
	Path   string
	Cached bool
	// ContextLines sets -U<n>. Zero keeps git's default.
	ContextLines int
}

// Action is a user-initiated patch action on one file.
type Action int

const (
	ActionStage Action = iota
	ActionUnstage
	ActionRevert
)

func (a Action) String() string {
	switch a {
	case ActionUnstage:
		return "unstage"
	case ActionRevert:
		return "revert"
	default:
		return "stage"
	}
}

// ParseAction maps a command name to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "stage":
		return ActionStage, nil
	case "unstage":
		return ActionUnstage, nil
	case "revert":
		return ActionRevert, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Staged reports whether the action works on the cached (index) diff.
func (a Action) Staged() bool {
	return a == ActionUnstage
}

// ToWorktree reports whether the action modifies files on disk.
func (a Action) ToWorktree() bool {
	return a == ActionRevert
}

// Client runs the git binary for diff text and patch application.
type Client struct {
	GitPath string
	Dir     string
	// Timeout bounds every git invocation. Zero means no limit.
	Timeout time.Duration
	Codec   textenc.Codec
}

// NewClient returns a client for the repository containing dir.
func NewClient(dir string) *Client {
	return &Client{GitPath: "git", Dir: dir}
}

var _ patch.Applier = (*Client)(nil)

// run executes git and returns its exit status and captured output. Only a
// failure to start the process is an error.
func (c *Client) run(ctx context.Context, args ...string) (int, string, string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	gitPath := c.GitPath
	if gitPath == "" {
		gitPath = "git"
	}

	cmd := exec.CommandContext(ctx, gitPath, args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Strs("args", args).Msg("running git")
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return exitErr.ExitCode(), stdout.String(), stderr.String(), nil
	}
	if err != nil {
		return 0, stdout.String(), stderr.String(), fmt.Errorf("git %s: %w", args[0], err)
	}
	return 0, stdout.String(), stderr.String(), nil
}

func diffArgs(opts DiffOptions) []string {
	args := []string{"diff", "--no-color", "--no-ext-diff"}
	if opts.ContextLines > 0 {
		args = append(args, "-U"+strconv.Itoa(opts.ContextLines))
	}
	if opts.Cached {
		args = append(args, "--cached")
	}
	if opts.Ref != "" {
		args = append(args, opts.Ref)
	}
	args = append(args, "--")
	if opts.Path != "" {
		args = append(args, opts.Path)
	}
	return args
}

func applyArgs(path string, target patch.Target, dir patch.Direction) []string {
	args := []string{"apply"}
	if target == patch.TargetIndex {
		args = append(args, "--cached")
	}
	if dir == patch.Reverse {
		args = append(args, "--reverse")
	}
	return append(args, path)
}

// Diff returns one path's diff split into its preamble and hunk body.
func (c *Client) Diff(ctx context.Context, opts DiffOptions) (header, body string, err error) {
	status, stdout, stderr, err := c.run(ctx, diffArgs(opts)...)
	if err != nil {
		return "", "", err
	}
	if status != 0 {
		return "", "", fmt.Errorf("git diff exited with status %d: %s", status, strings.TrimSpace(stderr))
	}
	text, err := c.Codec.Decode(stdout)
	if err != nil {
		return "", "", err
	}
	header, body = SplitDiff(text)
	return header, body, nil
}

// Apply runs "git apply" on a patch file. The exit status is passed through untouched.
func (c *Client) Apply(ctx context.Context, path string, target patch.Target, dir patch.Direction) (int, string, string, error) {
	return c.run(ctx, applyArgs(path, target, dir)...)
}

// Document fetches and parses the forward diff an action selects from.
func (c *Client) Document(ctx context.Context, path string, action Action, contextLines int) (*diff.Document, error) {
	header, body, err := c.Diff(ctx, DiffOptions{
		Path:         path,
		Cached:       action.Staged(),
		ContextLines: contextLines,
	})
	if err != nil {
		return nil, err
	}
	doc, err := diff.Parse(header, body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff of %s: %w", path, err)
	}
	return doc, nil
}
