package git

import (
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// FileStatus is a changed path with its index and worktree status codes.
type FileStatus struct {
	Path     string
	Staging  gogit.StatusCode
	Worktree gogit.StatusCode
}

// Staged reports whether the path has changes in the index.
func (f FileStatus) Staged() bool {
	return f.Staging != gogit.Unmodified && f.Staging != gogit.Untracked
}

// Unstaged reports whether the worktree differs from the index.
func (f FileStatus) Unstaged() bool {
	return f.Worktree != gogit.Unmodified && f.Worktree != gogit.Untracked
}

// Code renders the two-letter porcelain status, e.g. "M " or " M".
func (f FileStatus) Code() string {
	return fmt.Sprintf("%c%c", byte(f.Staging), byte(f.Worktree))
}

func openRepository(dir string) (*gogit.Repository, error) {
	if dir == "" {
		dir = "."
	}
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// CheckGitRepository verifies that dir is inside a Git repository.
func CheckGitRepository(dir string) bool {
	_, err := openRepository(dir)
	return err == nil
}

// GetCurrentBranch returns the current branch name, or the short hash on a detached HEAD.
func GetCurrentBranch(dir string) (string, error) {
	repo, err := openRepository(dir)
	if err != nil {
		return "", err
	}
	headRef, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	if headRef.Name().IsBranch() {
		return headRef.Name().Short(), nil
	}
	return headRef.Hash().String()[:7], nil
}

// ChangedFiles lists tracked paths whose index or worktree state differs
// from HEAD, sorted by path. Untracked files have no diff to pick from and
// are left out.
func ChangedFiles(dir string) ([]FileStatus, error) {
	repo, err := openRepository(dir)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}

	var files []FileStatus
	for path, fs := range status {
		f := FileStatus{Path: path, Staging: fs.Staging, Worktree: fs.Worktree}
		if !f.Staged() && !f.Unstaged() {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// SplitDiff separates git diff output into the file preamble and the body
// starting at the first hunk header. The preamble has no trailing newline.
func SplitDiff(raw string) (header, body string) {
	if strings.HasPrefix(raw, "@@ ") {
		return "", raw
	}
	i := strings.Index(raw, "\n@@ ")
	if i < 0 {
		return strings.TrimSuffix(raw, "\n"), ""
	}
	return raw[:i], raw[i+1:]
}

// ParseFilePath extracts the path from a preamble's "diff --git a/x b/x" line.
func ParseFilePath(header string) string {
	line, _, _ := strings.Cut(header, "\n")
	if !strings.HasPrefix(line, "diff --git ") {
		return ""
	}
	parts := strings.Split(line, " ")
	if len(parts) < 4 {
		return ""
	}
	aPath := strings.TrimPrefix(parts[2], "a/")
	bPath := strings.TrimPrefix(parts[3], "b/")
	if aPath == bPath {
		return aPath
	}
	return bPath
}
