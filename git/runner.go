// Package git provides read-only access to diffs via the git command.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.GitRunner = (*Runner)(nil)

// Runner executes git commands via shell. Untracked files under the
// requested paths are diffed against /dev/null so freshly generated files
// show up as additions without touching the index.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Diff returns the unified diff between base and the working tree.
func (r *Runner) Diff(ctx context.Context, repoPath, base string, paths ...string) (string, error) {
	var sb strings.Builder

	out, err := r.run(ctx, repoPath, diffArgs(base, paths, "--no-color", "--no-ext-diff")...)
	if err != nil {
		return "", err
	}
	sb.WriteString(out)

	untracked, err := r.untracked(ctx, repoPath, paths)
	if err != nil {
		return "", err
	}
	for _, p := range untracked {
		out, err := r.runNoIndex(ctx, repoPath, "--no-color", "--no-ext-diff", "/dev/null", p)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// ShortStat returns a git-style "N files changed, M insertions(+),
// K deletions(-)" line covering the same files as Diff.
func (r *Runner) ShortStat(ctx context.Context, repoPath, base string, paths ...string) (string, error) {
	out, err := r.run(ctx, repoPath, diffArgs(base, paths, "--numstat")...)
	if err != nil {
		return "", err
	}
	var files, ins, del int
	addNumstat(out, &files, &ins, &del)

	untracked, err := r.untracked(ctx, repoPath, paths)
	if err != nil {
		return "", err
	}
	for _, p := range untracked {
		out, err := r.runNoIndex(ctx, repoPath, "--numstat", "/dev/null", p)
		if err != nil {
			return "", err
		}
		addNumstat(out, &files, &ins, &del)
	}
	return formatShortStat(files, ins, del), nil
}

func diffArgs(base string, paths []string, flags ...string) []string {
	args := append([]string{"diff"}, flags...)
	if base != "" {
		args = append(args, base)
	}
	args = append(args, "--")
	return append(args, paths...)
}

func (r *Runner) untracked(ctx context.Context, repoPath string, paths []string) ([]string, error) {
	args := append([]string{"ls-files", "--others", "--exclude-standard", "--"}, paths...)
	out, err := r.run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

func (r *Runner) run(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", repoPath}, args...)...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s failed: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return string(output), nil
}

// runNoIndex runs "git diff --no-index", which exits 1 when the inputs differ.
func (r *Runner) runNoIndex(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", repoPath, "diff", "--no-index"}, args...)...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return string(output), nil
		}
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git diff --no-index failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git diff --no-index failed: %w", err)
	}
	return string(output), nil
}

// addNumstat accumulates "added<TAB>deleted<TAB>path" lines. Binary files
// report "-" and count as changed files only.
func addNumstat(out string, files, ins, del *int) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 3 {
			continue
		}
		*files++
		if n, err := strconv.Atoi(fields[0]); err == nil {
			*ins += n
		}
		if n, err := strconv.Atoi(fields[1]); err == nil {
			*del += n
		}
	}
}

func formatShortStat(files, ins, del int) string {
	if files == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(" %d %s changed", files, plural(files, "file", "files")))
	if ins > 0 || del == 0 {
		sb.WriteString(fmt.Sprintf(", %d %s(+)", ins, plural(ins, "insertion", "insertions")))
	}
	if del > 0 || ins == 0 {
		sb.WriteString(fmt.Sprintf(", %d %s(-)", del, plural(del, "deletion", "deletions")))
	}
	sb.WriteString("\n")
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
