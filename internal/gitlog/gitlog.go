// Package gitlog reads bounded windows of commit metadata from a local git
// repository. It is the only component that touches git; everything else
// consumes the Commit records it produces.
package gitlog

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gpa/internal/errors"
)

// Commit is one commit record: short hash, message, author, committer
// timestamp (with zone), and a lines/files-changed summary.
type Commit struct {
	Hash         string    `json:"sha"`
	Subject      string    `json:"message"`
	Author       string    `json:"author"`
	Time         time.Time `json:"timestamp"`
	LinesChanged int       `json:"lines_changed"`
	FilesChanged int       `json:"files_changed"`
}

// Hour returns the commit's local hour of day.
func (c Commit) Hour() int {
	return c.Time.Hour()
}

// Options bounds a history read.
type Options struct {
	MaxCount int       // 0 means no bound
	Since    time.Time // zero means no lower bound
}

// Reader reads commit history via the git CLI.
type Reader struct {
	repoRoot string
	timeout  time.Duration
}

// NewReader creates a reader for the given repository root.
func NewReader(repoRoot string, timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Reader{repoRoot: repoRoot, timeout: timeout}
}

// ValidateRepoPath checks that path exists and is a git repository.
// Returns typed errors the caller can map onto the precondition taxonomy.
func ValidateRepoPath(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return errors.New(errors.RepoNotFound,
			fmt.Sprintf("repository path does not exist: %s", path), nil)
	}
	// .git may be a directory or, for worktrees, a file.
	if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
		return errors.New(errors.NotGitRepository,
			fmt.Sprintf("not a git repository: %s", path), nil)
	}
	return nil
}

// NormalizeRepoPath resolves a repository path to its absolute, cleaned form.
// Repositories are keyed by this normalized path in the store.
func NormalizeRepoPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(errors.InvalidInput,
			fmt.Sprintf("cannot resolve repository path: %s", path), err)
	}
	return filepath.Clean(abs), nil
}

const commitMarker = "COMMIT:"

// Read returns commits most-recent-first, bounded by opts.
func (r *Reader) Read(ctx context.Context, opts Options) ([]Commit, error) {
	args := []string{
		"log",
		"--shortstat",
		"--no-merges",
		"--format=" + commitMarker + "%h|%an|%cI|%s",
	}
	if opts.MaxCount > 0 {
		args = append(args, "-n", strconv.Itoa(opts.MaxCount))
	}
	if !opts.Since.IsZero() {
		args = append(args, "--since", opts.Since.Format(time.RFC3339))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.repoRoot

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start git: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	commits, parseErr := parseLog(scanner)
	if parseErr != nil {
		_ = cmd.Wait()
		return nil, parseErr
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.Timeout, "git log timed out", err)
		}
		// Git exits non-zero for an empty repository; an empty window is a
		// valid result, not an error.
		if len(commits) == 0 {
			return commits, nil
		}
		return nil, fmt.Errorf("git log failed: %w", err)
	}

	return commits, nil
}

// parseLog consumes the interleaved format/shortstat output of git log.
func parseLog(scanner *bufio.Scanner) ([]Commit, error) {
	var commits []Commit
	var current *Commit

	flush := func() {
		if current != nil {
			commits = append(commits, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, commitMarker) {
			flush()
			c, err := parseCommitLine(strings.TrimPrefix(line, commitMarker))
			if err != nil {
				return nil, err
			}
			current = &c
			continue
		}

		if current != nil && strings.Contains(line, "changed") {
			files, lines := parseShortstat(line)
			current.FilesChanged = files
			current.LinesChanged = lines
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading git output: %w", err)
	}
	return commits, nil
}

func parseCommitLine(line string) (Commit, error) {
	parts := strings.SplitN(line, "|", 4)
	if len(parts) < 4 {
		return Commit{}, fmt.Errorf("malformed commit line: %q", line)
	}
	ts, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return Commit{}, fmt.Errorf("malformed commit timestamp %q: %w", parts[2], err)
	}
	return Commit{
		Hash:    parts[0],
		Author:  parts[1],
		Time:    ts,
		Subject: parts[3],
	}, nil
}

// parseShortstat parses " 3 files changed, 10 insertions(+), 2 deletions(-)".
// Lines changed is insertions plus deletions.
func parseShortstat(line string) (files, lines int) {
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		fields := strings.Fields(part)
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(fields[1], "file"):
			files = n
		case strings.HasPrefix(fields[1], "insertion"), strings.HasPrefix(fields[1], "deletion"):
			lines += n
		}
	}
	return files, lines
}

// Summary describes a repository at a glance for the project-summary tool.
type Summary struct {
	Branch       string         `json:"current_branch"`
	CommitCount  int            `json:"total_commits_scanned"`
	Contributors map[string]int `json:"contributors"`
	Latest       *Commit        `json:"latest_commit,omitempty"`
}

// Summarize reads up to max commits and aggregates contributor counts.
func (r *Reader) Summarize(ctx context.Context, max int) (*Summary, error) {
	commits, err := r.Read(ctx, Options{MaxCount: max})
	if err != nil {
		return nil, err
	}

	s := &Summary{
		CommitCount:  len(commits),
		Contributors: make(map[string]int),
	}
	for _, c := range commits {
		s.Contributors[c.Author]++
	}
	if len(commits) > 0 {
		first := commits[0]
		s.Latest = &first
	}

	branch, err := r.CurrentBranch(ctx)
	if err == nil {
		s.Branch = branch
	}
	return s, nil
}

// CurrentBranch returns the checked-out branch name, or "detached".
func (r *Reader) CurrentBranch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = r.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve branch: %w", err)
	}
	branch := strings.TrimSpace(string(out))
	if branch == "HEAD" {
		return "detached", nil
	}
	return branch, nil
}
