package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhubert/aic/logger"
)

// MaxDiffSize is the maximum number of bytes of diff sent to the model.
// Large diffs slow down message generation and rarely improve the result;
// 50KB captures meaningful changes while staying responsive.
const MaxDiffSize = 50000

// TruncationMarker is appended when a diff is cut at MaxDiffSize.
const TruncationMarker = "\n... (diff truncated)"

// StagedStatus represents the staged changes in a repository.
type StagedStatus struct {
	HasChanges bool
	Summary    string   // Short summary like "3 files staged"
	Files      []string // List of staged files
}

// DiffStats represents the statistics of staged changes.
type DiffStats struct {
	FilesChanged int
	Additions    int
	Deletions    int
}

// IsRepository reports whether dir is inside a git working tree.
func (s *GitService) IsRepository(ctx context.Context, dir string) bool {
	out, err := s.executor.Output(ctx, dir, "git", "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}

// GetStagedStatus returns the list of files staged for the next commit.
func (s *GitService) GetStagedStatus(ctx context.Context, dir string) (*StagedStatus, error) {
	status := &StagedStatus{}

	output, err := s.executor.Output(ctx, dir, "git", "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}

	// Leading space is significant in porcelain format: column one is the
	// index status, column two the worktree status. Only index entries count.
	lines := strings.Split(strings.TrimRight(string(output), "\n\r\t "), "\n")
	for _, line := range lines {
		if len(line) < 4 {
			continue
		}
		indexStatus := line[0]
		if indexStatus == ' ' || indexStatus == '?' {
			continue
		}
		status.Files = append(status.Files, strings.TrimSpace(line[3:]))
	}

	status.HasChanges = len(status.Files) > 0
	switch len(status.Files) {
	case 0:
		status.Summary = "No staged changes"
	case 1:
		status.Summary = "1 file staged"
	default:
		status.Summary = fmt.Sprintf("%d files staged", len(status.Files))
	}

	return status, nil
}

// GetStagedDiff returns the diff of staged changes, truncated at MaxDiffSize.
// An empty string means there is nothing staged.
func (s *GitService) GetStagedDiff(ctx context.Context, dir string) (string, error) {
	// --no-ext-diff ensures output goes to stdout even if an external diff
	// tool is configured
	output, err := s.executor.Output(ctx, dir, "git", "diff", "--no-ext-diff", "--cached")
	if err != nil {
		return "", fmt.Errorf("git diff --cached failed: %w", err)
	}

	diff := string(output)
	if len(diff) > MaxDiffSize {
		logger.WithComponent("git").Debug("truncating diff", "bytes", len(diff), "max", MaxDiffSize)
		diff = diff[:MaxDiffSize] + TruncationMarker
	}
	return diff, nil
}

// GetStagedStats returns files changed and line counts for staged changes.
func (s *GitService) GetStagedStats(ctx context.Context, dir string) (*DiffStats, error) {
	stats := &DiffStats{}

	output, err := s.executor.Output(ctx, dir, "git", "diff", "--numstat", "--cached")
	if err != nil {
		return nil, fmt.Errorf("git diff --numstat failed: %w", err)
	}

	// Each line is "additions<tab>deletions<tab>filename".
	// Binary files show "-" for both counts.
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			continue
		}
		stats.FilesChanged++
		if parts[0] != "-" {
			var add int
			fmt.Sscanf(parts[0], "%d", &add)
			stats.Additions += add
		}
		if parts[1] != "-" {
			var del int
			fmt.Sscanf(parts[1], "%d", &del)
			stats.Deletions += del
		}
	}

	return stats, nil
}
