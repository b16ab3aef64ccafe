package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhubert/aic/logger"
)

// StageAll stages every change in the working tree (git add .).
func (s *GitService) StageAll(ctx context.Context, dir string) error {
	logger.WithComponent("git").Info("staging all changes", "dir", dir)

	if output, err := s.executor.CombinedOutput(ctx, dir, "git", "add", "."); err != nil {
		return fmt.Errorf("git add failed: %s - %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Commit creates a commit from the staged changes. The command runs attached
// to the terminal so that hook output and GPG prompts reach the user.
func (s *GitService) Commit(ctx context.Context, dir, message string) error {
	log := logger.WithComponent("git")
	log.Info("committing staged changes", "dir", dir, "title", strings.Split(message, "\n")[0])

	if err := s.executor.Interactive(ctx, dir, "git", "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit failed: %w", err)
	}
	return nil
}

// HasRemoteOrigin reports whether the repository has an origin remote.
func (s *GitService) HasRemoteOrigin(ctx context.Context, dir string) bool {
	_, err := s.executor.Output(ctx, dir, "git", "remote", "get-url", "origin")
	return err == nil
}

// Push pushes the current branch to the remote.
func (s *GitService) Push(ctx context.Context, dir string) error {
	logger.WithComponent("git").Info("pushing to remote", "dir", dir)

	if output, err := s.executor.CombinedOutput(ctx, dir, "git", "push"); err != nil {
		return fmt.Errorf("git push failed: %s - %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}
