package git

import (
	aexec "github.com/zhubert/aic/exec"
)

// GitService provides git operations with explicit dependency injection.
// Instead of using a package-level executor variable, each GitService instance
// holds its own executor, enabling proper testing and avoiding global state.
type GitService struct {
	executor aexec.CommandExecutor
}

// NewGitService creates a new GitService with the default real executor.
func NewGitService() *GitService {
	return &GitService{executor: aexec.NewRealExecutor()}
}

// NewGitServiceWithExecutor creates a new GitService with a custom executor.
// This is primarily used for testing where a mock executor is needed.
func NewGitServiceWithExecutor(exec aexec.CommandExecutor) *GitService {
	return &GitService{executor: exec}
}
