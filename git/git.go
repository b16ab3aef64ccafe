// Package git wraps the git binary for the commit workflow.
//
// The package is organized into focused modules:
//   - service.go: GitService struct and constructor
//   - status.go: Repository detection, staged status, staged diff and stats
//   - commit.go: Staging, commit and push operations
package git
