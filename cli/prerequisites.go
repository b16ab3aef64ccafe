// Package cli provides utilities for CLI tool management and validation.
package cli

import (
	"fmt"
	"os/exec"
	"strings"
)

// Prerequisite represents a required CLI tool.
type Prerequisite struct {
	Name        string // Command name (e.g., "git")
	Required    bool   // Whether the tool is required to run the app
	Description string // Human-readable description
	InstallURL  string // URL for installation instructions
}

// DefaultPrerequisites returns the list of CLI tools needed by aic.
func DefaultPrerequisites() []Prerequisite {
	return []Prerequisite{
		{
			Name:        "git",
			Required:    true,
			Description: "Git version control",
			InstallURL:  "https://git-scm.com/downloads",
		},
		{
			Name:        "vim",
			Required:    false, // Only needed for the modify-in-editor option
			Description: "Editor for modifying commit messages (optional)",
			InstallURL:  "https://www.vim.org",
		},
	}
}

// CheckResult contains the result of checking a prerequisite.
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Path         string // Path to the executable if found
	Version      string // Version string if available
	Error        error
}

// Check verifies that a CLI tool is available in PATH.
func Check(prereq Prerequisite) CheckResult {
	result := CheckResult{Prerequisite: prereq}

	path, err := exec.LookPath(prereq.Name)
	if err != nil {
		result.Error = fmt.Errorf("%s not found in PATH", prereq.Name)
		return result
	}

	result.Found = true
	result.Path = path
	result.Version = getVersion(prereq.Name)

	return result
}

// CheckAll verifies all prerequisites and returns results.
func CheckAll(prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, prereq := range prereqs {
		results[i] = Check(prereq)
	}
	return results
}

// ValidateRequired checks that all required prerequisites are met.
// Returns nil if all required tools are found, otherwise an error carrying
// the full check report and install hints.
func ValidateRequired(prereqs []Prerequisite) error {
	results := CheckAll(prereqs)

	var missing []string
	for _, result := range results {
		if result.Found || !result.Prerequisite.Required {
			continue
		}
		missing = append(missing, fmt.Sprintf("  - %s (%s)\n    Install: %s",
			result.Prerequisite.Name, result.Prerequisite.Description, result.Prerequisite.InstallURL))
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required CLI tools:\n%s\n\n%s",
			strings.Join(missing, "\n"), FormatCheckResults(results))
	}

	return nil
}

// getVersion attempts to get the version of a CLI tool.
func getVersion(name string) string {
	cmd := exec.Command(name, "--version")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	version := strings.TrimSpace(lines[0])
	if len(version) > 100 {
		version = version[:100] + "..."
	}
	return version
}

// FormatCheckResults formats check results for display.
func FormatCheckResults(results []CheckResult) string {
	var sb strings.Builder

	sb.WriteString("CLI Prerequisites:\n")
	for _, r := range results {
		status := "✓"
		if !r.Found {
			if r.Prerequisite.Required {
				status = "✗"
			} else {
				status = "○"
			}
		}

		sb.WriteString(fmt.Sprintf("  %s %s", status, r.Prerequisite.Name))
		if r.Found && r.Version != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", r.Version))
		} else if !r.Found {
			if r.Prerequisite.Required {
				sb.WriteString(" [REQUIRED]")
			} else {
				sb.WriteString(" [optional]")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
