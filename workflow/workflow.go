// Package workflow implements the commit workflow: collect the staged diff,
// generate a message, ask the user what to do with it (execute, modify in an
// editor, or cancel), and run the resulting commit and optional push.
package workflow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/zhubert/aic/config"
	aexec "github.com/zhubert/aic/exec"
	"github.com/zhubert/aic/git"
	"github.com/zhubert/aic/logger"
	"github.com/zhubert/aic/ui"
)

// Generator produces a commit message from a system/user prompt pair.
// *llm.Client satisfies this.
type Generator interface {
	GenerateCommitMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options controls a single workflow run.
type Options struct {
	Dir        string // repository directory; empty means the working directory
	StageAll   bool   // run git add . before collecting the diff
	AutoCommit bool   // commit without asking
	Push       bool   // push after a successful commit
}

// Params bundles the workflow's collaborators.
type Params struct {
	Config     *config.Config
	Git        *git.GitService
	Generator  Generator
	Executor   aexec.CommandExecutor // used for the external editor
	UI         *ui.UI
	Input      io.Reader   // interactive input; defaults to os.Stdin
	IsTerminal func() bool // defaults to a TTY check on stdin
}

// Workflow runs the generate-confirm-commit sequence.
type Workflow struct {
	cfg        *config.Config
	git        *git.GitService
	gen        Generator
	executor   aexec.CommandExecutor
	ui         *ui.UI
	input      io.Reader
	isTerminal func() bool
}

// New creates a Workflow, filling in defaults for unset params.
func New(p Params) *Workflow {
	if p.Executor == nil {
		p.Executor = aexec.NewRealExecutor()
	}
	if p.Git == nil {
		p.Git = git.NewGitServiceWithExecutor(p.Executor)
	}
	if p.UI == nil {
		p.UI = ui.New(os.Stdout)
	}
	if p.Input == nil {
		p.Input = os.Stdin
	}
	if p.IsTerminal == nil {
		p.IsTerminal = func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		}
	}
	return &Workflow{
		cfg:        p.Config,
		git:        p.Git,
		gen:        p.Generator,
		executor:   p.Executor,
		ui:         p.UI,
		input:      p.Input,
		isTerminal: p.IsTerminal,
	}
}

// decision is what the user chose to do with the proposed commit.
type decision int

const (
	decisionExecute decision = iota
	decisionModify
	decisionCancel
	decisionInvalid
)

// parseDecision maps interactive input onto a decision. Empty input and
// anything starting with y execute; m modifies; n cancels explicitly;
// everything else is invalid and treated as a cancel with a warning.
func parseDecision(input string) decision {
	input = strings.ToLower(strings.TrimSpace(input))
	switch {
	case input == "" || strings.HasPrefix(input, "y"):
		return decisionExecute
	case strings.HasPrefix(input, "m"):
		return decisionModify
	case strings.HasPrefix(input, "n"):
		return decisionCancel
	default:
		return decisionInvalid
	}
}

// Run executes the workflow.
func (w *Workflow) Run(ctx context.Context, opts Options) error {
	log := logger.WithComponent("workflow")

	w.ui.Header()

	if !w.git.IsRepository(ctx, opts.Dir) {
		w.ui.Warn("⚠️  Make sure git is installed and you're in a git repository.")
		return nil
	}

	if opts.StageAll {
		w.ui.Info("➕ Staging all changes...")
		if err := w.git.StageAll(ctx, opts.Dir); err != nil {
			return err
		}
	}

	w.ui.Info("🔍 Analyzing staged changes...")

	diff, err := w.git.GetStagedDiff(ctx, opts.Dir)
	if err != nil {
		return fmt.Errorf("failed to get git diff: %w", err)
	}
	if diff == "" {
		w.ui.Warn("⚠️  No staged changes detected in the git repository.")
		w.ui.Warn("   Please add your changes with 'git add' first.")
		return nil
	}

	if stats, err := w.git.GetStagedStats(ctx, opts.Dir); err == nil && stats.FilesChanged > 0 {
		w.ui.Info("📊 %d file(s) staged, +%d -%d", stats.FilesChanged, stats.Additions, stats.Deletions)
	} else if err != nil {
		log.Debug("staged stats unavailable", "error", err)
	}

	if status, err := w.git.GetStagedStatus(ctx, opts.Dir); err == nil && status.HasChanges {
		w.ui.Dim("   %s", strings.Join(status.Files, ", "))
	}

	w.ui.Info("🤖 Using model: %s", w.cfg.GetModel())
	w.ui.Info("✨ Generating commit message...")

	message, err := w.gen.GenerateCommitMessage(ctx, w.cfg.GetSystemPrompt(), BuildUserPrompt(w.cfg.GetUserPrompt(), diff))
	if err != nil {
		return err
	}
	log.Info("commit message generated", "title", strings.Split(message, "\n")[0])

	w.ui.CommitCommand(message)

	if opts.AutoCommit {
		return w.executeCommit(ctx, opts, message)
	}

	if !w.isTerminal() {
		w.ui.Dim("Non-interactive input; commit not executed.")
		return nil
	}

	w.ui.Printf("\n")
	w.ui.Prompt("Execute this commit? [Y/m/n]: ")

	line, err := w.readLine()
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	switch parseDecision(line) {
	case decisionExecute:
		return w.executeCommit(ctx, opts, message)
	case decisionModify:
		modified, err := w.editMessage(ctx, message)
		if err != nil {
			return err
		}
		w.ui.Info("🚀 Executing git commit with modified message...")
		return w.executeCommit(ctx, opts, modified)
	case decisionCancel:
		w.ui.Info("📝 Command not executed.")
		w.ui.Dim("You can copy and modify the command above.")
		return nil
	default:
		w.ui.Warn("⚠️  Invalid option. Command not executed.")
		w.ui.Dim("You can copy and modify the command above.")
		return nil
	}
}

// readLine reads one line of interactive input. EOF with no data counts as
// an empty answer.
func (w *Workflow) readLine() (string, error) {
	line, err := bufio.NewReader(w.input).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return line, nil
}

// executeCommit runs the commit and, when requested, the push.
func (w *Workflow) executeCommit(ctx context.Context, opts Options, message string) error {
	w.ui.Info("🚀 Executing git commit...")

	if err := w.git.Commit(ctx, opts.Dir, message); err != nil {
		w.ui.Error("❌ Git commit command failed.")
		return err
	}
	w.ui.Success("🎉 Commit created successfully!")

	if !opts.Push {
		return nil
	}

	if !w.git.HasRemoteOrigin(ctx, opts.Dir) {
		w.ui.Warn("⚠️  No 'origin' remote configured; skipping push.")
		return nil
	}

	w.ui.Info("▶ Running 'git push'...")
	if err := w.git.Push(ctx, opts.Dir); err != nil {
		w.ui.Error("⚠️  Failed to push changes.")
		return err
	}
	w.ui.Success("✔ Changes pushed successfully.")
	return nil
}
