package workflow

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/zhubert/aic/config"
	aexec "github.com/zhubert/aic/exec"
	"github.com/zhubert/aic/git"
	"github.com/zhubert/aic/logger"
	"github.com/zhubert/aic/paths"
	"github.com/zhubert/aic/ui"
)

var ctx = context.Background()

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "aic-workflow-test-*")
	if err == nil {
		os.Setenv("HOME", tmp)
		paths.Reset()
		logger.Reset()
	}
	code := m.Run()
	logger.Close()
	if tmp != "" {
		os.RemoveAll(tmp)
	}
	os.Exit(code)
}

// stubGenerator returns a fixed message or error.
type stubGenerator struct {
	message   string
	err       error
	gotSystem string
	gotUser   string
	callCount int
}

func (g *stubGenerator) GenerateCommitMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	g.callCount++
	g.gotSystem = systemPrompt
	g.gotUser = userPrompt
	if g.err != nil {
		return "", g.err
	}
	return g.message, nil
}

// testEnv wires a workflow against a mock executor and captured output.
type testEnv struct {
	mock *aexec.MockExecutor
	gen  *stubGenerator
	out  *bytes.Buffer
	wf   *Workflow
}

// newTestEnv builds a workflow whose git repo has one staged change.
// input is the scripted interactive answer; tty controls the terminal check.
func newTestEnv(t *testing.T, input string, tty bool) *testEnv {
	t.Helper()

	mock := aexec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"rev-parse", "--is-inside-work-tree"}, aexec.MockResponse{
		Stdout: []byte("true\n"),
	})
	mock.AddExactMatch("git", []string{"diff", "--no-ext-diff", "--cached"}, aexec.MockResponse{
		Stdout: []byte("diff --git a/main.go b/main.go\n+added\n"),
	})
	mock.AddExactMatch("git", []string{"diff", "--numstat", "--cached"}, aexec.MockResponse{
		Stdout: []byte("1\t0\tmain.go\n"),
	})
	mock.AddExactMatch("git", []string{"status", "--porcelain"}, aexec.MockResponse{
		Stdout: []byte("M  main.go\n"),
	})
	mock.AddExactMatch("git", []string{"remote", "get-url", "origin"}, aexec.MockResponse{
		Stdout: []byte("git@example.com:user/repo.git\n"),
	})

	gen := &stubGenerator{message: "feat(main): add thing"}
	out := &bytes.Buffer{}

	wf := New(Params{
		Config:     &config.Config{Model: "test-model"},
		Git:        git.NewGitServiceWithExecutor(mock),
		Generator:  gen,
		Executor:   mock,
		UI:         ui.New(out),
		Input:      strings.NewReader(input),
		IsTerminal: func() bool { return tty },
	})

	return &testEnv{mock: mock, gen: gen, out: out, wf: wf}
}

// commitCalls counts recorded git commit invocations.
func (e *testEnv) commitCalls() int {
	count := 0
	for _, call := range e.mock.GetCalls() {
		if call.Name == "git" && len(call.Args) > 0 && call.Args[0] == "commit" {
			count++
		}
	}
	return count
}

// commitMessage returns the message of the first git commit invocation.
func (e *testEnv) commitMessage() string {
	for _, call := range e.mock.GetCalls() {
		if call.Name == "git" && len(call.Args) >= 3 && call.Args[0] == "commit" {
			return call.Args[2]
		}
	}
	return ""
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		input string
		want  decision
	}{
		{"", decisionExecute},
		{"\n", decisionExecute},
		{"y\n", decisionExecute},
		{"Y\n", decisionExecute},
		{"yes\n", decisionExecute},
		{"m\n", decisionModify},
		{"M\n", decisionModify},
		{"modify\n", decisionModify},
		{"n\n", decisionCancel},
		{"no\n", decisionCancel},
		{"x\n", decisionInvalid},
		{"maybe not\n", decisionModify}, // prefix match, as documented
	}
	for _, tt := range tests {
		if got := parseDecision(tt.input); got != tt.want {
			t.Errorf("parseDecision(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRunNotARepository(t *testing.T) {
	mock := aexec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"rev-parse", "--is-inside-work-tree"}, aexec.MockResponse{
		Err: fmt.Errorf("fatal: not a git repository"),
	})
	out := &bytes.Buffer{}
	wf := New(Params{
		Config:    &config.Config{},
		Git:       git.NewGitServiceWithExecutor(mock),
		Generator: &stubGenerator{},
		Executor:  mock,
		UI:        ui.New(out),
	})

	if err := wf.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "git repository") {
		t.Errorf("missing repository warning: %q", out.String())
	}
}

func TestRunNoStagedChanges(t *testing.T) {
	mock := aexec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"rev-parse", "--is-inside-work-tree"}, aexec.MockResponse{
		Stdout: []byte("true\n"),
	})
	mock.AddExactMatch("git", []string{"diff", "--no-ext-diff", "--cached"}, aexec.MockResponse{})

	gen := &stubGenerator{message: "unused"}
	out := &bytes.Buffer{}
	wf := New(Params{
		Config:    &config.Config{},
		Git:       git.NewGitServiceWithExecutor(mock),
		Generator: gen,
		Executor:  mock,
		UI:        ui.New(out),
	})

	if err := wf.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "No staged changes") {
		t.Errorf("missing short-circuit warning: %q", out.String())
	}
	if gen.callCount != 0 {
		t.Error("generator should not be called without staged changes")
	}
}

func TestRunAutoCommit(t *testing.T) {
	env := newTestEnv(t, "", false) // no TTY needed with AutoCommit

	if err := env.wf.Run(ctx, Options{AutoCommit: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.commitCalls() != 1 {
		t.Errorf("commit called %d times, want 1", env.commitCalls())
	}
	if env.commitMessage() != "feat(main): add thing" {
		t.Errorf("commit message = %q", env.commitMessage())
	}
	if !strings.Contains(env.out.String(), "Commit created successfully") {
		t.Errorf("missing success line: %q", env.out.String())
	}
}

func TestRunStageAll(t *testing.T) {
	env := newTestEnv(t, "", false)

	if err := env.wf.Run(ctx, Options{StageAll: true, AutoCommit: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	calls := env.mock.GetCalls()
	var addIdx, diffIdx = -1, -1
	for i, call := range calls {
		if call.Name != "git" || len(call.Args) == 0 {
			continue
		}
		if call.Args[0] == "add" && addIdx == -1 {
			addIdx = i
		}
		if call.Args[0] == "diff" && diffIdx == -1 {
			diffIdx = i
		}
	}
	if addIdx == -1 {
		t.Fatal("git add was never called")
	}
	if diffIdx != -1 && addIdx > diffIdx {
		t.Error("git add must run before the diff is collected")
	}
}

func TestRunShowsStagedFiles(t *testing.T) {
	env := newTestEnv(t, "", false)

	if err := env.wf.Run(ctx, Options{AutoCommit: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(env.out.String(), "main.go") {
		t.Errorf("staged file list missing from output: %q", env.out.String())
	}
}

func TestRunPromptAssembly(t *testing.T) {
	env := newTestEnv(t, "", false)

	cfg := &config.Config{
		SystemPrompt: "custom system",
		UserPrompt:   "changes: {}",
	}
	wf := New(Params{
		Config:    cfg,
		Git:       git.NewGitServiceWithExecutor(env.mock),
		Generator: env.gen,
		Executor:  env.mock,
		UI:        ui.New(env.out),
	})

	if err := wf.Run(ctx, Options{AutoCommit: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.gen.gotSystem != "custom system" {
		t.Errorf("system prompt = %q", env.gen.gotSystem)
	}
	if !strings.HasPrefix(env.gen.gotUser, "changes: diff --git") {
		t.Errorf("user prompt = %q, diff not substituted", env.gen.gotUser)
	}
}

func TestRunInteractiveYes(t *testing.T) {
	env := newTestEnv(t, "y\n", true)

	if err := env.wf.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.commitCalls() != 1 {
		t.Errorf("commit called %d times, want 1", env.commitCalls())
	}
}

func TestRunInteractiveDefaultIsYes(t *testing.T) {
	env := newTestEnv(t, "\n", true)

	if err := env.wf.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.commitCalls() != 1 {
		t.Errorf("commit called %d times, want 1", env.commitCalls())
	}
}

func TestRunInteractiveNo(t *testing.T) {
	env := newTestEnv(t, "n\n", true)

	if err := env.wf.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.commitCalls() != 0 {
		t.Error("commit should not run after 'n'")
	}
	if !strings.Contains(env.out.String(), "Command not executed") {
		t.Errorf("missing cancel message: %q", env.out.String())
	}
}

func TestRunInteractiveInvalid(t *testing.T) {
	env := newTestEnv(t, "x\n", true)

	if err := env.wf.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.commitCalls() != 0 {
		t.Error("commit should not run after invalid input")
	}
	if !strings.Contains(env.out.String(), "Invalid option") {
		t.Errorf("missing invalid-option warning: %q", env.out.String())
	}
}

func TestRunInteractiveModify(t *testing.T) {
	env := newTestEnv(t, "m\n", true)
	t.Setenv("EDITOR", "fakeedit")

	// The "editor" rewrites the temp file it is handed
	env.mock.AddPrefixMatch("fakeedit", nil, aexec.MockResponse{
		Action: func(dir, name string, args []string) {
			os.WriteFile(args[0], []byte("fix: edited message\n"), 0600)
		},
	})

	if err := env.wf.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.commitCalls() != 1 {
		t.Fatalf("commit called %d times, want 1", env.commitCalls())
	}
	if env.commitMessage() != "fix: edited message" {
		t.Errorf("commit message = %q, want the edited one", env.commitMessage())
	}
}

func TestRunInteractiveModifyEditorFails(t *testing.T) {
	env := newTestEnv(t, "m\n", true)
	t.Setenv("EDITOR", "fakeedit")

	env.mock.AddPrefixMatch("fakeedit", nil, aexec.MockResponse{
		Err: fmt.Errorf("exit status 1"),
	})

	if err := env.wf.Run(ctx, Options{}); err == nil {
		t.Error("Run should fail when the editor fails")
	}
	if env.commitCalls() != 0 {
		t.Error("commit should not run after an editor failure")
	}
}

func TestRunNonInteractiveInput(t *testing.T) {
	env := newTestEnv(t, "", false)

	if err := env.wf.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.commitCalls() != 0 {
		t.Error("commit should not run when stdin is not a terminal")
	}
	if !strings.Contains(env.out.String(), "Non-interactive") {
		t.Errorf("missing non-interactive notice: %q", env.out.String())
	}
}

func TestRunGeneratorError(t *testing.T) {
	env := newTestEnv(t, "", true)
	env.gen.err = fmt.Errorf("API request failed (401): Unauthorized")

	if err := env.wf.Run(ctx, Options{}); err == nil {
		t.Error("Run should propagate generator errors")
	}
	if env.commitCalls() != 0 {
		t.Error("commit should not run after a generation failure")
	}
}

func TestRunCommitFailure(t *testing.T) {
	env := newTestEnv(t, "", false)
	env.mock.AddPrefixMatch("git", []string{"commit"}, aexec.MockResponse{
		Err: fmt.Errorf("exit status 1"),
	})

	if err := env.wf.Run(ctx, Options{AutoCommit: true}); err == nil {
		t.Error("Run should surface commit failure")
	}
	if !strings.Contains(env.out.String(), "commit command failed") {
		t.Errorf("missing failure message: %q", env.out.String())
	}
}

func TestRunPush(t *testing.T) {
	env := newTestEnv(t, "", false)

	if err := env.wf.Run(ctx, Options{AutoCommit: true, Push: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	pushed := false
	for _, call := range env.mock.GetCalls() {
		if call.Name == "git" && len(call.Args) == 1 && call.Args[0] == "push" {
			pushed = true
		}
	}
	if !pushed {
		t.Error("git push was never called")
	}
	if !strings.Contains(env.out.String(), "pushed successfully") {
		t.Errorf("missing push success line: %q", env.out.String())
	}
}

func TestRunPushFailure(t *testing.T) {
	env := newTestEnv(t, "", false)
	env.mock.AddExactMatch("git", []string{"push"}, aexec.MockResponse{
		Stderr: []byte("error: failed to push"),
		Err:    fmt.Errorf("exit status 1"),
	})

	if err := env.wf.Run(ctx, Options{AutoCommit: true, Push: true}); err == nil {
		t.Error("Run should surface push failure")
	}
}

func TestRunPushSkippedWithoutRemote(t *testing.T) {
	mock := aexec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"rev-parse", "--is-inside-work-tree"}, aexec.MockResponse{
		Stdout: []byte("true\n"),
	})
	mock.AddExactMatch("git", []string{"diff", "--no-ext-diff", "--cached"}, aexec.MockResponse{
		Stdout: []byte("diff --git a/main.go b/main.go\n+added\n"),
	})
	mock.AddExactMatch("git", []string{"remote", "get-url", "origin"}, aexec.MockResponse{
		Err: fmt.Errorf("fatal: No such remote 'origin'"),
	})

	out := &bytes.Buffer{}
	wf := New(Params{
		Config:    &config.Config{},
		Git:       git.NewGitServiceWithExecutor(mock),
		Generator: &stubGenerator{message: "chore: update"},
		Executor:  mock,
		UI:        ui.New(out),
	})

	if err := wf.Run(ctx, Options{AutoCommit: true, Push: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, call := range mock.GetCalls() {
		if call.Name == "git" && len(call.Args) == 1 && call.Args[0] == "push" {
			t.Error("git push should not run without an origin remote")
		}
	}
	if !strings.Contains(out.String(), "skipping push") {
		t.Errorf("missing skip warning: %q", out.String())
	}
}

func TestRunNoPushWithoutFlag(t *testing.T) {
	env := newTestEnv(t, "", false)

	if err := env.wf.Run(ctx, Options{AutoCommit: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, call := range env.mock.GetCalls() {
		if call.Name == "git" && len(call.Args) == 1 && call.Args[0] == "push" {
			t.Error("git push should not run without the push option")
		}
	}
}

func TestResolveEditorFromEnv(t *testing.T) {
	t.Setenv("EDITOR", "my-editor")
	if got := ResolveEditor(); got != "my-editor" {
		t.Errorf("ResolveEditor = %q, want my-editor", got)
	}
}

func TestResolveEditorFallbackOrder(t *testing.T) {
	t.Setenv("EDITOR", "")
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(name string) (string, error) {
		if name == "vi" {
			return "/usr/bin/vi", nil
		}
		return "", fmt.Errorf("not found")
	}
	if got := ResolveEditor(); got != "vi" {
		t.Errorf("ResolveEditor = %q, want vi", got)
	}

	lookPath = func(name string) (string, error) {
		return "", fmt.Errorf("not found")
	}
	if got := ResolveEditor(); got != "nano" {
		t.Errorf("ResolveEditor = %q, want nano fallback", got)
	}
}
