package workflow

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/zhubert/aic/logger"
)

// lookPath is swappable in tests.
var lookPath = exec.LookPath

// ResolveEditor picks the editor for modifying a commit message: $EDITOR if
// set, otherwise the first of vim/vi found on PATH, otherwise nano.
func ResolveEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	for _, candidate := range []string{"vim", "vi"} {
		if _, err := lookPath(candidate); err == nil {
			return candidate
		}
	}
	return "nano"
}

// editMessage writes the message to a temp file, opens the editor on it, and
// returns the edited content.
func (w *Workflow) editMessage(ctx context.Context, message string) (string, error) {
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("aic-commit-%s.txt", uuid.NewString()))
	if err := os.WriteFile(tmpPath, []byte(message), 0600); err != nil {
		return "", fmt.Errorf("failed to create temp file for editing: %w", err)
	}
	defer os.Remove(tmpPath)

	editor := ResolveEditor()
	logger.WithComponent("workflow").Debug("opening editor", "editor", editor, "file", tmpPath)
	w.ui.Info("✏️  Opening %s to edit commit message...", editor)

	if err := w.executor.Interactive(ctx, "", editor, tmpPath); err != nil {
		return "", fmt.Errorf("editor (%s) failed: %w", editor, err)
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to read modified commit message: %w", err)
	}

	result := strings.TrimSpace(string(edited))
	if result == "" {
		return "", fmt.Errorf("commit message is empty after editing")
	}
	return result, nil
}
