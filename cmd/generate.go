package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zhubert/aic/config"
	"github.com/zhubert/aic/llm"
	"github.com/zhubert/aic/ui"
	"github.com/zhubert/aic/workflow"
)

// generateFlags holds the flags shared by the root command and the generate
// subcommand.
type generateFlags struct {
	autoAdd    bool
	autoCommit bool
	push       bool
	prompt     string
	apiBase    string
	model      string
}

// addGenerateFlags registers the generate flag set on a command.
func addGenerateFlags(cmd *cobra.Command, flags *generateFlags) {
	cmd.Flags().BoolVarP(&flags.autoAdd, "add", "a", false, "Stage all changes with 'git add .' before generating")
	cmd.Flags().BoolVarP(&flags.autoCommit, "commit", "c", false, "Execute the git commit without asking for confirmation")
	cmd.Flags().BoolVarP(&flags.push, "push", "p", false, "Push to the remote after a successful commit")
	cmd.Flags().StringVar(&flags.prompt, "prompt", "", "Override the system prompt for this run")
	cmd.Flags().StringVar(&flags.apiBase, "api-base", "", "Override the API base URL for this run")
	cmd.Flags().StringVar(&flags.model, "model", "", "Override the model for this run")
}

// newGenerateCmd creates the generate subcommand.
func newGenerateCmd() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a commit message based on staged changes",
		Long: `Analyzes your staged git changes and generates a commit message
using AI. Make sure to stage your changes with 'git add' before
running this command, or pass --add to stage everything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	addGenerateFlags(cmd, flags)
	return cmd
}

// runGenerate resolves configuration, applies flag overrides, and runs the
// commit workflow.
func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flag overrides beat every config layer
	if flags.prompt != "" {
		cfg.SystemPrompt = flags.prompt
	}
	if flags.apiBase != "" {
		cfg.APIBaseURL = flags.apiBase
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}

	token, err := cfg.GetAPIToken()
	if err != nil {
		return err
	}

	wf := workflow.New(workflow.Params{
		Config:    cfg,
		Generator: llm.NewClient(cfg.GetAPIBaseURL(), token, cfg.GetModel()),
		UI:        ui.New(cmd.OutOrStdout()),
	})

	return wf.Run(cmd.Context(), workflow.Options{
		StageAll:   flags.autoAdd,
		AutoCommit: flags.autoCommit,
		Push:       flags.push,
	})
}
