// Package cmd defines the aic command tree.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zhubert/aic/cli"
	"github.com/zhubert/aic/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// NewRootCmd creates the root command. Running aic with no subcommand
// behaves like `aic generate`.
func NewRootCmd() *cobra.Command {
	var verbose bool
	flags := &generateFlags{}

	root := &cobra.Command{
		Use:     "aic",
		Short:   "AI-powered commit message generator",
		Version: version,
		Long: `A CLI tool that uses AI to generate meaningful commit messages
based on your staged git changes.

Stage your changes with 'git add', run aic, and choose whether to
execute the proposed commit, modify it in your editor, or cancel.`,
		Example: `  # Generate a message for staged changes and confirm interactively
  aic

  # Stage everything, commit and push without asking
  aic -a -c -p

  # One-off model override
  aic --model gpt-4o

  # Configure once
  aic config setup --api-token sk-... --model gpt-4o-mini`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetVerbose(verbose)
			return cli.ValidateRequired(cli.DefaultPrerequisites())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mirror debug logs to stderr")
	addGenerateFlags(root, flags)

	root.AddCommand(
		newGenerateCmd(),
		newConfigCmd(),
		newPingCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute() error {
	defer logger.Close()
	return NewRootCmd().Execute()
}
