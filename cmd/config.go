package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zhubert/aic/config"
	"github.com/zhubert/aic/paths"
	"github.com/zhubert/aic/ui"
)

// newConfigCmd creates the config subcommand tree.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage aic's configuration.

Settings are layered: the global config file, then a project-level
.aic.yaml found between the working directory and the repository
root, then the AIC_API_TOKEN environment variable. 'get' and 'list'
show the resolved view; 'set' and 'setup' write the global file.`,
	}

	cmd.AddCommand(
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigSetupCmd(),
		newConfigListCmd(),
	)
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  fmt.Sprintf("Get a resolved configuration value. Valid keys: %v", config.Keys()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			key := args[0]
			out := ui.New(cmd.OutOrStdout())
			if value, ok := cfg.Get(key); ok {
				if key == "api_token" {
					value = ui.MaskToken(value)
				}
				out.Printf("%s: %s\n", key, value)
			} else {
				out.Printf("%s: <not set>\n", key)
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Set a configuration value (omit value to unset)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGlobal()
			if err != nil {
				return err
			}

			key := args[0]
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			if err := cfg.Set(key, value); err != nil {
				return err
			}

			out := ui.New(cmd.OutOrStdout())
			if value == "" {
				out.Success("✓ Unset %s", key)
			} else if key == "api_token" {
				out.Success("✓ Set %s to: %s", key, ui.MaskToken(value))
			} else {
				out.Success("✓ Set %s to: %s", key, value)
			}
			return nil
		},
	}
}

func newConfigSetupCmd() *cobra.Command {
	var (
		apiToken     string
		apiBaseURL   string
		model        string
		systemPrompt string
		userPrompt   string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Set multiple configuration values at once for quick setup",
		Example: `  aic config setup --api-token sk-... --api-base-url https://api.openai.com
  aic config setup --model gpt-4o --api-base-url https://api.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGlobal()
			if err != nil {
				return err
			}

			out := ui.New(cmd.OutOrStdout())
			out.Info("⚙️  Updating configuration...")

			changes := 0
			apply := func(key, value string) error {
				if value == "" {
					return nil
				}
				if err := cfg.Set(key, value); err != nil {
					return err
				}
				display := value
				if key == "api_token" {
					display = ui.MaskToken(value)
				}
				out.Success("✓ Set %s to: %s", key, display)
				changes++
				return nil
			}

			for _, kv := range []struct{ key, value string }{
				{"api_token", apiToken},
				{"api_base_url", apiBaseURL},
				{"model", model},
				{"system_prompt", systemPrompt},
				{"user_prompt", userPrompt},
			} {
				if err := apply(kv.key, kv.value); err != nil {
					return err
				}
			}

			if changes == 0 {
				out.Warn("⚠️  No configuration values were provided to set.")
				out.Info("Usage examples:")
				out.Printf("  aic config setup --api-token <TOKEN> --api-base-url <URL>\n")
				out.Printf("  aic config setup --model gpt-4o --api-base-url https://api.openai.com\n")
				return nil
			}

			out.Success("🎉 Configuration updated successfully!")
			return nil
		},
	}

	cmd.Flags().StringVar(&apiToken, "api-token", "", "API token for authentication")
	cmd.Flags().StringVar(&apiBaseURL, "api-base-url", "", "Base URL for the OpenAI-compatible API")
	cmd.Flags().StringVar(&model, "model", "", "Model to use for generating commit messages")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "System prompt for commit message generation")
	cmd.Flags().StringVar(&userPrompt, "user-prompt", "", "User prompt template ({} is replaced with the diff)")

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			out := ui.New(cmd.OutOrStdout())
			out.Success("⚙️  Current Configuration:")
			out.ConfigTable(cfg)

			out.Info("\n📁 Configuration file location:")
			if path, err := paths.ConfigFilePath(); err == nil {
				out.Printf("   %s\n", path)
			} else {
				out.Printf("   <unknown>\n")
			}
			return nil
		},
	}
}
