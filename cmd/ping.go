package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zhubert/aic/config"
	"github.com/zhubert/aic/llm"
	"github.com/zhubert/aic/ui"
)

// newPingCmd creates the ping command, which sends a minimal request to the
// configured API to verify connectivity and credentials.
func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test connectivity to the configured API endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			token, err := cfg.GetAPIToken()
			if err != nil {
				return err
			}

			out := ui.New(cmd.OutOrStdout())
			baseURL := cfg.GetAPIBaseURL()
			out.Info("🏓 Pinging %s...", baseURL)

			client := llm.NewClient(baseURL, token, cfg.GetModel())
			if err := client.Ping(cmd.Context()); err != nil {
				out.Error("✗ Ping failed")
				return err
			}

			out.Success("✓ API endpoint is reachable and credentials are valid")
			return nil
		},
	}
}
