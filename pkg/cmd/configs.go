package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/dataroom/pkg/app"
	"github.com/yeisme/dataroom/pkg/configs"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "inspect and validate configuration",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.Bootstrap(configPath, debug)
			return err
		},
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the config file in use",
		Run: func(cmd *cobra.Command, args []string) {
			used := ""
			if v := configs.GetViper(); v != nil {
				used = v.ConfigFileUsed()
			}

			if used == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file found, using defaults and DATAROOM_* environment variables")
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), used)
		},
	}

	configShowCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the effective config as JSON with secrets hidden",
		Aliases: []string{"debug"},
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := sonic.ConfigStd.MarshalIndent(configs.GetConfig().Redacted(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "check the config against validation rules and deployment warnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Auth.UsesDefaultSecret() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: auth.jwt_secret is the development default")
			}

			if cfg.S3.Driver == configs.S3DriverMemory {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: s3.driver is memory, uploaded files are lost on restart")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "config ok")

			return nil
		},
	}
)

// registerConfigsCommands 注册配置相关命令.
func registerConfigsCommands() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
