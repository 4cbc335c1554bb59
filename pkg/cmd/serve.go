package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/dataroom/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	a, err := app.NewApp(cmd.Context(), configPath, debug)
	if err != nil {
		return err
	}

	return a.Run()
}

// registerServeCommands 注册服务启动命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
