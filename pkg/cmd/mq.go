package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/dataroom/pkg/app"
	mq "github.com/yeisme/dataroom/pkg/internal/storage/mq"
	"github.com/yeisme/dataroom/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list all registered mq types",
		Aliases: []string{"list"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered mq types:")

			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+string(t))
			}
		},
	}

	mqTopicsCmd = &cobra.Command{
		Use:   "topics",
		Short: "list domain event topics and whether the current config publishes them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Bootstrap(configPath, debug)
			if err != nil {
				return err
			}

			states := queue.TopicStates(cfg.Events)

			for _, topic := range queue.AllTopics() {
				state := "off"
				if cfg.MQ.Enabled && states[topic] {
					state = "on"
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", topic, state)
			}

			return nil
		},
	}
)

// registerMQCommands 注册 MQ 相关命令.
func registerMQCommands() {
	mqCmd.AddCommand(mqListCmd, mqTopicsCmd)
	rootCmd.AddCommand(mqCmd)
}
