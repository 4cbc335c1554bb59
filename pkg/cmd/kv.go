package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yeisme/dataroom/pkg/app"
	"github.com/yeisme/dataroom/pkg/cache"
	kv "github.com/yeisme/dataroom/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Key-Value store related commands",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list all registered kv types",
		Aliases: []string{"list"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")

			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+string(t))
			}
		},
	}

	kvKeysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "list keys in the configured kv store matching a glob pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}

			client, err := openKV(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.Keys(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			sort.Strings(keys)

			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}

			return nil
		},
	}

	kvFlushCmd = &cobra.Command{
		Use:   "flush-cache",
		Short: "drop cached public user responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openKV(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := cache.NewCache(client, cache.WithPrefix(cache.ResponsePrefix)).Clear(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "response cache cleared")

			return nil
		},
	}
)

// openKV 加载配置并只打开 KV 存储. memory 类型只在本进程内有效.
func openKV(cmd *cobra.Command) (*kv.Client, error) {
	cfg, err := app.Bootstrap(configPath, debug)
	if err != nil {
		return nil, err
	}

	return kv.New(cmd.Context(), &cfg.KV)
}

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	kvCmd.AddCommand(kvListCmd, kvKeysCmd, kvFlushCmd)
	rootCmd.AddCommand(kvCmd)
}
