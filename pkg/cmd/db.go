package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/dataroom/pkg/app"
	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/storage"
	"github.com/yeisme/dataroom/pkg/internal/storage/db"
)

var (
	seedOpts service.SeedOptions

	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list all registered database types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")

			for _, dbType := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+dbType)
			}
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := storage.Migrate(cmd.Context(), client); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")

			return nil
		},
	}

	dbSeedCmd = &cobra.Command{
		Use:   "seed",
		Short: "insert demo users and file records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := storage.Migrate(cmd.Context(), client); err != nil {
				return err
			}

			res, err := service.Seed(cmd.Context(), client.GetDB(), seedOpts, cfg.Auth.BcryptCost)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users and %d files\n", res.UsersCreated, res.FilesCreated)

			return nil
		},
	}
)

// openDB 加载配置并只打开数据库连接.
func openDB(cmd *cobra.Command) (*db.Client, *configs.AppConfig, error) {
	cfg, err := app.Bootstrap(configPath, debug)
	if err != nil {
		return nil, nil, err
	}

	client, err := db.New(cmd.Context(), &cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	return client, cfg, nil
}

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	dbSeedCmd.Flags().IntVar(&seedOpts.Users, "users", service.DefaultSeedUsers, "number of demo users")
	dbSeedCmd.Flags().IntVar(&seedOpts.Files, "files", service.DefaultSeedFiles, "number of demo file records")
	dbSeedCmd.Flags().StringVar(&seedOpts.Password, "password", service.DefaultSeedPassword, "password for every demo user")

	dbCmd.AddCommand(dbListCmd, dbMigrateCmd, dbSeedCmd)
	rootCmd.AddCommand(dbCmd)
}
