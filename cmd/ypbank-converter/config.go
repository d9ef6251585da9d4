package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the ypbank configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with default values",
		Long: `Write a configuration file with default values.

The file is shared by ypbank-converter and ypbank-comparer. Any key can also
be set through the environment, e.g. YPBANK_LOGGING_LEVEL=debug.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetDefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			if config.ConfigExists(path) && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}

			if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
				return err
			}

			cmd.Printf("Configuration written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}
