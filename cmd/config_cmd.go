/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/josephgoksu/tasklane/internal/config"
	"github.com/josephgoksu/tasklane/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		used := viper.ConfigFileUsed()
		if used == "" {
			used = "(none, using defaults)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config file: %s\n", used)

		keys := make([]string, 0, len(config.Defaults()))
		for k := range config.Defaults() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			value := viper.Get(k)
			if k == "data.dir" {
				value = cfg.Data.Dir
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", k, value)
		}

		crashLogs, err := logger.ListCrashLogs()
		if err != nil {
			return err
		}
		if len(crashLogs) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\ncrash logs (%d):\n", len(crashLogs))
			for _, p := range crashLogs {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
		}
		return nil
	},
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings into the data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectConfigPath(GetConfig().Data.Dir)
		values := config.Defaults()
		delete(values, "data.dir")
		if err := config.WriteConfigFile(path, values, configInitForce); err != nil {
			if errors.Is(err, config.ErrConfigExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			return err
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), map[string]string{"path": path})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
}
