/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"os"

	"github.com/josephgoksu/tasklane/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// jsonOutput switches command output to JSON.
	jsonOutput bool
	// quiet suppresses non-essential output.
	quiet bool
	// version is the application version.
	version = "0.3.0"
	// ErrAborted is returned when the user declines a confirmation prompt.
	ErrAborted = errors.New("aborted by user")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tasklane",
	Short: "tasklane tracks tasks and their dependencies for people and agents.",
	Long: `tasklane is a task lifecycle and dependency manager.

Tasks live in a single versioned document inside the data directory (.tasklane by default).
Completed tasks are locked, tasks that others depend on cannot be deleted, and every change
is recorded in a git revision log. The same engine is served to AI agents over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetCommand(cmd.CommandPath())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer logger.HandlePanic()
	logger.SetVersion(version)
	logger.SetLastInput(joinArgs(os.Args[1:]))

	if err := rootCmd.Execute(); err != nil {
		HandleFatalError(err.Error(), err)
	}
}

// GetVersion returns the application version.
func GetVersion() string {
	return version
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.tasklane/.tasklane.yaml, $HOME/.tasklane.yaml or ./.tasklane.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
}
