package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"checkcheck-api/internal/config"
	"checkcheck-api/pkg/logger"
)

// appName names the XDG data directory
const appName = "checkcheck"

// NewRootCmd creates the root command for checkcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkcheck",
		Short: "Personal security check-up from the command line",
		Long: `checkcheck scores the security-habit survey, checks text messages for
smishing with the local rule table and the remote analysis service, and keeps
a local history of diagnoses.

Configuration is read from config.yaml (or --config) and CHECKCHECK_*
environment variables, the same way the API server reads it.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to a config file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output JSON instead of Markdown")

	cmd.AddCommand(NewSurveyCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewEmailCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime reads the config and builds the logger from the global flags
func loadRuntime(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		lc := logger.DefaultConfig()
		lc.Level = "debug"
		lc.TimeFormat = "15:04:05"
		lc.Output = cmd.ErrOrStderr()
		log = logger.New(lc)
	}
	return cfg, log, nil
}

// defaultHistoryPath is the SQLite history file under the XDG data directory
func defaultHistoryPath() string {
	return filepath.Join(xdg.DataHome, appName, "history.db")
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
