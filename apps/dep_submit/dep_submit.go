package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/openaccess/exchange/context"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util/fileutil"
	"github.com/spf13/cobra"
	"os"
)

var (
	configFile string
	envFile    string
	_context   *context.Context
)

var rootCmd = &cobra.Command{
	Use:   "dep_submit",
	Short: "Submit, queue and refresh paper deposits",
	Long: `dep_submit runs deposits outside of dep_worker. It can deposit a
paper right away, queue a deposit request for dep_worker, refresh the
status of earlier deposits and list what the deposit database holds.

Repository tokens may come from the environment, or from a .env file.

Only queue works while dep_worker is running. The other commands use
the deposit database, which dep_worker keeps locked.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}
		config, err := models.LoadConfigFile(configFile)
		if err != nil {
			return err
		}
		_context, err = context.NewContextWithoutStore(config)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if _context != nil {
			_context.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to deposit config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with environment settings, like repository tokens")
	rootCmd.MarkPersistentFlagRequired("config")
	rootCmd.AddCommand(submitCmd, queueCmd, refreshCmd, listCmd)
}

// loadEnvFile loads settings from path into the environment. A
// missing file is fine: the settings may already be there.
func loadEnvFile(path string) error {
	if path == "" || !fileutil.FileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("Cannot load %s: %v", path, err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
