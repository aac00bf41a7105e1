package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bibliodesk",
	Short: "bibliodesk - library catalog management console",
	Long: `bibliodesk is a web console over the library REST API. It lists, creates,
edits and deletes books, records borrows and shows the borrow summary.

Use "bibliodesk [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "bibliodesk.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level (debug|info|error|fatal|off), overrides config")

	rootCmd.AddCommand(serveCmd, importCmd, exportSummaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
