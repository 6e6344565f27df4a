package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "presalesd",
	Short: "Presales lead qualification chatbot daemon",
	Long: `presalesd runs the presales chatbot: a websocket conversation server
backed by an estimate reference table and an LLM completion service.

Qualified leads captured from conversations are persisted to a local
SQLite database and exposed over an authenticated REST API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the presalesd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("presalesd version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
