package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the sheetsmcp application
var rootCmd = &cobra.Command{
	Use:   "sheetsmcp",
	Short: "Google Sheets integration server for AI assistants",
	Long: `sheetsmcp exposes a fixed set of Google Sheets and Drive operations to
AI assistants and automation clients.

It can run as:
  - An MCP (Model Context Protocol) server over stdio (default)
  - An HTTP/REST API authenticated with static API keys`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "sheetsmcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
