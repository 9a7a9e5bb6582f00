package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the smsbridge application
var rootCmd = &cobra.Command{
	Use:   "smsbridge",
	Short: "MCP server that sends SMS messages through Twilio",
	Long: `smsbridge is an MCP (Model Context Protocol) server that lets AI
assistants send SMS messages through the Twilio Messaging API.

It exposes one tool (send-message) and two prompts (send-greeting,
send-haiku) over an SSE transport (default) or stdio.`,
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
	rootCmd.SetVersionTemplate(`{{printf "smsbridge version %s\n" .Version}}`)

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
