// Command tickbot runs the TickBot Slack checklist bot.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "tickbot",
	Short: "Slack bot for personal to-do checklists",
	Long: `TickBot lets Slack users keep personal to-do checklists through
conversational commands and emoji-reaction menus. Mention the bot with a
command (create, add, check, view, clear, share, lists, help) and it
walks you through the rest.`,
	SilenceUsage: true,
}

var showVersion bool

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Print version and exit")
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("tickbot %s\n", Version)
			return nil
		}
		return cmd.Help()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
