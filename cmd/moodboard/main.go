// Package main is the entry point for the moodboard server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var serverURL string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "moodboard",
	Short: "moodboard - a shared board of text snippets and images",
	Long: `moodboard serves a small web board backed by the filesystem: text
entries are kept in one JSON file and images in a directory, both under
the public directory that is also served statically.

Run "moodboard serve" to start the server. The text and image commands
talk to a running server.`,
	Version:      Version,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("moodboard version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("MOODBOARD_SERVER", "http://localhost:8000"), "server base url for client commands")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
