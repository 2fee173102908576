package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/totegamma/moodboard"
	"github.com/totegamma/moodboard/client"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Manage text entries on a running server",
}

var textAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Append a text entry",
	Long: `Append a text entry. Content may contain HTML markup. With no
argument, or "-", content is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTextAdd,
}

var textListCmd = &cobra.Command{
	Use:   "list",
	Short: "List text entries",
	Args:  cobra.NoArgs,
	RunE:  runTextList,
}

var textRmCmd = &cobra.Command{
	Use:   "rm <index|id>",
	Short: "Delete a text entry",
	Long: `Delete a text entry by its id or by its position.

A position is only meaningful for the listing it was read from, so a
positional delete needs --version with the version printed by "text list".
The server refuses the delete if the entries changed since then.`,
	Args: cobra.ExactArgs(1),
	RunE: runTextRm,
}

var (
	textListJSON  bool
	textListWidth int
	textRmVersion string
)

func init() {
	textListCmd.Flags().BoolVar(&textListJSON, "json", false, "print the raw listing as JSON")
	textListCmd.Flags().IntVar(&textListWidth, "width", 60, "preview width in characters")
	textRmCmd.Flags().StringVar(&textRmVersion, "version", "", "listing version a positional delete applies to")

	textCmd.AddCommand(textAddCmd, textListCmd, textRmCmd)
	rootCmd.AddCommand(textCmd)
}

func runTextAdd(cmd *cobra.Command, args []string) error {
	var content string
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		content = strings.TrimRight(string(raw), "\n")
	} else {
		content = args[0]
	}

	res, err := client.New(serverURL).SaveText(cmd.Context(), content)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.Message, res.Entry.ID)
	return nil
}

func runTextList(cmd *cobra.Command, args []string) error {
	res, err := client.New(serverURL).ListTexts(cmd.Context())
	if err != nil {
		return err
	}

	if textListJSON {
		return moodboard.JsonPrint(cmd.OutOrStdout(), res)
	}
	if len(res.Entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No text entries.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n\n", res.Version)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tID\tTIMESTAMP\tCONTENT")
	for i, entry := range res.Entries {
		timestamp := entry.Timestamp.String()
		if entry.Timestamp.Valid() {
			timestamp = entry.Timestamp.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i,
			entry.ID,
			timestamp,
			client.Preview(entry.Content, textListWidth),
		)
	}
	return w.Flush()
}

func runTextRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c := client.New(serverURL)

	index, err := strconv.Atoi(args[0])
	if err != nil {
		err = c.DeleteTextByID(ctx, args[0])
	} else {
		if textRmVersion == "" {
			return errors.New(`positional delete needs --version from "text list", or delete by id`)
		}
		err = c.DeleteTextAt(ctx, index, textRmVersion)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Text entry deleted successfully!")
	return nil
}
