package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docmeta/internal/comments"
)

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and extraction strategies",
	Run: func(cmd *cobra.Command, args []string) {
		printLanguages(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func printLanguages(w io.Writer) {
	fmt.Fprintln(w, "Languages:")
	for _, lang := range comments.Languages() {
		fmt.Fprintf(w, "  %s\n", lang)
	}
	fmt.Fprintln(w, "Strategies:")
	for _, st := range comments.Strategies() {
		fmt.Fprintf(w, "  %s\n", st)
	}
}
