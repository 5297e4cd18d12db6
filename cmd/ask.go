package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/deal-desk/internal/chatbot"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Query the deal desk FAQ",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matcher := chatbot.NewMatcher(nil)
		resp := matcher.Match(strings.Join(args, " "))
		formatChatResponse(os.Stdout, resp)
		return nil
	},
}

func formatChatResponse(w io.Writer, resp chatbot.Response) {
	fmt.Fprintln(w, resp.Answer)
	if len(resp.Suggestions) > 0 {
		fmt.Fprintln(w, "\nRelated questions:")
		for _, s := range resp.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
}
