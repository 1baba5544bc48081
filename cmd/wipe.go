package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newWipeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every stored offer",
		Long: `Drops the whole offers table. The only supported removal is this
full-table wipe; individual records are never deleted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			confirm := func(prompt string) bool {
				if yes {
					return true
				}
				fmt.Fprint(cmd.OutOrStdout(), prompt)
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if !scanner.Scan() {
					return false
				}
				answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
				return answer == "y" || answer == "yes"
			}

			if err := app.Store.DropAll(cmd.Context(), confirm); err != nil {
				return fmt.Errorf("wipe store: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the interactive confirmation")
	return cmd
}
