package main

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/katsearch/internal/item"
)

func NewCmdColumns(env *cliEnv) *cobra.Command {
	var show, hide []string

	cmd := &cobra.Command{
		Use:   "columns [--show name...] [--hide name...]",
		Short: "Show or change the visible result columns.",
		Long: heredoc.Doc(`
			Prints every column with its visibility. The choice is saved with
			the session and used by the interactive browser.

			Examples:
			  katsearch columns --show size,datemodified --hide kind
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, set := range []struct {
				names   []string
				visible bool
			}{{show, true}, {hide, false}} {
				cols, err := parseColumns(set.names)
				if err != nil {
					return err
				}
				for _, c := range cols {
					env.session.Columns.SetVisible(c, set.visible)
				}
			}

			for _, c := range item.Columns() {
				mark := " "
				if env.session.Columns.Visible(c) {
					mark = "x"
				}
				cmd.Printf("[%s] %-14s %s\n", mark, c, c.Title())
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&show, "show", nil, "columns to show")
	cmd.Flags().StringSliceVar(&hide, "hide", nil, "columns to hide")
	return cmd
}
