package main

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

func NewCmdRecent(env *cliEnv) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "recent [--clear]",
		Short: "List recent searches.",
		Long: heredoc.Doc(`
			Lists the most recent distinct searches, newest first. The same
			list is offered by Ctrl-P in the interactive browser.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll {
				env.session.Recent.Clear()
				cmd.Println("Recent searches cleared.")
				return nil
			}
			recent := env.session.Recent.All()
			if len(recent) == 0 {
				cmd.Println("No recent searches.")
				return nil
			}
			for i, q := range recent {
				cmd.Printf("%2d  %s\n", i+1, q)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "forget all recent searches")
	return cmd
}
