package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/katsearch/internal/app"
	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/item"
)

func NewCmdRoot(env *cliEnv) *cobra.Command {
	var (
		flags       searchFlags
		columns     []string
		interactive bool
		stats       bool
	)

	cmd := &cobra.Command{
		Use:   "katsearch [pattern]",
		Short: "Search volume catalogs by name, size, date and type.",
		Long: heredoc.Doc(`
			KatSearch finds files and folders by scanning the catalog of each
			volume. Matches are printed one path per line, or browsed in a
			full-screen result list with --interactive.

			The pattern is a substring by default. Glob characters (* ? [)
			select wildcard matching unless a mode flag is given.

			Examples:
			  katsearch report                      // names containing "report"
			  katsearch -w '*.PNG' -s -v /Volumes/Photos
			  katsearch -d --modified-after 2024-01-01 build
			  katsearch --min-size 1GB -c size,datemodified
			  katsearch -i invoice                  // browse the results
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) > 0 {
				pattern = args[0]
			}
			q, err := flags.query(cmd.Flags(), pattern)
			if err != nil {
				return err
			}
			var shown []item.Column
			if cmd.Flags().Changed("columns") {
				if shown, err = parseColumns(columns); err != nil {
					return err
				}
			}
			if interactive {
				return runInteractive(env, q, shown)
			}
			env.session.Recent.Record(q)
			return runSearch(cmd.Context(), env, q, shown, stats, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags.register(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("dirs", "files")
	cmd.MarkFlagsMutuallyExclusive("exact", "wildcard", "regex")
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "attributes to print after each path, e.g. kind,size")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the results in the terminal")
	cmd.Flags().BoolVar(&stats, "stats", false, "print a scan summary to stderr")

	pf := cmd.PersistentFlags()
	pf.StringVar(&env.cfgFile, "config", "", "config file (default is the user config dir)")
	pf.String("units", "", "size units: binary or decimal")
	pf.Int("batch-size", 0, "matches requested per catalog call")
	pf.Bool("parallel", false, "scan volumes concurrently")
	pf.String("locale", "", "locale for dates, e.g. de-DE")
	pf.Bool("debug", false, "write a debug log")
	pf.String("session-file", "", "where recent searches and columns are kept")

	cmd.AddCommand(
		NewCmdRecent(env),
		NewCmdColumns(env),
		NewCmdInfo(env),
	)
	cmd.AddCommand(newItemActionCmds(env)...)

	return cmd
}

func parseColumns(names []string) ([]item.Column, error) {
	cols := make([]item.Column, 0, len(names))
	for _, name := range names {
		c, err := item.ParseColumn(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func runInteractive(env *cliEnv, q catalog.Query, columns []item.Column) error {
	a, err := app.NewApplication(app.Options{
		Query:             q,
		Searcher:          catalog.NewSearcher(env.engine()),
		Session:           env.session,
		Deps:              env.deps,
		FolderSizeTimeout: env.cfg.FolderSizeTimeout,
		StartSearch:       q.Name.Text != "",
		Columns:           columns,
	})
	if err != nil {
		return err
	}
	a.Run()
	env.closed = true
	return a.Close()
}

// runSearch prints matches as they arrive. With columns, rows are aligned
// and flushed once the scan ends.
func runSearch(ctx context.Context, env *cliEnv, q catalog.Query, columns []item.Column, stats bool, stdout, stderr io.Writer) error {
	var tw *tabwriter.Writer
	out := stdout
	if len(columns) > 0 {
		tw = tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		out = tw
		fmt.Fprint(tw, "Path")
		for _, c := range columns {
			fmt.Fprintf(tw, "\t%s", c.Title())
		}
		fmt.Fprintln(tw)
	}
	attrs := make([]item.Attribute, len(columns))
	for i, c := range columns {
		attrs[i] = c.Attribute()
	}

	summary := env.engine().Search(ctx, q, func(u catalog.Update) {
		switch {
		case u.Skipped != nil:
			fmt.Fprintf(stderr, "katsearch: %s\n", u.Skipped)
		case len(u.Matches) > 0:
			for _, m := range u.Matches {
				if tw == nil {
					fmt.Fprintln(out, m.Path)
					continue
				}
				it := item.FromMatch(m, env.deps)
				it.Prime(ctx, attrs...)
				fmt.Fprint(tw, m.Path)
				for _, c := range columns {
					fmt.Fprintf(tw, "\t%s", it.ColumnValue(ctx, c))
				}
				fmt.Fprintln(tw)
			}
		}
	})
	if tw != nil {
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if stats {
		fmt.Fprintf(stderr, "%d found, %d scanned in %s (%s)\n",
			summary.Matches, summary.Scanned, summary.Duration.Round(time.Millisecond), summary.Outcome)
	}
	switch summary.Outcome {
	case catalog.OutcomeCancelled:
		return errInterrupted
	case catalog.OutcomeFailed:
		return summary.Err
	}
	return nil
}
