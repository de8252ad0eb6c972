package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/katsearch/internal/item"
	"github.com/kk-code-lab/katsearch/internal/osaction"
)

// itemActions are the single-path OS actions exposed as subcommands.
var itemActions = []struct {
	use   string
	short string
	run   func(*item.Item, context.Context) error
}{
	{"open", "Open with the default application.", (*item.Item).Open},
	{"reveal", "Show in the file manager.", (*item.Item).Reveal},
	{"reveal-contents", "Show the contents of a package.", (*item.Item).RevealPackageContents},
	{"quicklook", "Preview with Quick Look.", (*item.Item).QuickLook},
	{"getinfo", "Open the system information window.", (*item.Item).ShowGetInfo},
	{"show-original", "Reveal the target of an alias or symbolic link.", (*item.Item).ShowOriginal},
	{"trash", "Move to the trash.", (*item.Item).MoveToTrash},
}

func newItemActionCmds(env *cliEnv) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(itemActions)+3)
	for _, action := range itemActions {
		cmds = append(cmds, &cobra.Command{
			Use:   action.use + " <path>",
			Short: action.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				it, err := existingItem(env, args[0])
				if err != nil {
					return err
				}
				return action.run(it, cmd.Context())
			},
		})
	}
	return append(cmds, newCmdOpenWith(env), newCmdLabel(env), newCmdComment(env))
}

func newCmdOpenWith(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "open-with <path> [handler]",
		Short: "Open with a specific application, or list the candidates.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := existingItem(env, args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				return it.OpenWith(cmd.Context(), args[1])
			}
			handlers, err := it.Handlers(cmd.Context())
			if err != nil {
				return err
			}
			for _, h := range handlers.All {
				mark := " "
				if h == handlers.Default {
					mark = "*"
				}
				cmd.Printf("%s %s\n", mark, h)
			}
			return nil
		},
	}
}

func newCmdLabel(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "label <path> [label]",
		Short: "Print or set the color label.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := existingItem(env, args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				label, err := osaction.ParseLabel(args[1])
				if err != nil {
					return err
				}
				return it.SetLabel(cmd.Context(), label)
			}
			label, err := it.Label(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Println(osaction.LabelName(label))
			return nil
		},
	}
}

func newCmdComment(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <path> [text]",
		Short: "Print or set the file comment.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := existingItem(env, args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				return it.SetComment(cmd.Context(), args[1])
			}
			comment, err := it.Comment(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			cmd.Println(comment)
			return nil
		},
	}
}
