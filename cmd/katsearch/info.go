package main

import (
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/katsearch/internal/format"
	"github.com/kk-code-lab/katsearch/internal/item"
	"github.com/kk-code-lab/katsearch/internal/textutil"
)

func NewCmdInfo(env *cliEnv) *cobra.Command {
	var folderSize bool

	cmd := &cobra.Command{
		Use:   "info <path> [--folder-size]",
		Short: "Print every attribute of a file or folder.",
		Long: heredoc.Doc(`
			Resolves each attribute of path the way the result columns do.
			Attributes that cannot be determined are shown as "?" followed by
			the reason. Dates are followed by their ISO 8601 form. The recursive
			size of a folder is only computed with --folder-size, which also
			fills in the folder's Size.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := existingItem(env, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cmd.Printf("%-17s %s\n", "Path", textutil.SanitizeTerminalText(it.Path()))
			if textutil.HasInvisibleRunes(it.Name()) {
				cmd.Printf("%-17s %s\n", "Warning", "name contains invisible characters")
			}
			walk := folderSize && it.IsDirectory()
			if walk {
				// Size of a directory is only known once the walk has run.
				_, _ = it.ComputeFolderSize(ctx)
			}
			for _, attr := range item.Attributes() {
				if attr == item.AttrFolderSize && !walk {
					continue
				}
				res := it.Resolve(ctx, attr)
				value := res.Display
				if t, ok := res.Value.(time.Time); ok && !t.IsZero() {
					value += " (" + format.ISODate(t) + ")"
				}
				if res.Failure != nil {
					value = fmt.Sprintf("? (%s)", res.Failure.Kind)
				}
				cmd.Printf("%-17s %-10s %s\n", attr, res.State, value)
			}
			if !it.IsDirectory() && it.Exists() {
				cmd.Printf("%-17s %-10s %s\n", "Allocated", item.Resolved,
					format.Size(uint64(max(it.AllocatedSize(), 0)), env.deps.Units))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&folderSize, "folder-size", false, "walk a folder to compute its total size")
	return cmd
}

// existingItem builds an item for path, failing when path does not exist.
func existingItem(env *cliEnv, path string) (*item.Item, error) {
	if _, err := os.Lstat(path); err != nil {
		return nil, err
	}
	return item.New(path, env.deps), nil
}
