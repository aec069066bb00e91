// Entry subcommands for the nested tables inside multiline cells.
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func newEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage the nested rows of multiline cells",
	}
	cmd.AddCommand(newEntryListCmd())
	cmd.AddCommand(newEntrySetCmd())
	cmd.AddCommand(newEntryAddRowCmd())
	cmd.AddCommand(newEntryDeleteRowCmd())
	return cmd
}

func newEntryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <cell-id>",
		Short: "Show a multiline cell's nested table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			entries, err := drive.Entries().ListByCell(args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			nested := types.GroupEntries(entries)
			return printResult(cmd, nested, func() {
				for _, row := range nested {
					fmt.Fprintf(cmd.OutOrStdout(), "row %d:\n", row.Index)
					for subID, value := range row.Values {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%+v\n", subID, value)
					}
				}
			})
		},
	}
}

func newEntrySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <cell-id> <sub-column-id> <row-index> <value>",
		Short: "Write a nested value",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			rowIndex, err := strconv.Atoi(args[2])
			if err != nil {
				return exitError(cmd, exitUserError, fmt.Sprintf("parse row index: %s", err))
			}

			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			entry, err := drive.Entries().Upsert(currentPrincipal(), args[0], args[1], rowIndex, args[3])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, entry, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "set entry %s at nested row %d\n", entry.EntryID, entry.OrderIndex)
			})
		},
	}
}

func newEntryAddRowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-row <cell-id>",
		Short: "Append an empty nested row to a multiline cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			index, err := drive.Entries().AppendNestedRow(currentPrincipal(), args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added nested row %d\n", index)
			return nil
		},
	}
}

func newEntryDeleteRowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-row <cell-id> <row-index>",
		Short: "Delete a nested row and its values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rowIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return exitError(cmd, exitUserError, fmt.Sprintf("parse row index: %s", err))
			}

			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			if err := drive.Entries().DeleteNestedRow(currentPrincipal(), args[0], rowIndex); err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted nested row %d\n", rowIndex)
			return nil
		},
	}
}
