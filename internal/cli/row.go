// Row subcommands: add, list, duplicate, delete.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Manage document rows",
	}
	cmd.AddCommand(newRowAddCmd())
	cmd.AddCommand(newRowListCmd())
	cmd.AddCommand(newRowDuplicateCmd())
	cmd.AddCommand(newRowDeleteCmd())
	return cmd
}

func newRowAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <document-id>",
		Short: "Append a row to a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			row, err := drive.Rows().Create(currentPrincipal(), args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, row, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "added row %s at position %d\n", row.RowID, row.OrderIndex)
			})
		},
	}
}

func newRowListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <document-id>",
		Short: "List a document's rows in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			rows, err := drive.Rows().List(args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, rows, func() {
				for _, row := range rows {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", row.OrderIndex, row.RowID)
				}
			})
		},
	}
}

func newRowDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <row-id>",
		Short: "Duplicate a row with its values",
		Long: "Copy the row's cell values into a new row at the end. Multiline\n" +
			"content is deep-cloned; file cells stay empty in the copy.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			row, err := drive.Rows().Duplicate(currentPrincipal(), args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, row, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "duplicated into row %s at position %d\n", row.RowID, row.OrderIndex)
			})
		},
	}
}

func newRowDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <row-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a row and its cells",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			if err := drive.Rows().Delete(currentPrincipal(), args[0]); err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted row %s\n", args[0])
			return nil
		},
	}
}
