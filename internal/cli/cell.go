// Cell subcommands: get, set, clear, touch.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell",
		Short: "Read and write cell values",
	}
	cmd.AddCommand(newCellGetCmd())
	cmd.AddCommand(newCellSetCmd())
	cmd.AddCommand(newCellClearCmd())
	cmd.AddCommand(newCellTouchCmd())
	return cmd
}

func newCellGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <row-id> <column-id>",
		Short: "Show the value at a (row, column) pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			cell, err := drive.Cells().Get(args[0], args[1])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			if cell == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "(empty)")
				return nil
			}
			return printResult(cmd, cell, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%v\n",
					cell.CellID, cell.ValueType, cell.Value.Decode(cell.ValueType))
			})
		},
	}
}

func newCellSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <row-id> <column-id> <value>",
		Short: "Write a value at a (row, column) pair",
		Long: "The value is interpreted per the column's data type: numbers and\n" +
			"dates are parsed, booleans accept yes/no forms, select values must\n" +
			"be one of the configured options.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			cell, err := drive.Cells().Upsert(currentPrincipal(), args[0], args[1], args[2])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, cell, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "set cell %s to %v\n",
					cell.CellID, cell.Value.Decode(cell.ValueType))
			})
		},
	}
}

func newCellClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <row-id> <column-id>",
		Short: "Clear the value at a (row, column) pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			cell, err := drive.Cells().Upsert(currentPrincipal(), args[0], args[1], nil)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, cell, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "cleared cell %s\n", cell.CellID)
			})
		},
	}
}

func newCellTouchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "touch <row-id> <column-id>",
		Short: "Ensure the anchor cell exists for a (row, column) pair",
		Long: "Multiline and file columns need an anchor cell before entries or\n" +
			"attachments can be added. Touching an existing cell is a no-op.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			cell, err := drive.Cells().EnsureExists(currentPrincipal(), args[0], args[1])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, cell, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "cell %s ready\n", cell.CellID)
			})
		},
	}
}
