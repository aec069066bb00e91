// Column subcommands: add, list, update, resize, reorder, delete.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func newColumnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "column",
		Aliases: []string{"col"},
		Short:   "Manage document columns",
	}
	cmd.AddCommand(newColumnAddCmd())
	cmd.AddCommand(newColumnListCmd())
	cmd.AddCommand(newColumnUpdateCmd())
	cmd.AddCommand(newColumnResizeCmd())
	cmd.AddCommand(newColumnReorderCmd())
	cmd.AddCommand(newColumnDeleteCmd())
	return cmd
}

func newColumnAddCmd() *cobra.Command {
	var options []string
	cmd := &cobra.Command{
		Use:   "add <document-id> <label> <data-type>",
		Short: "Add a column to a document",
		Long: "Add a column with one of the data types: text, number, date,\n" +
			"boolean, select, multiline, file. Select columns take their valid\n" +
			"values from --option flags.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			col, err := drive.Columns().Create(currentPrincipal(), args[0], &types.Column{
				Label:    args[1],
				DataType: args[2],
				Config:   types.ColumnConfig{Options: options},
			})
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, col, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "added column %s (%q, %s) at position %d\n",
					col.ColumnID, col.Label, col.DataType, col.OrderIndex)
			})
		},
	}
	cmd.Flags().StringArrayVar(&options, "option", nil, "valid value for a select column (repeatable)")
	return cmd
}

func newColumnListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <document-id>",
		Short: "List a document's columns in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			cols, err := drive.Columns().List(args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, cols, func() {
				for _, col := range cols {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n",
						col.OrderIndex, col.ColumnID, col.Label, col.DataType)
				}
			})
		},
	}
}

func newColumnUpdateCmd() *cobra.Command {
	var label, dataType, bgColor, textColor string
	var options []string
	cmd := &cobra.Command{
		Use:   "update <column-id>",
		Short: "Update column attributes",
		Long: "Update the flagged attributes, leaving the rest unchanged.\n" +
			"Changing --type clears the column's existing cell values.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := types.ColumnPatch{}
			if cmd.Flags().Changed("label") {
				patch.Label = &label
			}
			if cmd.Flags().Changed("type") {
				patch.DataType = &dataType
			}
			if cmd.Flags().Changed("bg-color") {
				patch.BgColor = &bgColor
			}
			if cmd.Flags().Changed("text-color") {
				patch.TextColor = &textColor
			}
			if cmd.Flags().Changed("option") {
				patch.Config = &types.ColumnConfig{Options: options}
			}

			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			col, err := drive.Columns().Update(currentPrincipal(), args[0], patch)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, col, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "updated column %s\n", col.ColumnID)
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "new display label")
	cmd.Flags().StringVar(&dataType, "type", "", "new data type")
	cmd.Flags().StringVar(&bgColor, "bg-color", "", "new background color")
	cmd.Flags().StringVar(&textColor, "text-color", "", "new text color")
	cmd.Flags().StringArrayVar(&options, "option", nil, "replace select options (repeatable)")
	return cmd
}

func newColumnResizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <column-id> <width>",
		Short: "Set a column's display width",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.Atoi(args[1])
			if err != nil {
				return exitError(cmd, exitUserError, fmt.Sprintf("parse width: %s", err))
			}

			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			col, err := drive.Columns().Resize(currentPrincipal(), args[0], width)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, col, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "resized column %s to %d\n", col.ColumnID, col.Width)
			})
		},
	}
}

func newColumnReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <document-id> <column-id,column-id,...>",
		Short: "Reorder a document's columns",
		Long:  "The comma-separated list must name every column of the document exactly once.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			cols, err := drive.Columns().Reorder(currentPrincipal(), args[0], strings.Split(args[1], ","))
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, cols, func() {
				for _, col := range cols {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", col.OrderIndex, col.ColumnID, col.Label)
				}
			})
		},
	}
}

func newColumnDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <column-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a column and everything stored under it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			if err := drive.Columns().Delete(currentPrincipal(), args[0]); err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted column %s\n", args[0])
			return nil
		},
	}
}
