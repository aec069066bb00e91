// Sub-column subcommands for the nested schema of multiline columns.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func newSubColumnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subcolumn",
		Aliases: []string{"subcol"},
		Short:   "Manage the sub-columns of multiline columns",
	}
	cmd.AddCommand(newSubColumnAddCmd())
	cmd.AddCommand(newSubColumnListCmd())
	cmd.AddCommand(newSubColumnUpdateCmd())
	cmd.AddCommand(newSubColumnResizeCmd())
	cmd.AddCommand(newSubColumnReorderCmd())
	cmd.AddCommand(newSubColumnDeleteCmd())
	return cmd
}

func newSubColumnAddCmd() *cobra.Command {
	var options []string
	cmd := &cobra.Command{
		Use:   "add <column-id> <label> <data-type>",
		Short: "Add a sub-column to a multiline column",
		Long:  "Any data type except multiline is allowed; nesting stops at two levels.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			sub, err := drive.SubColumns().Create(currentPrincipal(), args[0], &types.SubColumn{
				Label:    args[1],
				DataType: args[2],
				Config:   types.ColumnConfig{Options: options},
			})
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, sub, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "added sub-column %s (%q, %s) at position %d\n",
					sub.SubColumnID, sub.Label, sub.DataType, sub.OrderIndex)
			})
		},
	}
	cmd.Flags().StringArrayVar(&options, "option", nil, "valid value for a select sub-column (repeatable)")
	return cmd
}

func newSubColumnListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <column-id>",
		Short: "List a column's sub-columns in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			subs, err := drive.SubColumns().List(args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, subs, func() {
				for _, sub := range subs {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n",
						sub.OrderIndex, sub.SubColumnID, sub.Label, sub.DataType)
				}
			})
		},
	}
}

func newSubColumnUpdateCmd() *cobra.Command {
	var label, dataType string
	var options []string
	cmd := &cobra.Command{
		Use:   "update <sub-column-id>",
		Short: "Update sub-column attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := types.SubColumnPatch{}
			if cmd.Flags().Changed("label") {
				patch.Label = &label
			}
			if cmd.Flags().Changed("type") {
				patch.DataType = &dataType
			}
			if cmd.Flags().Changed("option") {
				patch.Config = &types.ColumnConfig{Options: options}
			}

			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			sub, err := drive.SubColumns().Update(currentPrincipal(), args[0], patch)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, sub, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "updated sub-column %s\n", sub.SubColumnID)
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "new display label")
	cmd.Flags().StringVar(&dataType, "type", "", "new data type")
	cmd.Flags().StringArrayVar(&options, "option", nil, "replace select options (repeatable)")
	return cmd
}

func newSubColumnResizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <sub-column-id> <width>",
		Short: "Set a sub-column's display width",
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

			sub, err := drive.SubColumns().Resize(currentPrincipal(), args[0], width)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, sub, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "resized sub-column %s to %d\n", sub.SubColumnID, sub.Width)
			})
		},
	}
}

func newSubColumnReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <column-id> <sub-column-id,sub-column-id,...>",
		Short: "Reorder a column's sub-columns",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			subs, err := drive.SubColumns().Reorder(currentPrincipal(), args[0], strings.Split(args[1], ","))
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, subs, func() {
				for _, sub := range subs {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", sub.OrderIndex, sub.SubColumnID, sub.Label)
				}
			})
		},
	}
}

func newSubColumnDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <sub-column-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a sub-column and its entries",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			if err := drive.SubColumns().Delete(currentPrincipal(), args[0]); err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted sub-column %s\n", args[0])
			return nil
		},
	}
}
