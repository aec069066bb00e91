// Document subcommands: create, list, get, rename, permissions, delete.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func newDocumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "document",
		Aliases: []string{"doc"},
		Short:   "Manage documents",
	}
	cmd.AddCommand(newDocumentCreateCmd())
	cmd.AddCommand(newDocumentListCmd())
	cmd.AddCommand(newDocumentGetCmd())
	cmd.AddCommand(newDocumentRenameCmd())
	cmd.AddCommand(newDocumentPermissionsCmd())
	cmd.AddCommand(newDocumentDeleteCmd())
	return cmd
}

func newDocumentCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			doc, err := drive.Documents().Create(currentPrincipal(), args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, doc, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "created document %s (%q)\n", doc.DocumentID, doc.Name)
			})
		},
	}
}

func newDocumentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			docs, err := drive.Documents().List()
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, docs, func() {
				for _, doc := range docs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(owner: %s)\n", doc.DocumentID, doc.Name, doc.OwnerID)
				}
			})
		},
	}
}

func newDocumentGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <document-id>",
		Short: "Show a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			doc, err := drive.Documents().Get(args[0])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, doc, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(owner: %s)\n", doc.DocumentID, doc.Name, doc.OwnerID)
				for action, roles := range doc.Permissions {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", action, roles)
				}
			})
		},
	}
}

func newDocumentRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <document-id> <name>",
		Short: "Rename a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			doc, err := drive.Documents().Rename(currentPrincipal(), args[0], args[1])
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, doc, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "renamed document %s to %q\n", doc.DocumentID, doc.Name)
			})
		},
	}
}

func newDocumentPermissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permissions <document-id> <permissions-json>",
		Short: "Replace a document's permission map",
		Long: "Replace the permission map with a JSON object mapping actions to\n" +
			"role sets, e.g. '{\"read\":[\"all\"],\"write\":[\"alice\"],\"delete\":[\"alice\"]}'.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var perms types.Permissions
			if err := json.Unmarshal([]byte(args[1]), &perms); err != nil {
				return exitError(cmd, exitUserError, fmt.Sprintf("parse permissions: %s", err))
			}

			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			doc, err := drive.Documents().SetPermissions(currentPrincipal(), args[0], perms)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, doc, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "updated permissions on document %s\n", doc.DocumentID)
			})
		},
	}
}

func newDocumentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <document-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a document and all its contents",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			if err := drive.Documents().Delete(currentPrincipal(), args[0]); err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted document %s\n", args[0])
			return nil
		},
	}
}
