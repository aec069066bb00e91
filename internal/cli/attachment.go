// Attachment subcommands: upload, list, download, delete.
package cli

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/datanorth/gestiondrive/pkg/types"
)

func newAttachmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attachment",
		Aliases: []string{"att"},
		Short:   "Manage file attachments",
	}
	cmd.AddCommand(newAttachmentUploadCmd())
	cmd.AddCommand(newAttachmentListCmd())
	cmd.AddCommand(newAttachmentDownloadCmd())
	cmd.AddCommand(newAttachmentDeleteCmd())
	return cmd
}

func newAttachmentUploadCmd() *cobra.Command {
	var anchorKind string
	cmd := &cobra.Command{
		Use:   "upload <anchor-id> <file>",
		Short: "Attach a local file to a cell or entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return exitError(cmd, exitUserError, fmt.Sprintf("open file: %s", err))
			}
			defer f.Close()

			fileName := filepath.Base(args[1])
			fileType := mime.TypeByExtension(filepath.Ext(fileName))
			if fileType == "" {
				fileType = "application/octet-stream"
			}

			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			att, err := drive.Attachments().Upload(currentPrincipal(), args[0], anchorKind, fileName, fileType, f)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, att, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes) as attachment %s\n",
					att.FileName, att.FileSize, att.AttachmentID)
			})
		},
	}
	cmd.Flags().StringVar(&anchorKind, "anchor", types.AnchorCell, "anchor kind: cell or entry")
	return cmd
}

func newAttachmentListCmd() *cobra.Command {
	var anchorKind string
	cmd := &cobra.Command{
		Use:   "list <anchor-id>",
		Short: "List the attachments of a cell or entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			atts, err := drive.Attachments().List(args[0], anchorKind)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			return printResult(cmd, atts, func() {
				for _, att := range atts {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d bytes\n",
						att.AttachmentID, att.FileName, att.FileType, att.FileSize)
				}
			})
		},
	}
	cmd.Flags().StringVar(&anchorKind, "anchor", types.AnchorCell, "anchor kind: cell or entry")
	return cmd
}

func newAttachmentDownloadCmd() *cobra.Command {
	var anchorKind, output string
	cmd := &cobra.Command{
		Use:   "download <anchor-id> <attachment-id>",
		Short: "Download an attachment's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			atts, err := drive.Attachments().List(args[0], anchorKind)
			if err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			for _, att := range atts {
				if att.AttachmentID != args[1] {
					continue
				}
				r, err := drive.Blobs().Open(att.FilePath)
				if err != nil {
					return exitError(cmd, exitSysError, fmt.Sprintf("open blob: %s", err))
				}
				defer r.Close()

				dest := output
				if dest == "" {
					dest = att.FileName
				}
				out, err := os.Create(dest)
				if err != nil {
					return exitError(cmd, exitSysError, fmt.Sprintf("create file: %s", err))
				}
				defer out.Close()

				if _, err := io.Copy(out, r); err != nil {
					return exitError(cmd, exitSysError, fmt.Sprintf("write file: %s", err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s to %s\n", att.FileName, dest)
				return nil
			}
			return exitError(cmd, exitUserError, fmt.Sprintf("attachment %s not found on anchor %s", args[1], args[0]))
		},
	}
	cmd.Flags().StringVar(&anchorKind, "anchor", types.AnchorCell, "anchor kind: cell or entry")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination path (default: the attachment file name)")
	return cmd
}

func newAttachmentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <attachment-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an attachment and its content",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := openDrive()
			if err != nil {
				return exitError(cmd, exitSysError, err.Error())
			}
			defer drive.Detach()

			if err := drive.Attachments().Delete(currentPrincipal(), args[0]); err != nil {
				return exitError(cmd, exitUserError, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted attachment %s\n", args[0])
			return nil
		},
	}
}
