package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func list(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list uploaded files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := opts.client(cmd).List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tSTATUS\tUPLOADED")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.OriginalName, r.SizeBytes, r.Status, r.UploadedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func links(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "links <file-id>",
		Short: "print signed download and preview links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid file id %q: %w", args[0], err)
			}
			l, err := opts.client(cmd).Links(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "download: %s\npreview:  %s\nexpires:  %s\n", l.DownloadURL, l.PreviewURL, l.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}

func remove(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <file-id>",
		Aliases: []string{"rm"},
		Short:   "delete a file, aborting it if still uploading",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid file id %q: %w", args[0], err)
			}
			if err := opts.client(cmd).Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "deleted %s\n", id)
			return nil
		},
	}
}
