package cli

import (
	"csv-drop/internal/adapters/client/rest"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	server  string
	timeout time.Duration
	verbose bool
}

// Root builds the csvdrop command tree
func Root() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "csvdrop",
		Short:         "upload and manage CSV files on a csv-drop server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("CSVDROP_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "base URL of the csv-drop API (env CSVDROP_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "timeout of a single HTTP request")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every request")

	rootCmd.AddCommand(
		upload(opts),
		list(opts),
		links(opts),
		remove(opts),
	)
	return rootCmd
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *options) client(cmd *cobra.Command) *rest.Client {
	return rest.New(o.server,
		rest.WithHTTPClient(httpClient(o.timeout)),
		rest.WithLogger(o.logger(cmd)),
	)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
