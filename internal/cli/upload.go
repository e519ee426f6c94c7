package cli

import (
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/service/scheduler"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

// maxPartSize keeps a chunk and its form fields under the server's default 8MiB body limit
const maxPartSize = 8<<20 - 64<<10

func upload(opts *options) *cobra.Command {
	var (
		partSize    int64
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "upload <file.csv>...",
		Short: "upload CSV files in chunks, Ctrl-C cancels and aborts",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if partSize < scheduler.MinPartSize || partSize > maxPartSize {
				return fmt.Errorf("%w: --part-size must be between %d and %d bytes, got %d",
					domain.ErrValidation, scheduler.MinPartSize, maxPartSize, partSize)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := make([]scheduler.FileSource, 0, len(args))
			for _, path := range args {
				src, closeFn, err := openSource(path)
				if err != nil {
					return err
				}
				defer closeFn()
				sources = append(sources, src)
			}

			s := scheduler.New(opts.client(cmd),
				scheduler.WithPartSize(partSize),
				scheduler.WithMaxConcurrent(concurrency),
				scheduler.WithLogger(opts.logger(cmd)),
			)

			var mu sync.Mutex
			results := s.UploadAll(cmd.Context(), sources, func(p scheduler.Progress) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(out(cmd), "%s: %d/%d parts (%.0f%%)\n", p.FileName, p.PartsCompleted, p.TotalChunks, p.Percent())
			})

			var failed int
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out(cmd), "%s: %s: %v\n", r.FileName, r.Outcome, r.Err)
					continue
				}
				fmt.Fprintf(out(cmd), "%s: %s %s\n", r.FileName, r.Outcome, r.FileID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads did not complete", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&partSize, "part-size", scheduler.DefaultPartSize, "chunk size in bytes, from 5MiB up to just under 8MiB")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "files uploaded at once, 0 for no limit")
	return cmd
}

func openSource(path string) (scheduler.FileSource, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return scheduler.FileSource{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return scheduler.FileSource{}, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return scheduler.FileSource{}, nil, fmt.Errorf("%w: %s is a directory", domain.ErrValidation, path)
	}

	contentType := "text/csv"
	if mt, err := mimetype.DetectReader(f); err == nil && !mt.Is("text/plain") && !mt.Is("text/csv") {
		contentType = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return scheduler.FileSource{}, nil, fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	return scheduler.FileSource{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: contentType,
		Reader:      f,
	}, func() { f.Close() }, nil
}
