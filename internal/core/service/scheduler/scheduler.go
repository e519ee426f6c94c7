package scheduler

import (
	"context"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/port"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// MinPartSize is the S3 minimum for every part but the last
	MinPartSize = 5 * 1024 * 1024
	// DefaultPartSize is the part size used unless WithPartSize says otherwise
	DefaultPartSize    = MinPartSize
	defaultAbortTimout = 15 * time.Second
	defaultBeginTimout = 30 * time.Second
)

// FileSource is one local file to upload
type FileSource struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.ReaderAt
}

// Progress is reported after every accepted part
type Progress struct {
	FileName       string
	FileID         uuid.UUID
	PartsCompleted int
	TotalChunks    int
}

// Percent returns the completed share in 0..100
func (p Progress) Percent() float64 {
	if p.TotalChunks == 0 {
		return 0
	}
	return float64(p.PartsCompleted) * 100 / float64(p.TotalChunks)
}

// ProgressFunc receives progress updates. It is called from the upload goroutines,
// concurrently when several files upload at once.
type ProgressFunc func(Progress)

// Result is the terminal state of one upload
type Result struct {
	FileName string
	FileID   uuid.UUID
	Outcome  domain.UploadOutcome
	Err      error
}

// Scheduler splits files into parts and drives an upload session with them
type Scheduler struct {
	session       port.UploadSession
	partSize      int64
	maxConcurrent int
	abortTimeout  time.Duration
	beginTimeout  time.Duration
	logger        *slog.Logger
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithPartSize sets the chunk size in bytes
func WithPartSize(size int64) Option {
	return func(s *Scheduler) {
		if size > 0 {
			s.partSize = size
		}
	}
}

// WithMaxConcurrent caps how many files UploadAll sends at once. Zero means no cap.
func WithMaxConcurrent(n int) Option {
	return func(s *Scheduler) {
		s.maxConcurrent = n
	}
}

// WithAbortTimeout bounds the abort call made after a cancel or failure
func WithAbortTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.abortTimeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New creates a Scheduler over session
func New(session port.UploadSession, opts ...Option) *Scheduler {
	s := &Scheduler{
		session:      session,
		partSize:     DefaultPartSize,
		abortTimeout: defaultAbortTimout,
		beginTimeout: defaultBeginTimout,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TotalChunks returns how many parts of partSize cover size bytes
func TotalChunks(size int64, partSize int64) int {
	return int((size + partSize - 1) / partSize)
}

// Upload is a handle on one running upload
type Upload struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Cancel stops issuing parts and aborts the session. Safe to call more than once.
func (u *Upload) Cancel() {
	u.cancel()
}

// Done is closed once the upload reached its terminal state
func (u *Upload) Done() <-chan struct{} {
	return u.done
}

// Wait blocks until the upload ends and returns its result
func (u *Upload) Wait() Result {
	<-u.done
	return u.result
}

// Start uploads src in the background. Parts go out one at a time, in order.
func (s *Scheduler) Start(ctx context.Context, src FileSource, progress ProgressFunc) *Upload {
	ctx, cancel := context.WithCancel(ctx)
	u := &Upload{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(u.done)
		defer cancel()
		u.result = s.run(ctx, src, progress)
	}()
	return u
}

// UploadAll uploads every source concurrently and returns results in source order
func (s *Scheduler) UploadAll(ctx context.Context, sources []FileSource, progress ProgressFunc) []Result {
	results := make([]Result, len(sources))

	var g errgroup.Group
	if s.maxConcurrent > 0 {
		g.SetLimit(s.maxConcurrent)
	}
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = s.Start(ctx, src, progress).Wait()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Scheduler) run(ctx context.Context, src FileSource, progress ProgressFunc) Result {
	res := Result{FileName: src.Name}

	if src.Size <= 0 {
		res.Outcome = domain.UploadOutcomeFailed
		res.Err = fmt.Errorf("%w: %s is empty", domain.ErrValidation, src.Name)
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Outcome = domain.UploadOutcomeCancelled
		res.Err = domain.Surface(err)
		return res
	}

	total := TotalChunks(src.Size, s.partSize)

	handle, err := s.begin(ctx, src)
	if err != nil {
		res.Err = domain.Surface(err)
		res.Outcome = domain.OutcomeOf(res.Err)
		return res
	}
	res.FileID = handle.ID
	s.logger.Info("upload started", "file", src.Name, "file_id", handle.ID, "total_chunks", total)

	if err := ctx.Err(); err != nil {
		return s.abort(ctx, res, err)
	}

	for part := 1; part <= total; part++ {
		if err := ctx.Err(); err != nil {
			return s.abort(ctx, res, err)
		}

		offset := int64(part-1) * s.partSize
		size := min(s.partSize, src.Size-offset)

		receipt, err := s.session.SubmitPart(ctx, handle.ID, part, total, io.NewSectionReader(src.Reader, offset, size), size)
		if err != nil {
			if ctx.Err() != nil && !errors.Is(err, context.Canceled) {
				err = fmt.Errorf("%w: %w", domain.ErrCancelled, err)
			}
			return s.abort(ctx, res, err)
		}

		if progress != nil {
			progress(Progress{
				FileName:       src.Name,
				FileID:         handle.ID,
				PartsCompleted: receipt.PartsCompleted,
				TotalChunks:    total,
			})
		}
	}

	res.Outcome = domain.UploadOutcomeCompleted
	s.logger.Info("upload completed", "file", src.Name, "file_id", handle.ID)
	return res
}

// begin is not interrupted by a cancel, so a record created on the server always comes back
// with its ID and can be aborted
func (s *Scheduler) begin(ctx context.Context, src FileSource) (*domain.SessionHandle, error) {
	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.beginTimeout)
	defer cancel()
	return s.session.Begin(bctx, src.Name, src.Size, src.ContentType)
}

// abort tears the session down on a context that survives the cancel
func (s *Scheduler) abort(ctx context.Context, res Result, reason error) Result {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.abortTimeout)
	defer cancel()

	surfaced := domain.Surface(reason)
	if err := s.session.Abort(actx, res.FileID, reason); err != nil && !errors.Is(err, domain.Classify(surfaced)) {
		s.logger.Warn("abort did not complete", "file_id", res.FileID, "error", err)
	}

	res.Err = surfaced
	res.Outcome = domain.OutcomeOf(surfaced)
	s.logger.Warn("upload stopped", "file", res.FileName, "file_id", res.FileID, "outcome", res.Outcome, "error", surfaced)
	return res
}
