package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rlch/salvage"
	"github.com/rlch/salvage/recovery"
)

// Runner parses files and recovers the ones that fail.
type Runner struct {
	driver   *recovery.Driver
	handler  Handler
	failFast bool
	rounds   int
	jobs     int
	logger   *zap.Logger
	read     func(path string) (string, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithDriver sets the recovery driver. Its parser is used for the first parse.
func WithDriver(d *recovery.Driver) Option {
	return func(r *Runner) {
		r.driver = d
	}
}

// WithHandler sets the event handler.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithFailFast stops on first unrecovered file.
func WithFailFast(enabled bool) Option {
	return func(r *Runner) {
		r.failFast = enabled
	}
}

// WithRounds sets how many recovery passes a failing file gets.
func WithRounds(n int) Option {
	return func(r *Runner) {
		r.rounds = n
	}
}

// WithJobs caps how many files are processed at once.
func WithJobs(n int) Option {
	return func(r *Runner) {
		r.jobs = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{
		rounds: salvage.DefaultRounds,
		read:   readFile,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.jobs <= 0 {
		r.jobs = runtime.GOMAXPROCS(0)
	}

	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	return r
}

// Run processes files concurrently and returns the results.
//
// A stop requested by a handler (see StopOnFailHandler) ends the run early
// without an error; files not yet started are skipped.
func (r *Runner) Run(ctx context.Context, files []string) (*Result, error) {
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	result := NewResult()

	handlers := []Handler{NewResultHandler()}
	if r.handler != nil {
		handlers = append(handlers, r.handler)
	}

	if r.failFast {
		handlers = append(handlers, NewStopOnFailHandler(1))
	}

	handler := &serialHandler{next: NewMultiHandler(handlers...)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(r.jobs, len(files))))

	for _, path := range files {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			return r.runFile(gctx, path, handler, result)
		})
	}

	err := g.Wait()

	result.Finish()

	if errors.Is(err, ErrMaxFailures) {
		return result, nil
	}

	if err != nil {
		return result, err
	}

	// A cancelled parent stops the loop without any goroutine failing.
	return result, ctx.Err()
}

func (r *Runner) runFile(ctx context.Context, path string, handler Handler, result *Result) error {
	start := time.Now()

	err := handler.Event(ctx, Event{Time: start, Action: ActionRun, File: path}, result)
	if err != nil {
		return err
	}

	source, err := r.read(path)
	if err != nil {
		return r.emitError(ctx, path, start, err, handler, result)
	}

	first := r.driver.Parser().Parse(path, source)
	if first.OK() {
		return handler.Event(ctx, Event{
			Time:    time.Now(),
			Action:  ActionClean,
			File:    path,
			Elapsed: time.Since(start),
		}, result)
	}

	outcome, err := r.driver.RecoverRounds(path, source, first.Diagnostics, r.rounds)
	if err != nil {
		return r.emitError(ctx, path, start, err, handler, result)
	}

	action := ActionRecovered
	if !outcome.Result.OK() {
		action = ActionUnrecovered
	}

	r.logger.Debug("recovered file",
		zap.String("file", path),
		zap.String("action", string(action)),
		zap.Int("rounds", outcome.Rounds),
		zap.Int("patches", len(outcome.Patches)),
		zap.Int("remaining", len(outcome.Result.Diagnostics)))

	return handler.Event(ctx, Event{
		Time:        time.Now(),
		Action:      action,
		File:        path,
		Elapsed:     time.Since(start),
		Diagnostics: outcome.Result.Diagnostics,
		Patches:     outcome.Patches,
		Rounds:      outcome.Rounds,
	}, result)
}

func (r *Runner) emitError(
	ctx context.Context,
	path string,
	start time.Time,
	err error,
	handler Handler,
	result *Result,
) error {
	r.logger.Debug("file failed", zap.String("file", path), zap.Error(err))

	return handler.Event(ctx, Event{
		Time:    time.Now(),
		Action:  ActionError,
		File:    path,
		Elapsed: time.Since(start),
		Error:   err,
	}, result)
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// serialHandler lets concurrent workers share handlers that are not
// goroutine-safe.
type serialHandler struct {
	mu   sync.Mutex
	next Handler
}

func (s *serialHandler) Event(ctx context.Context, event Event, result *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.next.Event(ctx, event, result)
}

func (s *serialHandler) Err(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.next.Err(text)
}
