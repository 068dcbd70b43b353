package sass

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// ConcurrentCompiler compiles independent stylesheet files in parallel.
// Each compile is isolated: its own parse, import cache and global scope.
type ConcurrentCompiler struct {
	workers int
}

// NewConcurrentCompiler creates a compiler with the given worker count.
// A non-positive count uses one worker per CPU.
func NewConcurrentCompiler(workers int) *ConcurrentCompiler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ConcurrentCompiler{workers: workers}
}

// CompileResult is the outcome of compiling one file.
type CompileResult struct {
	Filename string
	CSS      string
	Err      error
}

// CompileFiles compiles every file concurrently and returns one result
// per input, in input order. Per-file failures are reported in the
// result, not returned; only context cancellation aborts the batch.
func (cc *ConcurrentCompiler) CompileFiles(ctx context.Context, files []string, opts *Options) ([]CompileResult, error) {
	if len(files) == 0 {
		return nil, nil
	}

	type job struct {
		index int
		file  string
	}
	jobs := make(chan job, len(files))
	results := make([]CompileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < cc.workers && i < len(files); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				// per-file options so the error position and default
				// loader track the file itself
				var fileOpts Options
				if opts != nil {
					fileOpts = *opts
				}
				fileOpts.Filename = ""
				css, err := CompileFile(j.file, &fileOpts)
				results[j.index] = CompileResult{Filename: j.file, CSS: css, Err: err}
			}
		}()
	}

	for i, file := range files {
		select {
		case jobs <- job{index: i, file: file}:
		case <-ctx.Done():
			close(jobs)
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// CompileAll compiles every file and fails if any compile failed,
// aggregating the per-file errors.
func (cc *ConcurrentCompiler) CompileAll(ctx context.Context, files []string, opts *Options) (map[string]string, error) {
	results, err := cc.CompileFiles(ctx, files, opts)
	if err != nil {
		return nil, err
	}
	var errs MultiError
	out := make(map[string]string, len(results))
	for _, res := range results {
		if res.Err != nil {
			errs.Add(fmt.Errorf("%s: %w", res.Filename, res.Err))
			continue
		}
		out[res.Filename] = res.CSS
	}
	if errs.HasErrors() {
		return nil, &errs
	}
	return out, nil
}
