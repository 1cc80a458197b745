// =============================================================================
// Presumed Calculation - Processor Module
// =============================================================================
//
// The processor orchestrates a merge run over the master template:
//
// RUN PIPELINE:
//   1. Load the cached master template and validate its layout
//   2. For each queued branch export, in enqueue order:
//      a. Extract the CFOP lines of the branch
//      b. Merge them into the master sheet
//      c. Accumulate the leftovers
//   3. Append all leftovers below the last data row, highlighted
//   4. Clear the leftovers
//   5. Save on request, flagging formulas for recalculation
//
// CONCURRENCY:
//   A run executes on a single goroutine. Source files are never merged in
//   parallel because every merge mutates the same master sheet. A mutex
//   keeps Save and Workbook from observing a file half merged.
//
// =============================================================================

package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/presumed-calculation/internal/config"
	"github.com/ginjaninja78/presumed-calculation/internal/extractor"
	"github.com/ginjaninja78/presumed-calculation/internal/merge"
	"github.com/ginjaninja78/presumed-calculation/internal/queue"
	"github.com/ginjaninja78/presumed-calculation/internal/reconcile"
	"github.com/ginjaninja78/presumed-calculation/internal/sheet"
	"github.com/ginjaninja78/presumed-calculation/internal/types"
	"github.com/ginjaninja78/presumed-calculation/internal/validation"
)

// ErrRunInProgress is returned by Start while a previous run has not
// finished.
var ErrRunInProgress = errors.New("a merge run is already in progress")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// FileResult represents the outcome of merging a single source file.
type FileResult struct {
	// Path is the source file.
	Path string

	// Branch is the branch parsed from the file name; 0 when malformed.
	Branch int

	// Lines is the number of lines extracted.
	Lines int

	// Stats holds the merge statistics. Zero when Err is set.
	Stats merge.Stats

	// Err is the MalformedFileNameError or ExtractionError of the file.
	Err error
}

// Result represents the outcome of a run.
type Result struct {
	RunID     uuid.UUID
	Template  string
	StartTime time.Time
	EndTime   time.Time

	// Files lists the processed source files in processing order.
	Files []FileResult

	// Failed is the number of files that were skipped.
	Failed int

	// Extracted is the number of lines read across all files.
	Extracted int

	// Matched is the number of master rows that received totals.
	Matched int

	// Appended is the number of unmatched rows written below the data.
	Appended int

	// Dropped is the number of lines that could not be attributed to any
	// CNPJ and were therefore neither matched nor appended.
	Dropped int
}

// Duration returns the wall time of the run.
func (r Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// =============================================================================
// RUN HANDLE
// =============================================================================

// Run is the handle of a started merge run.
type Run struct {
	done   chan struct{}
	result Result
	err    error
}

// Done is closed when the run completes.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run completes.
//
// RETURNS:
//   - The run result. It is populated even when err is not nil, and the
//     master workbook is left ready to save.
//   - A joined error of every malformed file name, the strict-mode
//     extraction failure, a cancellation, and any write failure.
func (r *Run) Wait() (Result, error) {
	<-r.done
	return r.result, r.err
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor owns the master workbook and the run-scoped unmatched set.
type Processor struct {
	cfg    *config.Config
	logger *zap.Logger

	extractor *extractor.Extractor
	engine    *merge.Engine
	writer    *reconcile.Writer
	queue     *queue.Queue

	// mu guards every field below.
	mu        sync.Mutex
	running   bool
	workbook  *sheet.Workbook
	master    *sheet.Worksheet
	unmatched types.UnmatchedSet
}

// New creates a new Processor.
//
// PARAMETERS:
//   - cfg: The application configuration.
//   - logger: The logger; nil disables logging.
func New(cfg *config.Config, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		cfg:       cfg,
		logger:    logger,
		extractor: extractor.New(logger),
		engine:    merge.New(logger),
		writer:    reconcile.New(logger),
		queue:     queue.New(),
	}
}

// Enqueue appends source files to the processing queue. It may be called
// while a run is in progress.
func (p *Processor) Enqueue(paths ...string) {
	p.queue.Enqueue(paths...)
}

// Pending returns the number of queued source files.
func (p *Processor) Pending() int {
	return p.queue.Len()
}

// =============================================================================
// RUN
// =============================================================================

// Start loads the master template and launches a run over the queue.
//
// RETURNS:
//   - The run handle.
//   - *types.TemplateMissingError when the cached template does not exist,
//     an error when it cannot be opened or has no data rows, or
//     ErrRunInProgress. No goroutine is started in these cases.
func (p *Processor) Start(ctx context.Context) (*Run, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil, ErrRunInProgress
	}

	templatePath := p.cfg.TemplatePath()
	wb, err := p.loadTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	if p.workbook != nil {
		p.workbook.Close()
	}
	p.workbook = wb
	p.master, _ = wb.Sheet(0)
	p.unmatched.Clear()
	p.running = true

	run := &Run{done: make(chan struct{})}
	result := Result{
		RunID:     uuid.New(),
		Template:  templatePath,
		StartTime: time.Now(),
	}

	go func() {
		defer close(run.done)
		run.result, run.err = p.run(ctx, result)

		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	return run, nil
}

func (p *Processor) loadTemplate(path string) (*sheet.Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, &types.TemplateMissingError{Path: path}
	}

	wb, err := sheet.OpenWorkbook(path, p.cfg.HighlightColor)
	if err != nil {
		return nil, fmt.Errorf("failed to load master template: %w", err)
	}

	check := validation.ValidateTemplate(wb)
	if err := check.Err(); err != nil {
		wb.Close()
		return nil, fmt.Errorf("invalid master template %s: %w", path, err)
	}
	for _, problem := range check.Errors {
		p.logger.Warn("master template", zap.String("problem", problem.Error()))
	}
	return wb, nil
}

// run drains the queue. It is the only goroutine touching the master sheet
// between Start and completion, and it holds mu while merging each file.
func (p *Processor) run(ctx context.Context, result Result) (Result, error) {
	log := p.logger.With(zap.String("run_id", result.RunID.String()))
	log.Info("merge run started", zap.String("template", result.Template), zap.Int("queued", p.queue.Len()))

	var errs []error
	for {
		if err := ctx.Err(); err != nil {
			log.Warn("merge run cancelled", zap.Int("remaining", p.queue.Len()))
			errs = append(errs, err)
			break
		}

		path, ok := p.queue.Dequeue()
		if !ok {
			break
		}

		fr, err := p.processFile(path)
		result.Files = append(result.Files, fr)
		result.Extracted += fr.Lines
		result.Matched += fr.Stats.Matched
		result.Dropped += fr.Stats.DroppedTotal()
		if fr.Err != nil {
			result.Failed++
		}
		if err != nil {
			errs = append(errs, err)
			if stop(err, p.cfg.StrictExtraction) {
				break
			}
		}
	}

	appended, err := p.reconcile()
	result.Appended = appended
	if err != nil {
		errs = append(errs, err)
	}

	result.EndTime = time.Now()
	log.Info("merge run finished",
		zap.Int("files", len(result.Files)),
		zap.Int("failed", result.Failed),
		zap.Int("matched", result.Matched),
		zap.Int("appended", result.Appended),
		zap.Int("dropped", result.Dropped),
		zap.Duration("duration", result.Duration()),
	)
	return result, errors.Join(errs...)
}

// stop reports whether err ends the run. Malformed names never do;
// extraction failures do in strict mode; anything else does.
func stop(err error, strict bool) bool {
	var malformed *types.MalformedFileNameError
	if errors.As(err, &malformed) {
		return false
	}
	var failure *types.ExtractionError
	if errors.As(err, &failure) {
		return strict
	}
	return true
}

// processFile extracts and merges one source file.
//
// RETURNS:
//   - The per-file result.
//   - The error to surface through Wait: malformed names always, extraction
//     failures only in strict mode, merge write failures always.
func (p *Processor) processFile(path string) (FileResult, error) {
	fr := FileResult{Path: path}
	fr.Branch, _ = extractor.ParseBranch(path)

	ext, err := p.extractor.Extract(path)
	if err != nil {
		fr.Err = err

		var malformed *types.MalformedFileNameError
		if errors.As(err, &malformed) {
			p.logger.Warn("skipping source file with malformed name", zap.String("file", path), zap.Error(err))
			return fr, err
		}
		if p.cfg.StrictExtraction {
			return fr, err
		}
		// Already logged by the extractor.
		return fr, nil
	}
	fr.Lines = ext.Len()

	p.mu.Lock()
	defer p.mu.Unlock()

	stats, err := p.engine.Merge(p.master, ext, &p.unmatched)
	fr.Stats = stats
	if err != nil {
		return fr, fmt.Errorf("failed to merge %s: %w", filepath.Base(path), err)
	}

	p.logger.Info("merged source file",
		zap.String("file", path),
		zap.Int("branch", fr.Branch),
		zap.Int("lines", fr.Lines),
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
	)
	return fr, nil
}

// reconcile appends the accumulated leftovers once, after the queue is
// drained, and clears them on success.
func (p *Processor) reconcile() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.master.MaxDataRow() + 1
	next, err := p.writer.AppendUnmatched(p.master, &p.unmatched, start)
	if err != nil {
		return next - start, fmt.Errorf("failed to append unmatched lines: %w", err)
	}
	p.unmatched.Clear()
	return next - start, nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save flags formulas for recalculation and writes the master workbook to
// path as xlsx, creating the parent directory.
//
// RETURNS:
//   - *types.PersistenceError if the workbook cannot be written.
func (p *Processor) Save(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.workbook == nil {
		return &types.PersistenceError{Path: path, Err: errors.New("no master workbook loaded")}
	}
	if err := p.workbook.Recalculate(); err != nil {
		return &types.PersistenceError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &types.PersistenceError{Path: path, Err: err}
	}
	if err := p.workbook.SaveAs(path); err != nil {
		return &types.PersistenceError{Path: path, Err: err}
	}

	p.logger.Info("saved master workbook", zap.String("file", path))
	return nil
}

// Workbook returns the master sheet of the last started run, or nil.
func (p *Processor) Workbook() sheet.Grid {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.master == nil {
		return nil
	}
	return p.master
}

// Close releases the master workbook. It fails with ErrRunInProgress while
// a run is active.
func (p *Processor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrRunInProgress
	}
	if p.workbook == nil {
		return nil
	}
	err := p.workbook.Close()
	p.workbook, p.master = nil, nil
	return err
}
