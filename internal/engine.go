package internal

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine runs one batch over Config.Files, in search or replace mode.
type Engine struct {
	log         *Logger
	progressOut io.Writer

	// test hooks
	beforeFold func(path string)
	observe    func(total uint64, complete bool)
}

func NewEngine(log *Logger) *Engine {
	return &Engine{log: log, progressOut: os.Stderr}
}

// Run processes the batch and returns its summary. It never fails: problems
// with single files are logged, counted and skipped.
func (e *Engine) Run(ctx context.Context, cfg *Config) Summary {
	var stats BatchStats
	stats.Start()

	if cfg.ReplaceMode {
		e.replaceAll(ctx, cfg, &stats)
		s := stats.summary(0, len(cfg.Files))
		e.log.Infof("Finished processing files in %s", s.Elapsed)
		return s
	}

	total := e.search(ctx, cfg, &stats)
	s := stats.summary(total, len(cfg.Files))
	e.log.Infof("Total occurrences found: %d", s.Total)
	e.log.Infof("Finished processing files in %s", s.Elapsed)
	return s
}

// search starts the reporter and one worker per file, waits for every worker,
// marks completion and then waits for the reporter to notice it.
func (e *Engine) search(ctx context.Context, cfg *Config, stats *BatchStats) uint64 {
	agg := &Aggregate{}

	interval := cfg.ReportInterval
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	rep := &reporter{agg: agg, log: e.log, interval: interval, observe: e.observe}
	repDone := make(chan struct{})
	go func() {
		defer close(repDone)
		rep.run()
	}()

	w := &scanWorker{
		cfg:        cfg,
		pattern:    cfg.pattern(),
		agg:        agg,
		log:        e.log,
		stats:      stats,
		beforeFold: e.beforeFold,
	}
	var bar *progressbar.ProgressBar
	if cfg.Progress && len(cfg.Files) > 0 {
		bar = progressbar.NewOptions(len(cfg.Files),
			progressbar.OptionSetWriter(e.log.Locked(e.progressOut)),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		w.done = func() { _ = bar.Add(1) }
	}

	if cfg.Threads > 0 {
		e.fanOutPool(ctx, cfg, w, stats)
	} else {
		fanOut(ctx, cfg.Files, w)
	}

	agg.MarkComplete()
	<-repDone
	if bar != nil {
		_ = bar.Finish()
	}

	total, _ := agg.Snapshot()
	return total
}

// fanOut runs one goroutine per file, without a limit.
func fanOut(ctx context.Context, files []string, w *scanWorker) {
	var g errgroup.Group
	for _, path := range files {
		g.Go(func() error {
			w.run(ctx, path)
			return nil
		})
	}
	_ = g.Wait()
}

// fanOutPool bounds the number of concurrent workers to cfg.Threads.
func (e *Engine) fanOutPool(ctx context.Context, cfg *Config, w *scanWorker, stats *BatchStats) {
	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(cfg.Threads, func(i interface{}) {
		defer wg.Done()
		w.run(ctx, i.(string))
	})
	if err != nil {
		e.log.Warnf("Worker pool unavailable (%v), using one goroutine per file", err)
		fanOut(ctx, cfg.Files, w)
		return
	}
	defer pool.Release()

	for _, path := range cfg.Files {
		wg.Add(1)
		if err := pool.Invoke(path); err != nil {
			wg.Done()
			stats.Errors.Add(1)
			e.log.ErrorFields(logrus.Fields{"file": path, "err": err}, "submit task")
		}
	}
	wg.Wait()
}

// replaceAll rewrites files one at a time. A failed file is logged and skipped.
// Replacement is always case-sensitive; IgnoreCase only affects searching.
func (e *Engine) replaceAll(ctx context.Context, cfg *Config, stats *BatchStats) {
	p := NewPlainPattern(cfg.Pattern, false)
	for i, path := range cfg.Files {
		if ctx.Err() != nil {
			e.log.Warnf("Replace interrupted, %d files not processed", len(cfg.Files)-i)
			return
		}
		changed, err := ReplaceFile(path, p, cfg.Replacement)
		if err != nil {
			stats.Errors.Add(1)
			e.log.ErrorFields(logrus.Fields{"file": path, "err": err}, "Replace failed")
			continue
		}
		stats.FilesProcessed.Add(1)
		if changed {
			stats.Replaced.Add(1)
			e.log.Infof("Replaced matches in: %s", path)
		} else {
			e.log.Infof("No matches found in: %s", path)
		}
	}
}
