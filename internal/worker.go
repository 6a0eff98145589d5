package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// scanWorker counts occurrences in one file and folds the count into the
// shared Aggregate exactly once, after the whole file has been read.
// A failing file contributes nothing and never affects other workers.
type scanWorker struct {
	cfg     *Config
	pattern *PlainPattern
	agg     *Aggregate
	log     *Logger
	stats   *BatchStats

	// beforeFold, when set, runs right before the fold (tests vary timing with it).
	beforeFold func(path string)
	// done runs after the worker finished, whatever the outcome.
	done func()
}

func (w *scanWorker) run(ctx context.Context, path string) {
	if w.done != nil {
		defer w.done()
	}
	start := time.Now()

	var res fileResult
	var err error
	if w.cfg.Archives && IsArchive(path) {
		err = w.scanArchive(ctx, path, &res)
	} else {
		err = w.scanFile(ctx, path, &res)
	}
	if err != nil {
		w.stats.Errors.Add(1)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			w.log.Warnf("Scan of %s interrupted: %v", path, err)
			return
		}
		msg := "Could not scan file " + path
		if isOpenErr(err) {
			msg = "Could not open file " + path
		}
		w.log.ErrorFields(logrus.Fields{"err": err}, msg)
		return
	}
	res.Elapsed = time.Since(start)
	w.stats.FilesProcessed.Add(1)

	if w.beforeFold != nil {
		w.beforeFold(path)
	}
	w.agg.FoldIn(res.Occurrences)

	w.log.Infof("Found %d occurrences in %s", res.Occurrences, path)
	if w.cfg.InvertMatch || w.cfg.LineNumber {
		first := ""
		if w.cfg.LineNumber && res.FirstLine > 0 {
			first = fmt.Sprintf(", first at line %d", res.FirstLine)
		}
		w.log.Infof("Selected %d of %d lines in %s%s", res.Selected, res.Lines, path, first)
	}
	w.log.Infof("Processed %s in %s", path, res.Elapsed)
}

func (w *scanWorker) scanFile(ctx context.Context, path string, res *fileResult) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := countReader(ctx, f, w.pattern, w.cfg.InvertMatch, res); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func (w *scanWorker) scanArchive(ctx context.Context, path string, res *fileResult) error {
	err := walkArchive(ctx, path, w.cfg, func(inner string, r io.Reader) error {
		before := res.Occurrences
		if err := countReader(ctx, r, w.pattern, w.cfg.InvertMatch, res); err != nil {
			return fmt.Errorf("read %s: %w", inner, err)
		}
		w.log.Debugf("Found %d occurrences in %s (%s)", res.Occurrences-before, path, inner)
		return nil
	})
	if errors.Is(err, ErrArchiveLimit) {
		w.log.Warnf("Archive %s truncated: more than %d files", path, maxArchiveFiles)
		return nil
	}
	return err
}

func isOpenErr(err error) bool {
	var pe *os.PathError
	return errors.As(err, &pe) && pe.Op == "open"
}
