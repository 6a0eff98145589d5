package internal

import (
	"sync/atomic"
	"time"
)

// BatchStats atomic counters for one run. FilesProcessed counts files read
// to the end, Errors the ones that failed. Occurrences live in Aggregate.
type BatchStats struct {
	start          time.Time
	FilesProcessed atomic.Int64
	Errors         atomic.Int64
	Replaced       atomic.Int64
}

func (s *BatchStats) Start() {
	s.start = time.Now()
}

func (s *BatchStats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Summary is the outcome of a batch handed back to the caller.
type Summary struct {
	Total    uint64
	Files    int
	Scanned  int64
	Failed   int64
	Replaced int64
	Elapsed  time.Duration
}

func (s *BatchStats) summary(total uint64, files int) Summary {
	return Summary{
		Total:    total,
		Files:    files,
		Scanned:  s.FilesProcessed.Load(),
		Failed:   s.Errors.Load(),
		Replaced: s.Replaced.Load(),
		Elapsed:  s.Elapsed(),
	}
}
