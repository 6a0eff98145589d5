package internal

import "time"

// reporter periodically logs the running total until the aggregate is
// marked complete. It has no other stop signal.
type reporter struct {
	agg      *Aggregate
	log      *Logger
	interval time.Duration

	// observe, when set, sees every snapshot taken (tests only).
	observe func(total uint64, complete bool)
}

// run checks completion before logging and logs before waiting, so the last
// line it prints is the last total seen strictly before completion.
func (r *reporter) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		total, complete := r.agg.Snapshot()
		if r.observe != nil {
			r.observe(total, complete)
		}
		if complete {
			return
		}
		r.log.Infof("Total occurrences found so far: %d", total)
		<-ticker.C
	}
}
