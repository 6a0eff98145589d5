package internal

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"time"
)

const readBufSize = 64 * 1024

// fileResult is one worker's private tally. It is folded into the Aggregate
// once and then dropped.
type fileResult struct {
	Occurrences uint64
	Lines       int
	Selected    int // lines containing the pattern, or not containing it with invert
	FirstLine   int // 1-based number of the first selected line, 0 if none
	Elapsed     time.Duration
}

// countReader streams lines from reader and adds them to res.
// Reading stops early with ctx.Err() once ctx is done.
func countReader(ctx context.Context, reader io.Reader, p *PlainPattern, invert bool, res *fileResult) error {
	br := bufio.NewReaderSize(reader, readBufSize)
	done := ctx.Done()
	for {
		select {
		case <-done:
			return ctx.Err()
		default:
		}

		b, err := br.ReadBytes('\n')
		if len(b) > 0 {
			res.Lines++
			line := string(trimEOL(b))
			matched := p.Match(line)
			if matched {
				res.Occurrences += uint64(p.Count(line))
			}
			if matched != invert {
				res.Selected++
				if res.FirstLine == 0 {
					res.FirstLine = res.Lines
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// trimEOL drops a trailing "\n" or "\r\n".
func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte{'\n'})
	return bytes.TrimSuffix(b, []byte{'\r'})
}

// splitEOL separates a line from its terminator so it can be written back as read.
func splitEOL(b []byte) (line, eol []byte) {
	line = trimEOL(b)
	return line, b[len(line):]
}
