package internal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

const tmpSuffix = ".tmp"

// ErrPartialReplace means the rewritten content is complete in the temp file
// but could not be moved over the original. The temp file is left on disk.
var ErrPartialReplace = errors.New("replace incomplete")

// ReplaceFile rewrites path, substituting every occurrence of p with repl.
// New content is written to a sibling path+".tmp"; only when the pattern was
// found is the original removed and the temp file renamed into its place.
// Otherwise the temp file is removed and the original is left untouched.
func ReplaceFile(path string, p *PlainPattern, repl string) (changed bool, err error) {
	in, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("could not open file for reading: %w", err)
	}
	mode := os.FileMode(0644)
	if st, err := in.Stat(); err == nil {
		mode = st.Mode().Perm()
	}

	tmpPath := path + tmpSuffix
	// O_EXCL: a leftover temp file may hold content from an earlier partial replace.
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		in.Close()
		if errors.Is(err, os.ErrExist) {
			return false, fmt.Errorf("temporary file %s already exists, remove it to retry: %w", tmpPath, err)
		}
		return false, fmt.Errorf("could not create temporary file %s: %w", tmpPath, err)
	}

	changed, err = replaceStream(in, out, p, repl)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	in.Close()
	if err != nil {
		_ = os.Remove(tmpPath)
		return false, fmt.Errorf("write temporary file: %w", err)
	}

	if !changed {
		if err := os.Remove(tmpPath); err != nil {
			return false, fmt.Errorf("remove temporary file: %w", err)
		}
		return false, nil
	}

	if err := os.Remove(path); err != nil {
		return true, fmt.Errorf("%w: could not remove original file (new content in %s): %v", ErrPartialReplace, tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return true, fmt.Errorf("%w: could not rename temporary file %s: %v", ErrPartialReplace, tmpPath, err)
	}
	return true, nil
}

// replaceStream copies r to w line by line, keeping each line terminator as read.
func replaceStream(r io.Reader, w io.Writer, p *PlainPattern, repl string) (bool, error) {
	br := bufio.NewReaderSize(r, readBufSize)
	bw := bufio.NewWriterSize(w, readBufSize)
	changed := false
	for {
		b, err := br.ReadBytes('\n')
		if len(b) > 0 {
			line, eol := splitEOL(b)
			if out, ok := p.Replace(string(line), repl); ok {
				changed = true
				bw.WriteString(out)
				bw.Write(eol)
			} else {
				bw.Write(b)
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return changed, err
		}
	}
	return changed, bw.Flush()
}
