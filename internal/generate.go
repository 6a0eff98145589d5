package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const wordsPerLine = 50

var defaultWords = []string{
	"the", "of", "and", "to", "a", "in", "for", "is", "on", "that",
	"by", "this", "with", "you", "it", "not", "or", "be", "are", "from",
	"at", "as", "your", "all", "have", "new", "more", "an", "was", "we",
	"will", "home", "can", "us", "about", "if", "page", "my", "has", "search",
	"free", "but", "our", "one", "other", "do", "no", "information", "time", "they",
}

// GenerateOptions describes a synthetic corpus for benchmarking searches.
type GenerateOptions struct {
	Dir         string
	Files       int
	SizeKB      int
	Dict        string // one word per line; built-in list when empty
	Concurrency int    // 0 - one goroutine per file
	Seed        uint64 // 0 - time based
}

func (o GenerateOptions) validate() error {
	if o.Dir == "" {
		return errors.New("output dir is required")
	}
	if o.Files <= 0 {
		return errors.New("files must be positive")
	}
	if o.SizeKB <= 0 {
		return errors.New("size must be positive")
	}
	return nil
}

// Generate writes opts.Files files named 1.txt..N.txt into opts.Dir, each at
// least opts.SizeKB KiB of random dictionary words, 50 words per line.
func Generate(ctx context.Context, opts GenerateOptions, log *Logger) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	words := defaultWords
	if opts.Dict != "" {
		var err error
		if words, err = LoadWords(opts.Dict); err != nil {
			return nil, err
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("dictionary %s has no usable words", opts.Dict)
		}
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	log.Infof("Generating %d files of %dKB each in %s", opts.Files, opts.SizeKB, opts.Dir)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	paths := make([]string, opts.Files)
	for i := range opts.Files {
		path := filepath.Join(opts.Dir, fmt.Sprintf("%d.txt", i+1))
		paths[i] = path
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(i)))
			if err := writeCorpusFile(ctx, path, words, opts.SizeKB*1024, rng); err != nil {
				return fmt.Errorf("generate %s: %w", path, err)
			}
			log.Infof("Finished: %s", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Infof("All files generated in %s", time.Since(start))
	return paths, nil
}

func writeCorpusFile(ctx context.Context, path string, words []string, target int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(f, readBufSize)

	written := 0
	for n := 1; written < target; n++ {
		if n%4096 == 0 && ctx.Err() != nil {
			f.Close()
			return ctx.Err()
		}
		w := words[rng.IntN(len(words))]
		bw.WriteString(w)
		if n%wordsPerLine == 0 {
			bw.WriteByte('\n')
		} else {
			bw.WriteByte(' ')
		}
		written += len(w) + 1
	}
	bw.WriteByte('\n')

	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadWords reads a dictionary, keeping purely alphabetic lines.
func LoadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w != "" && isAlpha(w) {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return words, nil
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
