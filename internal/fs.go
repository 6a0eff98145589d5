package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mholt/archives"
	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/sirupsen/logrus"
)

const maxArchiveFiles = 10000 // zip-bomb protection

// ErrArchiveLimit stops an archive walk after maxArchiveFiles members.
var ErrArchiveLimit = errors.New("archive file limit reached")

// IsArchive by extension. O(1) map lookup
var archiveExt = map[string]struct{}{
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".rar": {}, ".br": {}, ".lz4": {}, ".lz": {}, ".mz": {},
	".sz": {}, ".s2": {}, ".zz": {}, ".zst": {}, ".7z": {},
}

func IsArchive(path string) bool {
	_, ok := archiveExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExpandInputs resolves the command-line inputs into the list of files to
// process. Plain file arguments are kept as given, even when they do not
// exist, so that their worker reports them. Directories are walked only with
// Recursive set.
func ExpandInputs(ctx context.Context, cfg *Config, log *Logger) []string {
	files := make([]string, 0, len(cfg.Files))
	for _, in := range cfg.Files {
		st, err := os.Stat(in)
		if err != nil || !st.IsDir() {
			files = append(files, in)
			continue
		}
		if !cfg.Recursive {
			log.Warnf("Skip: %s is a directory (use --recursive)", in)
			continue
		}
		files = append(files, expandDir(ctx, in, cfg, log)...)
	}
	return files
}

func expandDir(ctx context.Context, root string, cfg *Config, log *Logger) []string {
	var ignore gitignore.IgnoreMatcher
	if !cfg.NoIgnore {
		gi := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gi); err == nil {
			m, err := gitignore.NewGitIgnore(gi)
			if err != nil {
				log.Warnf("Could not parse %s: %v", gi, err)
			} else {
				ignore = m
			}
		}
	}

	var files []string
	err := WalkWithDepth(ctx, root, cfg.Depth, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.ErrorFields(logrus.Fields{"path": path, "err": err}, "walk error")
			return nil
		}
		if path == root {
			return nil
		}
		skip := func() error {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore != nil && ignore.Match(path, d.IsDir()) {
			return skip()
		}
		rel, _ := filepath.Rel(root, path)
		if excluded(cfg.Exclude, filepath.ToSlash(rel)) {
			return skip()
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !cfg.allowedExt(strings.ToLower(filepath.Ext(d.Name()))) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.ErrorFields(logrus.Fields{"root": root, "err": err}, "walk failed")
	}
	log.Debugf("Expanded %s into %d files", root, len(files))
	return files
}

func excluded(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// WalkWithDepth uses WalkDir and cuts branches by depth.
func WalkWithDepth(ctx context.Context, root string, maxDepth int, fn func(path string, d os.DirEntry, err error) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return fn(path, d, err)
		}
		if maxDepth > 0 {
			rel, _ := filepath.Rel(root, path)
			if rel != "." && depthCount(rel) > maxDepth {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		return fn(path, d, nil)
	})
}

func depthCount(rel string) int {
	if rel == "" {
		return 0
	}
	return strings.Count(rel, string(os.PathSeparator)) + 1
}

// walkArchive feeds every regular member of the archive at path that passes
// the extension filter to fn. It stops with ErrArchiveLimit after
// maxArchiveFiles members.
func walkArchive(ctx context.Context, path string, cfg *Config, fn func(inner string, r io.Reader) error) error {
	fsys, err := archives.FileSystem(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	count := 0
	return iofs.WalkDir(fsys, ".", func(inner string, d iofs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if count >= maxArchiveFiles {
			return ErrArchiveLimit
		}
		if !cfg.allowedExt(strings.ToLower(filepath.Ext(inner))) {
			return nil
		}
		f, err := fsys.Open(inner)
		if err != nil {
			return fmt.Errorf("open %s: %w", inner, err)
		}
		defer f.Close()
		count++
		return fn(inner, f)
	})
}
