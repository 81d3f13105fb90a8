// Package filesystem reads documents from a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DocumentSource  = (*Source)(nil)
	_ driven.DocumentWatcher = (*Source)(nil)
)

// Source enumerates files under a root whose extension is in the allowlist.
// Hidden files and directories are ignored.
type Source struct {
	root       string
	extensions map[string]struct{}
}

// New creates a source for root. Extensions are matched case-insensitively,
// with or without the leading dot.
func New(root string, extensions ...string) *Source {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = struct{}{}
	}
	return &Source{root: root, extensions: exts}
}

// Root returns the document root.
func (s *Source) Root() string {
	return s.root
}

// LatestModTime returns the newest mtime of eligible files in unix seconds.
// A missing or unreadable root has no eligible files and yields 0.
func (s *Source) LatestModTime(ctx context.Context) (float64, error) {
	var latest float64
	err := s.walk(ctx, func(path string, info fs.FileInfo) {
		if m := unixSeconds(info); m > latest {
			latest = m
		}
	})
	return latest, err
}

// Load reads every eligible file. Unreadable files are skipped and counted.
func (s *Source) Load(ctx context.Context) ([]domain.Document, int, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		absRoot = s.root
	}

	var (
		docs       []domain.Document
		unreadable int
	)
	err = s.walk(ctx, func(path string, info fs.FileInfo) {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logger.Warn("skip unreadable file %s: %v", path, readErr)
			unreadable++
			return
		}

		text := string(data)
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "�")
		}

		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			abs = path
		}
		rel, relErr := filepath.Rel(absRoot, abs)
		if relErr != nil {
			rel = ""
		}

		docs = append(docs, domain.Document{
			RawText:      text,
			SourcePath:   abs,
			RelativePath: filepath.ToSlash(rel),
			DisplayName:  info.Name(),
			ModTime:      info.ModTime(),
		})
	})
	if err != nil {
		return nil, 0, err
	}

	logger.Debug("loaded %d documents from %s (%d unreadable)", len(docs), s.root, unreadable)
	return docs, unreadable, nil
}

// Eligible reports whether path names a document this source would index.
func (s *Source) Eligible(path string) bool {
	if isHidden(relativeTo(s.root, path)) {
		return false
	}
	_, ok := s.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// walk calls fn for each eligible regular file in lexical order.
// Filesystem errors never abort the walk; only context cancellation does.
func (s *Source) walk(ctx context.Context, fn func(path string, info fs.FileInfo)) error {
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == s.root {
				logger.Warn("document root %s not readable: %v", s.root, err)
				return fs.SkipAll
			}
			logger.Warn("skip %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != s.root && isHidden(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !s.Eligible(path) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			logger.Warn("skip %s: %v", path, infoErr)
			return nil
		}
		fn(path, info)
		return nil
	})
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func unixSeconds(info fs.FileInfo) float64 {
	return float64(info.ModTime().UnixNano()) / 1e9
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
