// Package filesystem reads shareholder letters from a local directory.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/moatlabs/omaha/internal/core/domain"
	"github.com/moatlabs/omaha/internal/core/ports/driven"
	"github.com/moatlabs/omaha/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.LetterSource = (*Source)(nil)

// yearPattern matches a plausible letter year in a filename.
var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// mimeByExt maps the file extensions letters ship in to MIME types.
// Files with other extensions are ignored.
var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
}

// Source reads letter files from a directory.
type Source struct {
	dir string
}

// New creates a letter source over the given directory.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the directory being read.
func (s *Source) Dir() string {
	return s.dir
}

// List returns all letter files in the directory, ordered by name.
// Subdirectories, hidden files and unrecognised extensions are skipped.
func (s *Source) List(ctx context.Context) ([]domain.RawFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read letters directory %s: %w", s.dir, err)
	}

	var files []domain.RawFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		raw, ok, err := s.read(entry.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, raw)
		}
	}

	return files, nil
}

// Watch emits letter files as they are created or modified, until ctx
// is cancelled.
func (s *Source) Watch(ctx context.Context) (<-chan domain.RawFile, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	files := make(chan domain.RawFile)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}

				// Give the writer a moment to finish the file.
				time.Sleep(100 * time.Millisecond)

				raw, keep, err := s.read(filepath.Base(event.Name))
				if err != nil {
					logger.Warn("watch: %v", err)
					continue
				}
				if !keep {
					continue
				}

				select {
				case files <- raw:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()

	return files, errs, nil
}

// read loads one file by name. The second return is false when the
// file should be skipped.
func (s *Source) read(name string) (domain.RawFile, bool, error) {
	if strings.HasPrefix(name, ".") {
		return domain.RawFile{}, false, nil
	}

	mimeType, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return domain.RawFile{}, false, nil
	}

	path := filepath.Join(s.dir, name)
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawFile{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	return domain.RawFile{
		SourceID: name,
		URI:      path,
		MIMEType: mimeType,
		Year:     yearFromFilename(name),
		Content:  content,
	}, true, nil
}

// yearFromFilename derives the letter year from a filename like
// "1994.pdf" or "ltr2015.pdf". Returns empty if no year is present.
func yearFromFilename(name string) string {
	return yearPattern.FindString(name)
}
