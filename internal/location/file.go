package location

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// settleDelay is how long the link file must stay quiet before a change is reported.
// Editors and shell redirects truncate first and write after.
const settleDelay = 100 * time.Millisecond

// File is a Location persisted as a one-line link file. Reloading the program, or another
// process editing the file, reproduces the same search.
type File struct {
	mu   sync.Mutex
	path string
	last string // last link this process wrote
}

// NewFile returns a File location at path
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the link file path
func (f *File) Path() string {
	return f.path
}

// Read returns the values in the link file. A missing or malformed file reads as empty.
func (f *File) Read() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return url.Values{}
	}
	values, err := ParseLink(string(data))
	if err != nil {
		return url.Values{}
	}
	return values
}

// Replace overwrites the link file
func (f *File) Replace(values url.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	link := FormatLink(values)
	if link == f.last {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating location directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(link+"\n"), 0644); err != nil {
		return fmt.Errorf("writing location: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing location: %w", err)
	}
	f.last = link
	return nil
}

// readLink returns the file's values, or false while the file is empty or does not
// hold a parseable link
func (f *File) readLink() (url.Values, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, false
	}
	link := strings.TrimSpace(string(data))
	if link == "" {
		return nil, false
	}
	values, err := ParseLink(link)
	if err != nil {
		return nil, false
	}
	return values, true
}

// ownWrite reports whether the file currently holds the link this process wrote last
func (f *File) ownWrite() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == f.last
}

// Watch calls onChange whenever the link file is changed by someone other than this
// process. A burst of writes is reported once, after it settles, and an empty or
// malformed file is never reported. It returns when ctx is done or the watcher fails
// to start.
func (f *File) Watch(ctx context.Context, log zerolog.Logger, onChange func(url.Values)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating location watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Warn().Err(err).Msg("closing location watcher")
		}
	}()

	// watch the directory: the file is replaced by rename, which drops file watches
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating location directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(f.path)
	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			settled = time.After(settleDelay)
		case <-settled:
			settled = nil
			if f.ownWrite() {
				continue
			}
			values, ok := f.readLink()
			if !ok {
				log.Debug().Str("path", f.path).Msg("ignoring empty or malformed location")
				continue
			}
			log.Debug().Str("path", f.path).Msg("location changed externally")
			onChange(values)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("location watcher error")
		}
	}
}
