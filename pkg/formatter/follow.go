package formatter

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/logging"
	"github.com/fsnotify/fsnotify"
)

// Follower formats a growing file as it is written, like tail -f. Only
// complete lines are formatted; a trailing partial line waits for its
// newline.
type Follower struct {
	path      string
	formatter *Formatter
	out       io.Writer

	offset  int64
	partial []byte
}

// NewFollower creates a follower writing formatted lines of path to out
func NewFollower(path string, f *Formatter, out io.Writer) *Follower {
	return &Follower{path: path, formatter: f, out: out}
}

// Run prints the current content of the file and then every line appended
// to it until ctx is cancelled. A file that shrinks is read again from the
// start.
func (fl *Follower) Run(ctx context.Context) error {
	logger := logging.WithFields(map[string]interface{}{"component": "follow", "path": fl.path})

	if _, err := os.Stat(fl.path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileNotFound, "input file not found: %s", fl.path).
				WithDetail("path", fl.path)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", fl.path).
			WithDetail("path", fl.path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so that a file replaced by rotation is picked up
	if err := watcher.Add(filepath.Dir(fl.path)); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to watch %s", fl.path)
	}

	if err := fl.drain(); err != nil {
		return err
	}
	logger.Debug().Int64("offset", fl.offset).Msg("Following file")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(fl.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := fl.drain(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// drain reads everything past the current offset and writes the complete
// lines it holds
func (fl *Follower) drain() error {
	f, err := os.Open(fl.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Rotated away; wait for it to come back
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", fl.path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", fl.path)
	}
	if info.Size() < fl.offset {
		logger := logging.GetLogger("follow")
		logger.Info().Str("path", fl.path).Msg("File truncated, reading from start")
		fl.offset = 0
		fl.partial = nil
	}

	if _, err := f.Seek(fl.offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to seek %s", fl.path)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", fl.path)
	}
	fl.offset += int64(len(data))

	buf := append(fl.partial, data...)
	end := bytes.LastIndexByte(buf, '\n')
	if end < 0 {
		fl.partial = buf
		return nil
	}
	fl.partial = append([]byte(nil), buf[end+1:]...)

	out := fl.formatter.Format(string(buf[:end])) + "\n"
	if _, err := io.WriteString(fl.out, out); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write output")
	}
	return nil
}
