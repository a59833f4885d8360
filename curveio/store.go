package curveio

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	goutils "go.viam.com/utils"

	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/logging"
)

// Store persists a curve series to a single file.
type Store struct {
	path   string
	logger logging.Logger

	// writeMu keeps concurrent saves from interleaving their renames.
	writeMu sync.Mutex
}

// NewStore returns a store for the file at path. The file need not exist yet.
func NewStore(path string, logger logging.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Save copies curves before returning, then writes the copy in the background. Edits made to the
// curves after Save returns never reach the file written by this call. The channel receives the
// outcome of the write and is then closed.
func (s *Store) Save(curves []*curve.Curve) <-chan error {
	snapshot := lo.Map(curves, func(c *curve.Curve, _ int) *curve.Curve { return c.Copy() })
	done := make(chan error, 1)
	goutils.PanicCapturingGo(func() {
		defer close(done)
		err := s.write(snapshot)
		if err != nil {
			s.logger.Errorw("failed to save curves", "path", s.path, "error", err)
		} else {
			s.logger.Debugw("saved curves", "path", s.path, "count", len(snapshot))
		}
		done <- err
	})
	return done
}

// SaveCollection is Save on the current contents of coll.
func (s *Store) SaveCollection(coll *curve.Collection) <-chan error {
	return s.Save(coll.Snapshot())
}

func (s *Store) write(curves []*curve.Curve) (err error) {
	data, err := Marshal(curves)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file next to %q", s.path)
	}
	defer func() {
		if err != nil {
			goutils.UncheckedError(os.Remove(tmp.Name()))
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		goutils.UncheckedError(tmp.Close())
		return errors.Wrapf(err, "failed to write %q", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		goutils.UncheckedError(tmp.Close())
		return errors.Wrapf(err, "failed to sync %q", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %q", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "failed to replace %q", s.path)
	}
	return nil
}

// Load reads and decodes the file.
func (s *Store) Load() ([]*curve.Curve, error) {
	//nolint:gosec
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read curve file %q", s.path)
	}
	curves, err := Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %q", s.path)
	}
	return curves, nil
}

// Open loads the file into coll, replacing its contents, and moves names past every loaded
// "CurveN". When loading fails coll and names are left as they were.
func (s *Store) Open(coll *curve.Collection, names *curve.NameAllocator) error {
	curves, err := s.Load()
	if err != nil {
		return err
	}
	if err := coll.SetAll(curves); err != nil {
		return err
	}
	if names != nil {
		for _, c := range curves {
			names.Observe(c.Name())
		}
	}
	s.logger.Infow("opened curves", "path", s.path, "count", len(curves))
	return nil
}

// Watch calls onChange with the decoded series every time the file is written or replaced, until
// ctx is done. A file that fails to decode is logged and skipped. Watch returns nil when ctx ends.
func (s *Store) Watch(ctx context.Context, onChange func([]*curve.Curve)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer goutils.UncheckedErrorFunc(watcher.Close)

	// Saves replace the file by renaming over it, so watch the directory rather than the inode.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %q", dir)
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			curves, err := s.Load()
			if err != nil {
				s.logger.Warnw("ignoring unreadable curve file", "path", s.path, "error", err)
				continue
			}
			onChange(curves)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnw("file watcher error", "path", s.path, "error", err)
		}
	}
}
