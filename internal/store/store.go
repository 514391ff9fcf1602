// Package store keeps the recipe collection in a single XML document on
// disk.
//
// Every read parses the whole document and every write re-serializes it.
// Mutations run under an in-process mutex and a cross-process flock on
// "<document>.lock", and replace the document with an atomic
// temp-file-and-rename, so readers never observe a partial write.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/recipebox/internal/fs"
	"github.com/calvinalkan/recipebox/internal/recipe"
)

// Defaults for zero-valued [Options].
const (
	DefaultLockTimeout = 5 * time.Second
	DefaultFileMode    = os.FileMode(0o644)
	dirPerms           = 0o755
)

// Options configures a [Store]. Zero values select defaults.
type Options struct {
	// FS is the filesystem the document lives on. Default: [fs.NewReal].
	FS fs.FS

	// Logger receives corruption and write diagnostics. Default: no-op.
	Logger *zap.Logger

	// LockTimeout bounds waiting for another process's write.
	LockTimeout time.Duration

	// FileMode is applied to the document on every write.
	FileMode os.FileMode

	// Now is the clock used for id generation and backup names.
	Now func() time.Time
}

// Store owns one backing document. It is safe for concurrent use.
type Store struct {
	path        string
	lockPath    string
	fs          fs.FS
	locker      *fs.Locker
	log         *zap.Logger
	lockTimeout time.Duration
	mode        os.FileMode
	now         func() time.Time

	// mu orders in-process access: readers share it, the read-modify-write
	// sequence of a mutation holds it exclusively.
	mu sync.RWMutex
}

// Open returns a store for the document at path, creating its directory and
// an empty document if it does not exist yet.
func Open(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, errors.New("open store: path is empty")
	}

	if opts.FS == nil {
		opts.FS = fs.NewReal()
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}

	if opts.FileMode == 0 {
		opts.FileMode = DefaultFileMode
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	path = filepath.Clean(path)

	s := &Store{
		path:        path,
		lockPath:    path + ".lock",
		fs:          opts.FS,
		locker:      fs.NewLocker(opts.FS),
		log:         opts.Logger.With(zap.String("path", path)),
		lockTimeout: opts.LockTimeout,
		mode:        opts.FileMode,
		now:         opts.Now,
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return nil, fmt.Errorf("open store: %w: create directory: %w", ErrPersistence, err)
	}

	if err := s.initialize(); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return s, nil
}

// Path returns the location of the backing document.
func (s *Store) Path() string {
	return s.path
}

// LoadAll parses the document and returns every recipe in document order.
//
// A missing document is recreated empty. A document that cannot be parsed
// returns an error wrapping [ErrParseCorruption]; read failures wrap
// [ErrPersistence].
func (s *Store) LoadAll() ([]recipe.Recipe, error) {
	s.mu.RLock()
	data, err := s.fs.ReadFile(s.path)
	s.mu.RUnlock()

	if errors.Is(err, os.ErrNotExist) {
		if err := s.initialize(); err != nil {
			return nil, err
		}

		return []recipe.Recipe{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersistence, s.path, err)
	}

	return s.decode(data)
}

// FindByID returns the first recipe with the given id. ok is false when no
// record matches.
func (s *Store) FindByID(id string) (r recipe.Recipe, ok bool, err error) {
	all, err := s.LoadAll()
	if err != nil {
		return recipe.Recipe{}, false, err
	}

	for _, candidate := range all {
		if candidate.ID == id {
			return candidate, true, nil
		}
	}

	return recipe.Recipe{}, false, nil
}

// Upsert replaces the record with r.ID, or appends r if none exists. All
// nested content of the stored record is replaced; nothing is merged.
//
// Returns [recipe.ErrValidation] for an empty id or text the document cannot
// hold unchanged (see [recipe.Recipe.CheckText]). A corrupt document is left
// untouched and reported as [ErrParseCorruption].
func (s *Store) Upsert(r recipe.Recipe) error {
	if r.ID == "" {
		return fmt.Errorf("%w: recipe id is required", recipe.ErrValidation)
	}

	if err := r.CheckText(); err != nil {
		return err
	}

	return s.mutate(func(all []recipe.Recipe) ([]recipe.Recipe, bool, error) {
		for i := range all {
			if all[i].ID == r.ID {
				all[i] = r.Clone()
				return all, true, nil
			}
		}

		return append(all, r.Clone()), true, nil
	}, func() {
		s.log.Debug("recipe saved", zap.String("id", r.ID))
	})
}

// Delete removes the first record with id. Deleting an unknown id, or from
// a document that does not exist, is a no-op.
func (s *Store) Delete(id string) error {
	return s.mutate(func(all []recipe.Recipe) ([]recipe.Recipe, bool, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), true, nil
			}
		}

		return all, false, nil
	}, func() {
		s.log.Debug("recipe deleted", zap.String("id", id))
	})
}

// Update applies fn to the stored record with id and persists the result,
// all under one write lock, so concurrent updates of the same record are
// never lost. ok is false when no record has id. If fn returns an error
// nothing is written and the error is returned as is. fn must not change
// the record's id.
func (s *Store) Update(id string, fn func(*recipe.Recipe) error) (updated recipe.Recipe, ok bool, err error) {
	err = s.mutate(func(all []recipe.Recipe) ([]recipe.Recipe, bool, error) {
		for i := range all {
			if all[i].ID != id {
				continue
			}

			next := all[i].Clone()
			if err := fn(&next); err != nil {
				return nil, false, err
			}

			next.ID = id

			if err := next.CheckText(); err != nil {
				return nil, false, err
			}

			all[i] = next
			updated, ok = next.Clone(), true

			return all, true, nil
		}

		return all, false, nil
	}, func() {
		s.log.Debug("recipe updated", zap.String("id", id))
	})
	if err != nil {
		return recipe.Recipe{}, false, err
	}

	return updated, ok, nil
}

// GenerateID returns a fresh recipe id. Uniqueness is overwhelmingly likely,
// not guaranteed.
func (s *Store) GenerateID() string {
	return recipe.NewRecipeID(s.now())
}

// Repair moves a corrupt document aside to "<path>.corrupt-<millis>" and
// starts a new empty one. It returns the backup path, or "" when the
// document was healthy and nothing changed.
func (s *Store) Repair() (string, error) {
	var backup string

	err := s.withWriteLock(func() error {
		data, exists, err := s.read()
		if err != nil {
			return err
		}

		if !exists {
			return s.write(nil)
		}

		if _, err := decodeDocument(data); err == nil {
			return nil
		}

		backup = s.path + ".corrupt-" + strconv.FormatInt(s.now().UnixMilli(), 10)

		if err := s.fs.Rename(s.path, backup); err != nil {
			return fmt.Errorf("%w: move corrupt document aside: %w", ErrPersistence, err)
		}

		s.log.Warn("corrupt recipe document moved aside", zap.String("backup", backup))

		return s.write(nil)
	})
	if err != nil {
		return "", err
	}

	return backup, nil
}

// mutate runs the load-modify-write sequence under the write lock. apply
// reports whether it changed anything; unchanged collections are not
// rewritten, and an apply error aborts without writing. A missing document
// counts as empty.
func (s *Store) mutate(apply func([]recipe.Recipe) ([]recipe.Recipe, bool, error), done func()) error {
	return s.withWriteLock(func() error {
		data, exists, err := s.read()
		if err != nil {
			return err
		}

		all := []recipe.Recipe{}

		if exists {
			all, err = s.decode(data)
			if err != nil {
				return err
			}
		}

		updated, changed, err := apply(all)
		if err != nil {
			return err
		}

		if !changed {
			return nil
		}

		if err := s.write(updated); err != nil {
			return err
		}

		done()

		return nil
	})
}

// initialize writes an empty document if none exists.
func (s *Store) initialize() error {
	return s.withWriteLock(func() error {
		exists, err := s.fs.Exists(s.path)
		if err != nil {
			return fmt.Errorf("%w: stat %s: %w", ErrPersistence, s.path, err)
		}

		if exists {
			return nil
		}

		s.log.Info("initializing empty recipe document")

		return s.write(nil)
	})
}

func (s *Store) withWriteLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := s.locker.LockWithTimeout(s.lockPath, s.lockTimeout)
	if err != nil {
		return fmt.Errorf("%w: acquire lock: %w", ErrPersistence, err)
	}

	defer func() {
		if closeErr := lock.Close(); closeErr != nil {
			s.log.Warn("releasing document lock failed", zap.Error(closeErr))
		}
	}()

	return fn()
}

// read returns the raw document; exists is false when there is no file.
func (s *Store) read() (data []byte, exists bool, err error) {
	data, err = s.fs.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %w", ErrPersistence, s.path, err)
	}

	return data, true, nil
}

func (s *Store) decode(data []byte) ([]recipe.Recipe, error) {
	all, err := decodeDocument(data)
	if err != nil {
		s.log.Error("recipe document cannot be parsed", zap.Error(err))

		return nil, fmt.Errorf("%w: %s: %w", ErrParseCorruption, s.path, err)
	}

	return all, nil
}

func (s *Store) write(all []recipe.Recipe) error {
	data, err := encodeDocument(all)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := s.fs.WriteFileAtomic(s.path, data, s.mode); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, s.path, err)
	}

	return nil
}
