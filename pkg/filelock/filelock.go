// SPDX-License-Identifier: GPL-3.0-or-later

// Package filelock serializes runs that share fixed scratch paths.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("locked by another run")

const suffix = ".optprobe.lock"

// Locker holds named advisory locks in one directory. It is not safe for
// concurrent use.
type Locker struct {
	dir  string
	held map[string]*flock.Flock
}

// New returns a Locker for dir, the system temp directory when dir is empty.
func New(dir string) *Locker {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Locker{dir: dir, held: make(map[string]*flock.Flock)}
}

// Lock takes the lock for name without waiting. Locking a name this Locker
// already holds is a no-op.
func (l *Locker) Lock(name string) error {
	if l.isLocked(name) {
		return nil
	}

	fl := flock.New(l.Filename(name))

	ok, err := fl.TryLock()
	switch {
	case err != nil:
		err = fmt.Errorf("lock '%s': %v", fl.Path(), err)
	case !ok:
		err = fmt.Errorf("lock '%s': %w", fl.Path(), ErrLocked)
	default:
		l.held[name] = fl
		return nil
	}

	_ = fl.Close()
	return err
}

// Unlock releases name. The lock file is left in place so that every run
// locks the same inode.
func (l *Locker) Unlock(name string) {
	if fl, ok := l.held[name]; ok {
		delete(l.held, name)
		_ = fl.Close()
	}
}

// UnlockAll releases every lock this Locker holds.
func (l *Locker) UnlockAll() {
	for name := range l.held {
		l.Unlock(name)
	}
}

// Filename returns the lock file path for name.
func (l *Locker) Filename(name string) string {
	return filepath.Join(l.dir, name+suffix)
}

func (l *Locker) isLocked(name string) bool {
	_, ok := l.held[name]
	return ok
}
