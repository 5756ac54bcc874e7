package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileLock is a cross-process advisory lock ensuring one sync run at a time
type FileLock struct {
	mu sync.Mutex // flock treats a second TryLock on a held Flock as success
	fl *flock.Flock
}

func New(path string) *FileLock {
	return &FileLock{fl: flock.New(path)}
}

// TryLock acquires the lock without blocking. It returns false when another
// process, another FileLock on the same path or another goroutine holds it.
func (l *FileLock) TryLock() (bool, error) {
	if !l.mu.TryLock() {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o755); err != nil {
		l.mu.Unlock()
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}
	locked, err := l.fl.TryLock()
	if err != nil {
		l.mu.Unlock()
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		l.mu.Unlock()
	}
	return locked, nil
}

// Unlock must only be called after a successful TryLock
func (l *FileLock) Unlock() error {
	defer l.mu.Unlock()
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func (l *FileLock) Path() string {
	return l.fl.Path()
}
