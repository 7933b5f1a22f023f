package store

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// migrationLock holds an exclusive advisory lock on a sidecar file next to
// the cache database. Hook invocations for the same project can start in
// parallel; only one may run schema migrations at a time.
type migrationLock struct {
	f *os.File
}

// acquireMigrationLock blocks until the sidecar lock for dbPath is held.
func acquireMigrationLock(dbPath string) (*migrationLock, error) {
	lockPath := dbPath + ".migrate.lock"
	if dir := filepath.Dir(lockPath); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: lockPath derived from trusted dbPath
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	return &migrationLock{f: f}, nil
}

// release drops the advisory lock and closes the sidecar file. Nil-safe.
func (l *migrationLock) release() {
	if l == nil || l.f == nil {
		return
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	_ = l.f.Close()
}
