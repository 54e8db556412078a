package wallet

import (
	"fmt"
	"os"
	"path/filepath"
)

// LockFileName is the lock file guarding a data directory.
const LockFileName = "wallet.lock"

// DirLock is an exclusive hold on a data directory.
type DirLock struct {
	f *os.File
}

// LockDataDir takes the data directory lock. With wait false it fails with
// ErrLocked instead of blocking while another process holds it.
func LockDataDir(dataDir string, wait bool) (*DirLock, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("wallet: create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataDir, LockFileName), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("wallet: open lock file: %w", err)
	}
	if err := lockFile(f, wait); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &DirLock{f: f}, nil
}

// Unlock releases the lock. It is safe to call on a nil lock.
func (l *DirLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockFile(l.f)
	err := l.f.Close()
	l.f = nil
	return err
}
