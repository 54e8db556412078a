//go:build windows

package wallet

import "os"

// Windows has no flock; the lock file is created but gives no cross-process exclusion.
func lockFile(*os.File, bool) error { return nil }

func unlockFile(*os.File) {}
