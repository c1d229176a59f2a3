package sync

import (
	"errors"
	"fmt"
	"os"

	"github.com/wsidx/wsidx/internal/layout"
)

// ErrProviderBusy is returned, wrapped, by Sync when another sync already
// holds the advisory lock on the provider directory. Callers check for it
// with errors.Is(err, ErrProviderBusy).
var ErrProviderBusy = errors.New("provider directory is already locked by another sync")

// acquireProviderLock takes an advisory lock scoped to providerDir by
// creating its lock file with O_EXCL. Any other sync on the same provider,
// in this process or another, gets ErrProviderBusy until the returned
// unlock removes the file. A lock file left behind by a run that crashed
// mid-sync stays in place until it is removed by hand.
func acquireProviderLock(providerDir string) (unlock func() error, err error) {
	lockPath := layout.LockPath(providerDir)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("provider directory %s: %w", providerDir, ErrProviderBusy)
		}
		return nil, fmt.Errorf("acquire provider lock %s: %w", lockPath, err)
	}
	f.Close()

	return func() error {
		return os.Remove(lockPath)
	}, nil
}
