// Package guard flips the runtime into test mode as a side effect of being
// imported, so binaries entered through TestMain never start real servers.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CERTA_TEST_MODE") == "" {
			_ = os.Setenv("CERTA_TEST_MODE", "1")
		}
	})
}
