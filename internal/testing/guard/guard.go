// Package guard forces test mode for any package that imports it, keeping
// runtime side effects out of unit tests.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GRACE_TEST_MODE") == "" {
			_ = os.Setenv("GRACE_TEST_MODE", "1")
		}
	})
}
