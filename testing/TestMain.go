package testing

import (
	"os"
	"sync"
	stdtesting "testing"

	_ "github.com/grace-gov/grace-api/internal/testing/guard"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("GRACE_TEST_MODE", "1")
		if os.Getenv("TOKEN_SECRET") == "" {
			_ = os.Setenv("TOKEN_SECRET", "test-secret")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
