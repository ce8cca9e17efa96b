// Package testing forces test mode for any package that blank-imports it, so
// binaries and helpers skip connecting to real infrastructure.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("ZEROGRID_TEST_MODE", "1")
		if os.Getenv("MAIL_PROVIDER") == "" {
			_ = os.Setenv("MAIL_PROVIDER", "log")
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
