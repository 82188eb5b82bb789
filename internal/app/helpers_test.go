package app

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/leanfront/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest writes hclSrc to a temporary config file and builds an App
// from it. Output, logs included, is captured in the returned buffer.
func SetupAppTest(t *testing.T, hclSrc string, cfg Config) (*App, *SafeBuffer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "site.hcl")
	require.NoError(t, os.WriteFile(path, []byte(hclSrc), 0o600))
	cfg.ConfigPaths = []string{path}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}

	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &SafeBuffer{}
	testApp, err := NewApp(out, appConfig, hcl.NewLoader())
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("LEANFRONT_TEST_LOGS") == "true" {
			t.Logf("--- Full Output for %s ---\n%s", t.Name(), out.String())
		}
	})
	return testApp, out
}
