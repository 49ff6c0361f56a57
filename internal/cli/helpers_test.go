package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/JulienPeloton/rocks/internal/cache"
	"github.com/JulienPeloton/rocks/internal/harness"
	"github.com/JulienPeloton/rocks/internal/index"
	"github.com/JulienPeloton/rocks/internal/testutil"
)

// pinNoColor forces plain output for the duration of a test so text
// assertions see no ANSI escapes.
func pinNoColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

// testCacheDir points commands at a fresh cache directory.
func testCacheDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ROCKS_CACHE_DIR", dir)
	return dir
}

// testQuaero starts a stub quaero service answering with the given bodies
// and points commands at it. With no bodies every remote lookup misses.
func testQuaero(t *testing.T, bodies ...harness.RemoteEntry) *httptest.Server {
	t.Helper()
	server := harness.NewQuaeroStub(bodies)
	t.Cleanup(server.Close)
	t.Setenv("ROCKS_QUAERO_URL", server.URL)
	return server
}

// seedIndex builds a local index in the cache directory, stamped with the
// given build time and "fixture" as its source.
func seedIndex(t *testing.T, dir string, builtAt time.Time, entries ...index.Entry) {
	t.Helper()

	clock := testutil.NewFrozenClock(builtAt)
	ix, err := index.Open(cache.New(dir).IndexPath(), index.WithClock(clock.Now))
	require.NoError(t, err)
	defer ix.Close()

	dump, err := json.Marshal(entries)
	require.NoError(t, err)
	_, err = ix.Rebuild(context.Background(), bytes.NewReader(dump), "fixture")
	require.NoError(t, err)
}
