package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JulienPeloton/rocks/internal/resolver"
	"github.com/JulienPeloton/rocks/internal/testutil"
)

const sampleDump = `[
	{"id": "Ceres", "name": "Ceres", "number": 1, "aliases": ["1", "1943 XB", "A899 OF"]},
	{"id": "Pallas", "name": "Pallas", "number": 2, "aliases": ["A802 FA"]},
	{"id": "Steins", "name": "Šteins", "number": 2867, "aliases": ["1969 VC"]},
	{"id": "2004_ES", "name": "2004 ES", "number": 0, "aliases": ["2004 ES"]}
]`

func openTestIndex(t *testing.T) *Index {
	t.Helper()

	ix, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func rebuildSample(t *testing.T, ix *Index) int {
	t.Helper()

	n, err := ix.Rebuild(context.Background(), strings.NewReader(sampleDump), "test")
	if err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	return n
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	ix, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer ix.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("index file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	for i := 0; i < 3; i++ {
		ix, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		ix.Close()
	}

	ix, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer ix.Close()

	tables := []string{"rocks", "aliases", "meta"}
	for _, table := range tables {
		var name string
		err := ix.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/index.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	ix := openTestIndex(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
	}
	for name, expected := range checks {
		if err := ix.verifyPragma(name, expected); err != nil {
			t.Errorf("pragma check failed: %v", err)
		}
	}
}

func TestClose_NilDB(t *testing.T) {
	ix := &Index{db: nil}
	if err := ix.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestRebuild_CountsEntries(t *testing.T) {
	ix := openTestIndex(t)

	n := rebuildSample(t, ix)
	if n != 4 {
		t.Errorf("Rebuild() = %d entries, want 4", n)
	}
}

func TestLookup_ByNumber(t *testing.T) {
	ix := openTestIndex(t)
	rebuildSample(t, ix)

	res, ok, err := ix.Lookup(context.Background(), resolver.FromNumber(1))
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if !ok {
		t.Fatal("Lookup(1) should match Ceres")
	}
	if res.Name != "Ceres" || res.Number != 1 || res.ID != "Ceres" {
		t.Errorf("Lookup(1) = %+v, want Ceres/1/Ceres", res)
	}
}

func TestLookup_ByName(t *testing.T) {
	ix := openTestIndex(t)
	rebuildSample(t, ix)

	// Case, spacing and diacritics must not matter.
	for _, input := range []string{"Ceres", "ceres", " CERES "} {
		res, ok, err := ix.Lookup(context.Background(), resolver.FromString(input))
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", input, err)
		}
		if !ok || res.Number != 1 {
			t.Errorf("Lookup(%q) = %+v ok=%v, want Ceres", input, res, ok)
		}
	}

	res, ok, err := ix.Lookup(context.Background(), resolver.FromString("steins"))
	if err != nil {
		t.Fatalf("Lookup(steins) failed: %v", err)
	}
	if !ok || res.Name != "Šteins" {
		t.Errorf("Lookup(steins) = %+v ok=%v, want Šteins via diacritic folding", res, ok)
	}
}

func TestLookup_ByDesignation(t *testing.T) {
	ix := openTestIndex(t)
	rebuildSample(t, ix)

	tests := []struct {
		input string
		name  string
	}{
		{"1943 XB", "Ceres"},
		{"1943xb", "Ceres"},
		{"a899 of", "Ceres"},
		{"2004es", "2004 ES"},
	}
	for _, tt := range tests {
		res, ok, err := ix.Lookup(context.Background(), resolver.FromString(tt.input))
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", tt.input, err)
		}
		if !ok || res.Name != tt.name {
			t.Errorf("Lookup(%q) = %+v ok=%v, want %s", tt.input, res, ok, tt.name)
		}
	}
}

func TestLookup_UnnumberedBody(t *testing.T) {
	ix := openTestIndex(t)
	rebuildSample(t, ix)

	res, ok, err := ix.Lookup(context.Background(), resolver.FromString("2004 ES"))
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if !ok {
		t.Fatal("unnumbered body should still resolve by designation")
	}
	if res.Number != 0 {
		t.Errorf("unnumbered body has number %d, want 0 sentinel", res.Number)
	}
	if res.ID != "2004_ES" {
		t.Errorf("ID = %q, want 2004_ES", res.ID)
	}
}

func TestLookup_Misses(t *testing.T) {
	ix := openTestIndex(t)
	rebuildSample(t, ix)

	inputs := []resolver.Identifier{
		resolver.FromNumber(99999),
		resolver.FromString("Unknownia"),
		{}, // empty sentinel
	}
	for _, id := range inputs {
		res, ok, err := ix.Lookup(context.Background(), id)
		if err != nil {
			t.Fatalf("Lookup(%v) failed: %v", id, err)
		}
		if ok || res.Resolved() {
			t.Errorf("Lookup(%v) = %+v ok=%v, want clean miss", id, res, ok)
		}
	}
}

func TestLookup_NumericAliasNotIndexed(t *testing.T) {
	ix := openTestIndex(t)
	rebuildSample(t, ix)

	// "1" appears in Ceres' alias list but numbers resolve through the
	// number column, not the alias table.
	var count int
	err := ix.db.QueryRow(`SELECT COUNT(*) FROM aliases WHERE alias = '1'`).Scan(&count)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("numeric alias rows = %d, want 0", count)
	}
}

func TestRebuild_ReplacesPrevious(t *testing.T) {
	ix := openTestIndex(t)
	rebuildSample(t, ix)

	second := `[{"id": "Vesta", "name": "Vesta", "number": 4, "aliases": []}]`
	n, err := ix.Rebuild(context.Background(), strings.NewReader(second), "test")
	if err != nil {
		t.Fatalf("second Rebuild() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("second Rebuild() = %d entries, want 1", n)
	}

	if _, ok, _ := ix.Lookup(context.Background(), resolver.FromString("Ceres")); ok {
		t.Error("Ceres should be gone after rebuild from new dump")
	}
	if _, ok, _ := ix.Lookup(context.Background(), resolver.FromNumber(4)); !ok {
		t.Error("Vesta should resolve after rebuild")
	}
}

func TestRebuild_RejectsMalformedDump(t *testing.T) {
	ix := openTestIndex(t)

	for _, dump := range []string{
		"not json",
		`{"id": "Ceres"}`,
		`[{"id": "Ceres", "name": "Ceres"}`,
	} {
		if _, err := ix.Rebuild(context.Background(), strings.NewReader(dump), "test"); err == nil {
			t.Errorf("Rebuild(%q) should fail", dump)
		}
	}
}

func TestRebuild_SkipsEntriesWithoutIDOrName(t *testing.T) {
	ix := openTestIndex(t)

	dump := `[
		{"id": "", "name": "Nameless", "number": 7},
		{"id": "Juno", "name": "Juno", "number": 3}
	]`
	n, err := ix.Rebuild(context.Background(), strings.NewReader(dump), "test")
	if err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Rebuild() = %d entries, want 1", n)
	}
}

func TestStats(t *testing.T) {
	ix := openTestIndex(t)

	st, err := ix.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() on empty index failed: %v", err)
	}
	if st.Entries != 0 || !st.BuiltAt.IsZero() {
		t.Errorf("empty index Stats() = %+v, want zero values", st)
	}

	rebuildSample(t, ix)

	st, err = ix.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.Entries != 4 {
		t.Errorf("Stats().Entries = %d, want 4", st.Entries)
	}
	if st.Aliases == 0 {
		t.Error("Stats().Aliases should be non-zero after rebuild")
	}
	if st.Source != "test" {
		t.Errorf("Stats().Source = %q, want test", st.Source)
	}
	if time.Since(st.BuiltAt) > time.Minute {
		t.Errorf("Stats().BuiltAt = %v, want recent timestamp", st.BuiltAt)
	}
}

func TestRebuild_StampsPinnedBuildTime(t *testing.T) {
	built := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	clock := testutil.NewFrozenClock(built)

	ix, err := Open(filepath.Join(t.TempDir(), "index.db"), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer ix.Close()

	rebuildSample(t, ix)

	st, err := ix.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if !st.BuiltAt.Equal(built) {
		t.Errorf("Stats().BuiltAt = %v, want %v", st.BuiltAt, built)
	}

	// A later rebuild records the clock's new position.
	clock.Advance(24 * time.Hour)
	rebuildSample(t, ix)

	st, err = ix.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() after advance failed: %v", err)
	}
	if !st.BuiltAt.Equal(built.Add(24 * time.Hour)) {
		t.Errorf("Stats().BuiltAt = %v, want %v", st.BuiltAt, built.Add(24*time.Hour))
	}
}
