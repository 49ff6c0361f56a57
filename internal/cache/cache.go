// Package cache manages the on-disk cache directory shared by the resolver
// and the CLI: ssoCards under cards/, the local index database next to them.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Cache is rooted at a single directory, by default ~/.cache/rocks.
type Cache struct {
	dir string
}

// New returns a cache rooted at dir. Nothing is created until the first
// write.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

// IndexPath returns the location of the local index database.
func (c *Cache) IndexPath() string {
	return filepath.Join(c.dir, "index.db")
}

func (c *Cache) cardsDir() string {
	return filepath.Join(c.dir, "cards")
}

func (c *Cache) cardPath(id string) string {
	// SsODNet ids are filesystem-friendly, but never trust them as paths.
	safe := strings.ReplaceAll(id, string(filepath.Separator), "_")
	safe = strings.ReplaceAll(safe, "..", "_")
	return filepath.Join(c.cardsDir(), safe+".json")
}

// GetCard returns the cached ssoCard for a SsODNet id, if present.
func (c *Cache) GetCard(id string) (json.RawMessage, bool, error) {
	data, err := os.ReadFile(c.cardPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached card: %w", err)
	}
	return data, true, nil
}

// PutCard stores a ssoCard on disk, creating the cache directory as needed.
func (c *Cache) PutCard(id string, card json.RawMessage) error {
	if err := os.MkdirAll(c.cardsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(c.cardPath(id), card, 0o644); err != nil {
		return fmt.Errorf("failed to write card: %w", err)
	}
	return nil
}

// Inventory summarizes what the cache currently holds.
type Inventory struct {
	Cards     int
	CardsSize int64
	IndexSize int64
}

// Inventory walks the cache and reports card count and sizes. A missing
// cache directory is an empty inventory, not an error.
func (c *Cache) Inventory() (Inventory, error) {
	var inv Inventory

	entries, err := os.ReadDir(c.cardsDir())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Inventory{}, fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		inv.Cards++
		inv.CardsSize += info.Size()
	}

	if info, err := os.Stat(c.IndexPath()); err == nil {
		inv.IndexSize = info.Size()
	}

	return inv, nil
}

// Clear removes all cached cards and the index database. The WAL sidecar
// files go with the database so a later rebuild starts clean.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.cardsDir()); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}
	for _, path := range []string{c.IndexPath(), c.IndexPath() + "-wal", c.IndexPath() + "-shm"} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove index: %w", err)
		}
	}
	return nil
}
