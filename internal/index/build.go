package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/JulienPeloton/rocks/internal/naming"
)

// Entry is one record of the published name-number dump: the SsODNet id,
// the current name, the catalogue number (0 for unnumbered bodies) and
// every historical alias and designation.
type Entry struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Number  int64    `json:"number"`
	Aliases []string `json:"aliases"`
}

// Meta keys recorded after a successful rebuild.
const (
	metaBuiltAt = "built_at"
	metaSource  = "source"
	metaEntries = "entries"
)

// Bodies written per multi-row INSERT. Three bind variables per row keeps
// this well under the SQLite variable limit.
const insertChunkSize = 200

// Alias rows written per multi-row INSERT (two bind variables per row).
const aliasChunkSize = 400

// Rebuild replaces the index contents with the entries streamed from r.
// The dump is a JSON array of Entry records. The swap is transactional:
// concurrent readers see either the old index or the new one, never a
// half-built state. Returns the number of bodies indexed.
func (ix *Index) Rebuild(ctx context.Context, r io.Reader, source string) (int, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("read dump: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return 0, fmt.Errorf("read dump: expected JSON array, got %v", tok)
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("rebuild: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM aliases`); err != nil {
		return 0, fmt.Errorf("rebuild: clear aliases: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rocks`); err != nil {
		return 0, fmt.Errorf("rebuild: clear rocks: %w", err)
	}

	batch := make([]Entry, 0, insertChunkSize)
	count := 0
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		var e Entry
		if err := dec.Decode(&e); err != nil {
			return 0, fmt.Errorf("decode entry %d: %w", count, err)
		}
		if e.ID == "" || e.Name == "" {
			slog.Debug("skipping malformed dump entry", "position", count)
			continue
		}

		batch = append(batch, e)
		count++
		if len(batch) == insertChunkSize {
			if err := insertEntries(ctx, tx, batch); err != nil {
				return 0, err
			}
			batch = batch[:0]
		}
		if count%100000 == 0 {
			slog.Info("index rebuild in progress", "entries", count)
		}
	}
	if len(batch) > 0 {
		if err := insertEntries(ctx, tx, batch); err != nil {
			return 0, err
		}
	}

	// Consume the closing bracket so truncated dumps are rejected.
	if _, err := dec.Token(); err != nil {
		return 0, fmt.Errorf("read dump: %w", err)
	}

	meta := map[string]string{
		metaBuiltAt: ix.now().UTC().Format(time.RFC3339),
		metaSource:  source,
		metaEntries: strconv.Itoa(count),
	}
	for key, value := range meta {
		if err := setMeta(ctx, tx, key, value); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("rebuild: commit: %w", err)
	}

	slog.Info("index rebuilt", "entries", count, "source", source)
	return count, nil
}

// insertEntries bulk-inserts a batch of bodies and their alias rows.
func insertEntries(ctx context.Context, tx *sql.Tx, entries []Entry) error {
	for _, chunk := range lo.Chunk(entries, insertChunkSize) {
		query := `INSERT INTO rocks (id, name, number) VALUES ` +
			placeholders(len(chunk), 3) +
			` ON CONFLICT(id) DO NOTHING`

		args := make([]any, 0, len(chunk)*3)
		for _, e := range chunk {
			args = append(args, e.ID, e.Name, nullableNumber(e.Number))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert rocks: %w", err)
		}
	}

	var rows []aliasRow
	for _, e := range entries {
		for _, key := range aliasKeys(e) {
			rows = append(rows, aliasRow{alias: key, rockID: e.ID})
		}
	}
	for _, chunk := range lo.Chunk(rows, aliasChunkSize) {
		query := `INSERT INTO aliases (alias, rock_id) VALUES ` +
			placeholders(len(chunk), 2) +
			` ON CONFLICT DO NOTHING`

		args := make([]any, 0, len(chunk)*2)
		for _, row := range chunk {
			args = append(args, row.alias, row.rockID)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert aliases: %w", err)
		}
	}

	return nil
}

type aliasRow struct {
	alias  string
	rockID string
}

// aliasKeys returns every reduced lookup key for an entry: its name plus
// all designations and historical aliases. Purely numeric aliases are
// skipped, the number column serves those lookups.
func aliasKeys(e Entry) []string {
	keys := make([]string, 0, len(e.Aliases)+1)
	seen := make(map[string]bool, len(e.Aliases)+1)

	add := func(s string) {
		key := naming.Reduce(s)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		keys = append(keys, key)
	}

	add(e.Name)
	for _, a := range e.Aliases {
		if _, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64); err == nil {
			continue
		}
		add(a)
	}
	return keys
}

// placeholders renders n comma-separated groups of width bind variables:
// placeholders(2, 3) is "(?, ?, ?), (?, ?, ?)".
func placeholders(n, width int) string {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"
	return strings.TrimSuffix(strings.Repeat(group+", ", n), ", ")
}

func nullableNumber(n int64) any {
	if n < 1 {
		return nil
	}
	return n
}

// Stats describes the current index contents for the status command.
type Stats struct {
	Entries int64
	Aliases int64
	BuiltAt time.Time
	Source  string
}

// Stats reports entry counts and build provenance. A never-built index
// reports zero entries and a zero BuiltAt.
func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rocks`).Scan(&st.Entries); err != nil {
		return Stats{}, fmt.Errorf("count rocks: %w", err)
	}
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM aliases`).Scan(&st.Aliases); err != nil {
		return Stats{}, fmt.Errorf("count aliases: %w", err)
	}

	built, err := ix.getMeta(ctx, metaBuiltAt)
	if err != nil {
		return Stats{}, err
	}
	if built != "" {
		st.BuiltAt, err = time.Parse(time.RFC3339, built)
		if err != nil {
			return Stats{}, fmt.Errorf("parse built_at: %w", err)
		}
	}

	st.Source, err = ix.getMeta(ctx, metaSource)
	if err != nil {
		return Stats{}, err
	}

	return st, nil
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

func (ix *Index) getMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := ix.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}
