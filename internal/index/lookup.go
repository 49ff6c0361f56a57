package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JulienPeloton/rocks/internal/naming"
	"github.com/JulienPeloton/rocks/internal/resolver"
)

// Lookup resolves a standardized identifier against the index. Numbers are
// answered from the number column; names and designations go through the
// reduced alias table. Implements resolver.LocalIndex.
//
// A miss is (zero, false, nil); errors are reserved for storage faults.
func (ix *Index) Lookup(ctx context.Context, id resolver.Identifier) (resolver.Resolution, bool, error) {
	switch id.Kind {
	case resolver.KindNumber:
		return ix.byNumber(ctx, id.Number)
	case resolver.KindName, resolver.KindDesignation:
		return ix.byAlias(ctx, naming.Reduce(id.Text))
	default:
		return resolver.Resolution{}, false, nil
	}
}

func (ix *Index) byNumber(ctx context.Context, number int64) (resolver.Resolution, bool, error) {
	row := ix.db.QueryRowContext(ctx, `
		SELECT id, name, number
		FROM rocks
		WHERE number = ?
	`, number)

	return scanRock(row)
}

// byAlias looks a reduced key up in the alias table. If an alias ever maps
// to more than one body the lowest-numbered one wins, keeping lookups
// deterministic.
func (ix *Index) byAlias(ctx context.Context, alias string) (resolver.Resolution, bool, error) {
	if alias == "" {
		return resolver.Resolution{}, false, nil
	}

	row := ix.db.QueryRowContext(ctx, `
		SELECT r.id, r.name, r.number
		FROM rocks r
		JOIN aliases a ON a.rock_id = r.id
		WHERE a.alias = ?
		ORDER BY r.number IS NULL, r.number ASC, r.id ASC
		LIMIT 1
	`, alias)

	return scanRock(row)
}

func scanRock(row *sql.Row) (resolver.Resolution, bool, error) {
	var res resolver.Resolution
	var number sql.NullInt64

	err := row.Scan(&res.ID, &res.Name, &number)
	if errors.Is(err, sql.ErrNoRows) {
		return resolver.Resolution{}, false, nil
	}
	if err != nil {
		return resolver.Resolution{}, false, fmt.Errorf("scan rock: %w", err)
	}

	if number.Valid {
		res.Number = number.Int64
	}
	return res, true, nil
}
