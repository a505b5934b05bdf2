package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/pressly/goose/v3"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
)

func init() {
	goose.AddMigrationContext(Up00002, Down00002)
}

var abbrColumns = []struct {
	table  string
	column string
}{
	{"subjects", "team_abbr"},
	{"games", "team_abbr"},
	{"games", "opponent_abbr"},
	{"games", "home_team_abbr"},
	{"games", "away_team_abbr"},
	{"box_rows", "team_abbr"},
	{"league_table", "team_abbr"},
}

// Up00002 rewrites alias spellings (GS, NO, PHO, ...) left by older exports
// to canonical abbreviations.
func Up00002(ctx context.Context, tx *sql.Tx) error {
	aliases := gamelog.Aliases()
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, col := range abbrColumns {
		q := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE UPPER(%s) = ?`, col.table, col.column, col.column)
		if col.table == "league_table" {
			// the primary key includes team_abbr; keep the canonical row on conflict
			q = fmt.Sprintf(`UPDATE OR IGNORE %s SET %s = ? WHERE UPPER(%s) = ?`, col.table, col.column, col.column)
		}
		for _, alias := range keys {
			if _, err := tx.ExecContext(ctx, q, aliases[alias], alias); err != nil {
				return fmt.Errorf("normalize %s.%s %s: %w", col.table, col.column, alias, err)
			}
		}
	}
	return nil
}

func Down00002(context.Context, *sql.Tx) error {
	return nil
}
