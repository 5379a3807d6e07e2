package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namnhcntt/BingoMaster/internal/config"
	"github.com/namnhcntt/BingoMaster/internal/game"
)

var testSchemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func openStore(t *testing.T) (*Store, context.Context, func()) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	dsn := cfg.TestPostgresDSN
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	base, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open base db: %v", err)
	}
	createSchemaSQL, err := schemaDDL("CREATE SCHEMA %s", schema)
	if err != nil {
		base.Close()
		t.Fatalf("invalid schema name: %v", err)
	}
	if _, err := base.Exec(context.Background(), createSchemaSQL); err != nil {
		base.Close()
		t.Fatalf("create schema: %v", err)
	}
	base.Close()

	st, err := New(withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := applySchema(st); err != nil {
		st.Close()
		t.Fatalf("apply schema: %v", err)
	}
	cleanup := func() {
		st.Close()
		if cfg.KeepSchema {
			t.Logf("keeping test schema %s", schema)
			return
		}
		base, err := pgxpool.New(context.Background(), dsn)
		if err == nil {
			if dropSchemaSQL, ddlErr := schemaDDL("DROP SCHEMA %s CASCADE", schema); ddlErr == nil {
				_, _ = base.Exec(context.Background(), dropSchemaSQL)
			}
			base.Close()
		}
	}
	return st, context.Background(), cleanup
}

func applySchema(st *Store) error {
	path, err := findInitMigrationPath()
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = st.Pool.Exec(context.Background(), string(b))
	return err
}

func findInitMigrationPath() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		p := filepath.Join(dir, "migrations", "000001_init.up.sql")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("000001_init.up.sql not found from %s", dir)
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}

func schemaDDL(format, schema string) (string, error) {
	if !testSchemaNamePattern.MatchString(schema) {
		return "", fmt.Errorf("schema %q does not match required pattern", schema)
	}
	return fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()), nil
}

// mustInsertGame writes a full game aggregate row by row. The store has no
// create API (games arrive through seeding or an external authoring tool),
// so tests feed the tables directly.
func mustInsertGame(t *testing.T, st *Store, ctx context.Context, g *game.Game) {
	t.Helper()
	_, err := st.Pool.Exec(ctx, `
		INSERT INTO games (id, name, board_size, cell_size, answer_time_seconds, group_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.Name, g.BoardSize, g.CellSize, g.AnswerTimeSec, g.GroupCount, string(g.Status))
	if err != nil {
		t.Fatalf("insert game: %v", err)
	}
	for i, q := range g.Questions {
		if _, err := st.Pool.Exec(ctx, `
			INSERT INTO questions (id, game_id, ord, text, answer, used)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			q.ID, g.ID, i, q.Text, q.Answer, q.Used); err != nil {
			t.Fatalf("insert question %d: %v", i, err)
		}
	}
	for i, gr := range g.Groups {
		if _, err := st.Pool.Exec(ctx, `
			INSERT INTO groups (id, game_id, ord, name, has_bingo)
			VALUES ($1, $2, $3, $4, $5)`,
			gr.ID, g.ID, i, gr.Name, gr.HasBingo); err != nil {
			t.Fatalf("insert group %s: %v", gr.ID, err)
		}
		for _, p := range gr.Players {
			if _, err := st.Pool.Exec(ctx, `
				INSERT INTO players (id, game_id, group_id, name)
				VALUES ($1, $2, $3, $4)`,
				p.ID, g.ID, gr.ID, p.Name); err != nil {
				t.Fatalf("insert player %s: %v", p.ID, err)
			}
		}
		for j, c := range gr.Board {
			if _, err := st.Pool.Exec(ctx, `
				INSERT INTO board_cells (id, group_id, ord, position, content, answer, marked)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				c.ID, gr.ID, j, c.Position, c.Content, c.Answer, c.Marked); err != nil {
				t.Fatalf("insert cell %s: %v", c.ID, err)
			}
		}
	}
}
