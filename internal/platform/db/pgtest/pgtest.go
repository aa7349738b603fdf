// Package pgtest gives integration tests a migrated, throwaway schema on a
// real Postgres. Tests are skipped unless TEST_DATABASE_URL is set.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephro/dialysis/internal/platform/db"
	"github.com/nephro/dialysis/migrations"
)

// EnvURL names the variable holding the connection string.
const EnvURL = "TEST_DATABASE_URL"

// Pool creates a fresh schema, applies every migration to it and returns a
// pool whose search_path is pinned there. The schema is dropped when the
// test ends.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set; skipping postgres integration test", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := "it_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]

	admin, err := db.NewPool(ctx, url, "", 2, 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		if _, err := admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			t.Logf("warning: failed to drop schema %s: %v", schema, err)
		}
		admin.Close()
	})

	if _, err := db.EnsureSchema(ctx, admin, schema, db.NewMigrator(admin, migrations.FS)); err != nil {
		t.Fatalf("migrate %s: %v", schema, err)
	}

	pool, err := db.NewPool(ctx, url, schema, 8, 0)
	if err != nil {
		t.Fatalf("connect to %s: %v", schema, err)
	}
	t.Cleanup(pool.Close)
	return pool
}
