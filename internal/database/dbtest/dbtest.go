// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/database"
	"github.com/Additional-Code/planta/internal/entity"
	"github.com/Additional-Code/planta/internal/migration"
)

// DSN is a private in-memory database with foreign keys enforced.
const DSN = "file::memory:?_foreign_keys=on"

// Open returns connections to a fresh database with every migration applied.
// Writer and reader share the single underlying connection.
func Open(t testing.TB) *database.Connections {
	t.Helper()

	db, err := database.Open("sqlite", DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mig, err := migration.NewForDB(db, "sqlite", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mig.Up(context.Background()))

	return &database.Connections{Writer: db, Reader: db}
}

// Slider inserts a slider and returns its id.
func Slider(t testing.TB, conns *database.Connections, name string) int64 {
	t.Helper()
	s := &entity.Slider{Name: name}
	_, err := conns.Writer.NewInsert().Model(s).Exec(context.Background())
	require.NoError(t, err)
	return s.ID
}

// Defect inserts a defect and returns its id.
func Defect(t testing.TB, conns *database.Connections, name string) int64 {
	t.Helper()
	d := &entity.Defect{Name: name}
	_, err := conns.Writer.NewInsert().Model(d).Exec(context.Background())
	require.NoError(t, err)
	return d.ID
}
