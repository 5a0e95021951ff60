package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/database"
)

func tableExists(t *testing.T, m *Migrator, name string) bool {
	t.Helper()
	var n int
	err := m.db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).
		Scan(context.Background(), &n)
	require.NoError(t, err)
	return n > 0
}

func TestMigratorUpDown(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	defer db.Close()

	m, err := NewForDB(db, "sqlite", zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Up(ctx))

	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, version)
	for _, table := range []string{"sliders", "defectos", "planillainspeccion", "registropedido", "pedido", "pedido_numero"} {
		assert.True(t, tableExists(t, m, table), table)
	}

	// Applying again is a no-op.
	require.NoError(t, m.Up(ctx))

	require.NoError(t, m.Down(ctx, 1, false))
	version, err = m.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, version)
	assert.False(t, tableExists(t, m, "pedido"))
	assert.True(t, tableExists(t, m, "planillainspeccion"))

	require.NoError(t, m.Down(ctx, 0, true))
	version, err = m.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, version)
	assert.False(t, tableExists(t, m, "sliders"))
}

func TestGooseDialect(t *testing.T) {
	cases := map[string][2]string{
		"mysql":    {"mysql", "mysql"},
		"postgres": {"postgres", "postgres"},
		"pg":       {"postgres", "postgres"},
		"sqlite":   {"sqlite3", "sqlite"},
	}
	for driver, want := range cases {
		dialect, dir, err := gooseDialect(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, want[0], dialect)
		assert.Equal(t, want[1], dir)
	}

	_, _, err := gooseDialect("oracle")
	assert.Error(t, err)
}

func TestEveryDialectShipsTheSameMigrations(t *testing.T) {
	names := func(dir string) []string {
		entries, err := migrations.ReadDir("sql/" + dir)
		require.NoError(t, err)
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Name())
		}
		return out
	}
	sqlite := names("sqlite")
	assert.Len(t, sqlite, 3)
	assert.Equal(t, sqlite, names("mysql"))
	assert.Equal(t, sqlite, names("postgres"))
}
