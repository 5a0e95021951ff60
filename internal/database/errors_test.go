package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMySQL(t *testing.T) {
	cases := []struct {
		number uint16
		want   error
	}{
		{1062, ErrDuplicate},
		{1451, ErrForeignKey},
		{1452, ErrForeignKey},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.number), func(t *testing.T) {
			driverErr := &mysql.MySQLError{Number: tc.number, Message: "constraint"}
			err := Classify(fmt.Errorf("exec: %w", driverErr))
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, driverErr)
		})
	}

	other := &mysql.MySQLError{Number: 1064, Message: "syntax"}
	assert.Same(t, other, Classify(other))
}

func TestClassifySQLite(t *testing.T) {
	db, err := Open("sqlite", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE parent (id INTEGER PRIMARY KEY, name TEXT UNIQUE)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parent (id))`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO parent (id, name) VALUES (1, 'a')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO parent (id, name) VALUES (2, 'a')`)
	assert.ErrorIs(t, Classify(err), ErrDuplicate)

	_, err = db.ExecContext(ctx, `INSERT INTO parent (id, name) VALUES (1, 'b')`)
	assert.ErrorIs(t, Classify(err), ErrDuplicate)

	_, err = db.ExecContext(ctx, `INSERT INTO child (id, parent_id) VALUES (1, 99)`)
	assert.ErrorIs(t, Classify(err), ErrForeignKey)
}

func TestClassifyPassThrough(t *testing.T) {
	assert.NoError(t, Classify(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, Classify(plain))
}
