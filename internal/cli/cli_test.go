package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()

	cases := []struct {
		path []string
		name string
	}{
		{[]string{"start"}, "start"},
		{[]string{"run"}, "start"},
		{[]string{"migrate", "up"}, "up"},
		{[]string{"migrate", "down"}, "down"},
		{[]string{"migrate", "status"}, "status"},
		{[]string{"seed"}, "seed"},
		{[]string{"worker", "run"}, "run"},
	}
	for _, tc := range cases {
		cmd, _, err := root.Find(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.name, cmd.Name(), tc.path)
	}

	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.NotNil(t, down.Flags().Lookup("steps"))
	assert.NotNil(t, down.Flags().Lookup("all"))
}
