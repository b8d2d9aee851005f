package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"migrate", "seed", "create-admin"})

	holidays, _, err := root.Find([]string{"seed", "holidays"})
	require.NoError(t, err)
	assert.Equal(t, "holidays", holidays.Name())
}

func TestRootCmd_RequiredFlags(t *testing.T) {
	for name, args := range map[string][]string{
		"create-admin":  {"create-admin", "--email", "root@example.com"},
		"seed holidays": {"seed", "holidays"},
	} {
		t.Run(name, func(t *testing.T) {
			root := newRootCmd()
			root.SetArgs(args)
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "required flag")
		})
	}
}
