package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "mirodash dev\n", out.String())
}

func TestRootRejectsUnknownSource(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--source", "smoke-signals"})
	require.Error(t, cmd.Execute())
}
