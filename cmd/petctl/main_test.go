package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildImageCmdSucceeds(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"build-image"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.NoError(t, err)
}

func TestCatCmdPrintsFileContents(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetArgs([]string{"cat", "/boot/splash.png"})
	root.SetOut(&out)

	err := root.Execute()
	require.NoError(t, err)
	assert.NotEmpty(t, out.Bytes())
}

func TestCatCmdRejectsMissingPath(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"cat", "/nope"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	assert.Error(t, err)
}

func TestCatCmdRequiresExactlyOneArg(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"cat"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	assert.Error(t, err)
}
