package main

import (
	"bytes"
	"errors"
	"testing"

	"course-assistant-be/internal/bootstrap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCmd_MissingDirectoryFailsBeforeBoot(t *testing.T) {
	booted := false
	root := newRootCmdWith(func() (*bootstrap.Core, func(), error) {
		booted = true
		return nil, nil, errors.New("should not boot")
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"json", "--dir", t.TempDir() + "/missing"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory not found")
	assert.False(t, booted)
}

func TestJSONCmd_DirFlagRequired(t *testing.T) {
	root := newRootCmdWith(func() (*bootstrap.Core, func(), error) {
		return nil, nil, errors.New("should not boot")
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"json"})

	assert.Error(t, root.Execute())
}

func TestJSONCmd_BootErrorIsReturned(t *testing.T) {
	root := newRootCmdWith(func() (*bootstrap.Core, func(), error) {
		return nil, nil, errors.New("DB_CONNECTION_STRING is not set")
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"json", "--dir", t.TempDir()})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_CONNECTION_STRING")
}
