package main

import (
	"bytes"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoot/pipeline/internal/transform"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"run", "extract", "transform", "merge", "models", "schedule"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestModelsCmd_ListsMartsInBuildOrder(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"models", "--select", "marts"})

	require.NoError(t, root.Execute())

	var infos []transform.ModelInfo
	require.NoError(t, sonic.Unmarshal(out.Bytes(), &infos))
	require.NotEmpty(t, infos)
	for _, info := range infos {
		assert.Equal(t, "marts", info.Relation[:len("marts")], info.Name)
	}
}

func TestModelsCmd_UnknownSelector(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"models", "--select", "does_not_exist"})

	require.Error(t, root.Execute())
}
