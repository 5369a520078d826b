package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermPatchSendsOnlyChangedFlags(t *testing.T) {
	var f termFlags
	c := &cobra.Command{}
	addTermFlags(c, &f)
	require.NoError(t, c.ParseFlags([]string{"--definition", "Interface", "--category", "", "--related", ""}))

	patch, err := f.patch(c)
	require.NoError(t, err)
	assert.Nil(t, patch.Word)
	assert.Nil(t, patch.Examples)
	require.NotNil(t, patch.Definition)
	assert.Equal(t, "Interface", *patch.Definition)
	require.NotNil(t, patch.Category)
	assert.Empty(t, *patch.Category)
	require.NotNil(t, patch.RelatedTerms)
	assert.Empty(t, *patch.RelatedTerms)
}

func TestTermPatchRequiresAChange(t *testing.T) {
	var f termFlags
	c := &cobra.Command{}
	addTermFlags(c, &f)
	require.NoError(t, c.ParseFlags(nil))

	_, err := f.patch(c)
	assert.EqualError(t, err, "nothing to update")
}

func TestTermInputFromFlags(t *testing.T) {
	var f termFlags
	c := &cobra.Command{}
	addTermFlags(c, &f)
	require.NoError(t, c.ParseFlags([]string{
		"--word", "API",
		"--definition", "Application Programming Interface",
		"--example", "REST API, GraphQL API",
		"--example", "public API",
		"--related", "a,b",
	}))

	input, err := f.input()
	require.NoError(t, err)
	assert.Equal(t, "API", input.Word)
	assert.Equal(t, []string{"REST API, GraphQL API", "public API"}, input.Examples)
	assert.Equal(t, []string{"a", "b"}, input.RelatedTerms)

	var missing termFlags
	_, err = missing.input()
	assert.Error(t, err)
}

func TestCategoryFlags(t *testing.T) {
	var f categoryFlags
	c := &cobra.Command{}
	addCategoryFlags(c, &f)
	require.NoError(t, c.ParseFlags([]string{"--description", "Software"}))

	patch, err := f.patch(c)
	require.NoError(t, err)
	assert.Nil(t, patch.Name)
	require.NotNil(t, patch.Description)
	assert.Equal(t, "Software", *patch.Description)

	_, err = f.input()
	assert.EqualError(t, err, "--name is required")
}

func TestClientWriteCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"client", "terms", "create"},
		{"client", "terms", "update"},
		{"client", "terms", "delete"},
		{"client", "categories", "create"},
		{"client", "categories", "update"},
		{"client", "categories", "delete"},
	} {
		found, _, err := rootCmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}
