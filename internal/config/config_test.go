package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_testtoken")
	t.Setenv("GITHUB_REPO", "acme/widgets")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ghp_testtoken", cfg.GitHubToken)
	assert.Equal(t, "acme/widgets", cfg.Repository)
	assert.Equal(t, "data", cfg.OutputDir)
	assert.Equal(t, []string{"data_contract", "data contract", "data-contract"}, cfg.TagEquivalents)

	owner, name := cfg.SplitRepository()
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", name)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_REPO", "acme/widgets")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("TAG_EQUIVALENTS", "hotfix,hot fix")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, []string{"hotfix", "hot fix"}, cfg.TagEquivalents)
}

func TestLoad_MissingToken(t *testing.T) {
	// t.Setenv registers the restore, the unset makes the variable
	// truly absent rather than empty.
	t.Setenv("GITHUB_TOKEN", "")
	os.Unsetenv("GITHUB_TOKEN")
	t.Setenv("GITHUB_REPO", "acme/widgets")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidRepository(t *testing.T) {
	testCases := []string{"widgets", "acme/", "/widgets", ""}

	for _, repo := range testCases {
		t.Run("repo="+repo, func(t *testing.T) {
			t.Setenv("GITHUB_TOKEN", "tok")
			t.Setenv("GITHUB_REPO", repo)

			_, err := Load()
			assert.Error(t, err)
			if repo != "" {
				assert.Contains(t, err.Error(), "owner/name")
			}
		})
	}
}
