package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestSummarizePolicies(t *testing.T) {
	policies, err := summarizePolicies(testConfig())
	require.NoError(t, err)
	require.Len(t, policies, 3)

	jvm := policies[2]
	assert.Equal(t, "symbolication-jvm", jvm.Name)
	assert.Equal(t, 12, jvm.Buckets)
	assert.Equal(t, 7.5, jvm.AllowedBudget)
	assert.Equal(t, "rate", jvm.Normalization)
	assert.Equal(t, "5m0s", jvm.Debounce)
}

func TestValidateCommand_JSON(t *testing.T) {
	path := writeConfigFile(t, `
budget:
  policies:
    - name: uploads
      debounce: 1m
      window: 1m
      bucket: 15s
      allowed_budget: 100
      normalization: total
`)

	out, err := executeCommand(t, "validate", "--config", path, "--format", "json")
	require.NoError(t, err)

	var result validateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, path, result.Source)
	require.Len(t, result.Policies, 1)
	assert.Equal(t, "uploads", result.Policies[0].Name)
	assert.Equal(t, 4, result.Policies[0].Buckets)
	assert.Equal(t, "total", result.Policies[0].Normalization)
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeConfigFile(t, `
budget:
  policies:
    - name: uploads
      window: 1m
      bucket: 7s
      allowed_budget: 1
`)

	_, err := executeCommand(t, "validate", "--config", path, "--format", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget.policies[0]")
}

func TestValidateResult_Text(t *testing.T) {
	text := validateResult{
		Source:   "built-in defaults",
		Policies: []policySummary{{Name: "p", Debounce: "1s", Window: "2s", Bucket: "1s", Buckets: 2, AllowedBudget: 3, Normalization: "rate"}},
	}.Text()

	assert.Contains(t, text, "✓ Configuration valid (built-in defaults)")
	assert.Contains(t, text, "POLICY")
}
