package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "***", maskAPIKey("abc"))
	assert.Equal(t, "***", maskAPIKey("12345678"))
	assert.Equal(t, "sk-l...9xyz", maskAPIKey("sk-live-0001239xyz"))
}

func TestLoadConfig_UnsupportedTransport(t *testing.T) {
	v := viper.New()
	v.Set("transport", "sse")

	_, err := loadConfig(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type: sse")
}

func TestPrintModels(t *testing.T) {
	v := viper.New()
	v.Set("datasaur.api_key", "sk-live-0001239xyz")
	v.Set("datasaur.endpoints.grok_3.url", "https://sandbox.example/grok3")
	cfg, err := loadConfig(v)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printModels(&out, cfg))

	text := out.String()
	assert.Contains(t, text, "API key: sk-l...9xyz")
	assert.NotContains(t, text, "sk-live-0001239xyz")

	var grok, csv string
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "call_grok_3 "):
			grok = line
		case strings.HasPrefix(line, "process_and_send_csv "):
			csv = line
		}
	}
	assert.Contains(t, grok, "configured")
	assert.Contains(t, grok, "3m0s")
	assert.Contains(t, csv, "missing")
	assert.Contains(t, csv, "DATASAUR_CSV_API_URL")
}

func TestRunConvert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2.5\nfoo,\n"), 0644))

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runConvert(cmd, []string{path}))
	assert.Equal(t, `[{"a":1,"b":2.5},{"a":"foo","b":""}]`+"\n", out.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["convert"])
	assert.True(t, names["models"])
	assert.NotNil(t, rootCmd.Flags().Lookup("transport"))
}
