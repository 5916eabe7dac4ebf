package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-hdf5/hdf5"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "h5complex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "native", cfg.Order)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Verbose)

	order, err := cfg.ByteOrder()
	require.NoError(t, err)
	assert.Equal(t, hdf5.NativeOrder(), order)
	w, err := cfg.ComplexWidth()
	require.NoError(t, err)
	assert.Equal(t, hdf5.Complex64, w)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "order: big\nwidth: 4\nformat: yaml\nverbose: true\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "big", cfg.Order)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, "yaml", cfg.Format)
	assert.True(t, cfg.Verbose)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "order: big\nwidth: 4\n")
	t.Setenv("H5COMPLEX_ORDER", "little")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("width", 8, "")
	flags.String("format", "text", "")
	require.NoError(t, flags.Parse([]string{"--format", "json"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "little", cfg.Order, "environment overrides file")
	assert.Equal(t, 4, cfg.Width, "unchanged flag does not override file")
	assert.Equal(t, "json", cfg.Format, "changed flag wins")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"format", "format: xml\n", "invalid format"},
		{"width", "width: 16\n", "invalid width"},
		{"order", "order: vax\n", "invalid order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
