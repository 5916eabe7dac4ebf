package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	float32LE    = "11201f000400000000002000170800177f000000"
	complex32BE  = "360200000800000072000011211f000400000000002000170800177f00000069000411211f000400000000002000170800177f000000"
	complexArray = "3a00000060000000020200000003000000360200001000000072000011203f000800000000004000340b0034ff03000069000811203f000800000000004000340b0034ff030000"
)

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// newGoldie resolves the fixture directory against the package directory,
// since runCLI changes the working directory.
func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return goldie.New(t,
		goldie.WithFixtureDir(filepath.Join(wd, "testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestCommandsGolden(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"create_complex32_big", []string{"create", "--width", "4", "--order", "big"}},
		{"create_complex64_little_json", []string{"create", "--width", "8", "--order", "little", "--format", "json"}},
		{"create_complex32_little_yaml", []string{"create", "-w", "4", "-o", "<", "--format", "yaml"}},
		{"inspect_complex_array", []string{"inspect", complexArray}},
		{"inspect_float32", []string{"inspect", float32LE}},
		{"encode_complex64_little", []string{"encode", "--order", "little", "1+2i", "3-4i"}},
		{"decode_complex32_big_json", []string{"decode", "--width", "4", "--order", "big", "--format", "json", "3fc00000be800000000000003f800000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoldie(t)
			stdout, stderr, err := runCLI(t, tt.args...)
			require.NoError(t, err, stderr)
			assert.Empty(t, stderr)
			g.Assert(t, tt.name, []byte(stdout))
		})
	}
}

func TestInspectFile(t *testing.T) {
	g := newGoldie(t)
	raw := []byte{0x11, 0x20, 0x1f, 0x00, 0x04, 0, 0, 0, 0, 0, 0x20, 0, 0x17, 0x08, 0, 0x17, 0x7f, 0, 0, 0}
	path := filepath.Join(t.TempDir(), "type.bin")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	stdout, _, err := runCLI(t, "inspect", "@"+path)
	require.NoError(t, err)
	g.Assert(t, "inspect_float32", []byte(stdout))
}

func TestDatatypeFlag(t *testing.T) {
	stdout, _, err := runCLI(t, "encode", "--datatype", complex32BE, "1.5-0.25i", "1i")
	require.NoError(t, err)
	assert.Equal(t, "3fc00000be800000000000003f800000\n", stdout)

	stdout, _, err = runCLI(t, "decode", "--datatype", complexArray, "000000000000f03f0000000000000040")
	require.NoError(t, err)
	assert.Equal(t, "(1+2i)\n", stdout)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("H5COMPLEX_WIDTH", "4")
	t.Setenv("H5COMPLEX_ORDER", "big")

	stdout, _, err := runCLI(t, "encode", "1")
	require.NoError(t, err)
	assert.Equal(t, "3f80000000000000\n", stdout)

	// A changed flag beats the environment.
	stdout, _, err = runCLI(t, "encode", "--order", "little", "1")
	require.NoError(t, err)
	assert.Equal(t, "0000803f00000000\n", stdout)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 4\norder: big\nformat: json\n"), 0o644))

	stdout, _, err := runCLI(t, "--config", path, "encode", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"status": "ok"`)
	assert.Contains(t, stdout, `"data": "3f80000000000000"`)
	assert.Contains(t, stdout, `"width": "Complex32"`)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{
			name:       "bad hex",
			args:       []string{"inspect", "zz"},
			wantCode:   ExitCommandError,
			wantStderr: "Error [E001]: invalid input: invalid hex",
		},
		{
			name:       "missing file",
			args:       []string{"inspect", "@does-not-exist.bin"},
			wantCode:   ExitCommandError,
			wantStderr: "Error [E001]: invalid input: failed to read does-not-exist.bin",
		},
		{
			name:       "truncated message",
			args:       []string{"inspect", "1120"},
			wantCode:   ExitFailure,
			wantStderr: "Error [E002]: failed to decode datatype",
		},
		{
			name:       "bad value",
			args:       []string{"encode", "1+x"},
			wantCode:   ExitCommandError,
			wantStderr: `Error [E001]: invalid value "1+x"`,
		},
		{
			name:       "not complex",
			args:       []string{"decode", "--datatype", float32LE, "0000803f"},
			wantCode:   ExitFailure,
			wantStderr: "Error [E002]: unsupported datatype: datatype is not complex",
		},
		{
			name:       "partial record",
			args:       []string{"decode", "--width", "4", "0000803f"},
			wantCode:   ExitFailure,
			wantStderr: "Error [E002]: failed to decode values",
		},
		{
			name:       "invalid width",
			args:       []string{"create", "--width", "2"},
			wantCode:   ExitCommandError,
			wantStderr: "Error [E003]: invalid configuration: invalid width",
		},
		{
			name:       "invalid format",
			args:       []string{"create", "--format", "xml"},
			wantCode:   ExitCommandError,
			wantStderr: "Error [E003]: invalid configuration: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, stderr, tt.wantStderr)
			assert.Empty(t, stdout)
		})
	}
}

func TestStructuredError(t *testing.T) {
	stdout, stderr, err := runCLI(t, "inspect", "--format", "json", "zz")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, `"status": "error"`)
	assert.Contains(t, stdout, `"code": "E001"`)
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
