package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig points data_dir at a temp dir and returns the config path.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: "+dir+"\n"), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSamplesCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "samples", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Right/INDEX")
	assert.Contains(t, out, "work_it.wav")
	assert.Contains(t, out, "ThumbsTogether")

	out, err = execute(t, "samples", "set", "right/index", "clips/robot.wav", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Right/INDEX -> clips/robot.wav (robot)\n", out)

	out, err = execute(t, "samples", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "clips/robot.wav")

	_, err = execute(t, "samples", "delete", "Right/INDEX", "--config", cfg)
	require.NoError(t, err)
	out, err = execute(t, "samples", "list", "--config", cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "Right/INDEX")

	out, err = execute(t, "samples", "reset", "Right/INDEX", "--config", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Right/INDEX -> work_it.wav"), out)
}

func TestSamplesCommands_Errors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "samples", "set", "Right/THUMB", "x.wav", "--config", cfg)
	assert.Error(t, err)

	_, err = execute(t, "samples", "set", "Right/INDEX", "--config", cfg)
	assert.Error(t, err)

	_, err = execute(t, "samples", "list", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFindWebDir(t *testing.T) {
	assert.Equal(t, "/srv/web", findWebDir("/srv/web", t.TempDir()))

	dataDir := t.TempDir()
	web := filepath.Join(dataDir, "web")
	require.NoError(t, os.Mkdir(web, 0o755))

	for _, rel := range []string{"web", "../web", "../../web"} {
		if _, err := os.Stat(rel); err == nil {
			t.Skipf("%s exists relative to the working directory", rel)
		}
	}
	assert.Equal(t, web, findWebDir("", dataDir))
}
