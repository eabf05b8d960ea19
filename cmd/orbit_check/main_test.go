package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/user/orbit_check_go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandInspects(t *testing.T) {
	prefix := writeRun(t, map[string]string{ClassificationFile: orbitKinds})
	out := filepath.Join(t.TempDir(), "figures")

	stdout, err := execute(t, "--prefix", prefix, "--out", out, "--format", "svg", "-i", "17")
	require.NoError(t, err)
	assert.Equal(t, "different classifications: 2\n[2, 202]\n", stdout)
	assert.FileExists(t, filepath.Join(out, "tip_cut_017.svg"))
	assert.FileExists(t, filepath.Join(out, "tip_cut_3d_017.svg"))
	assert.FileExists(t, filepath.Join(out, "period_cut_017.svg"))
}

func TestRootCommandMissingClassification(t *testing.T) {
	out := filepath.Join(t.TempDir(), "figures")
	stdout, err := execute(t, "--prefix", t.TempDir(), "--out", out)
	assert.Error(t, err)
	assert.Empty(t, stdout)
	assert.NoDirExists(t, out)
}

func TestMismatchesCommand(t *testing.T) {
	prefix := writeRun(t, map[string]string{ClassificationFile: orbitKinds})
	stdout, err := execute(t, "mismatches", "--prefix", prefix, "--threshold", "1e-6")
	require.NoError(t, err)
	assert.Equal(t, "different classifications: 3\n[2, 17, 202]\n", stdout)
}

func TestDatasetsCommand(t *testing.T) {
	stdout, err := execute(t, "datasets", "--dataset", "RK_1em10_Euler1_32")
	require.NoError(t, err)
	assert.Contains(t, stdout, "* RK_1em10_Euler1_32")
	assert.Contains(t, stdout, "  RK_1em10_Euler1_64")
}

func TestInvalidFlagsRejected(t *testing.T) {
	_, err := execute(t, "mismatches", "--particle=-3")
	assert.ErrorContains(t, err, "invalid configuration")

	_, err = execute(t, "--format", "bmp")
	assert.ErrorContains(t, err, "invalid configuration")

	_, err = execute(t, "mismatches", "--threshold", "NaN")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestInitCommandWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit_check.yaml")

	_, err := execute(t, "init", "--config", path, "--particle", "17", "--elev", "45")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 17, cfg.Particle)
	assert.Equal(t, 45.0, cfg.View.Elevation)
	assert.Equal(t, -60.0, cfg.View.Azimuth)

	_, err = execute(t, "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init", "--config", path, "--force")
	assert.NoError(t, err)
}
