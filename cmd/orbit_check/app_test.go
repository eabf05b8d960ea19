package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/orbit_check_go/internal/analysis"
	"github.com/user/orbit_check_go/internal/config"
	"github.com/user/orbit_check_go/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const orbitKinds = `# ipart  s  theta  phi  vpar  J  kind_a  kind_b
  1  0.5  0.1  0.0  0.3  1.0  1  1
  2  0.5  0.2  0.0  0.3  1.0  2  1
  3  0.5  0.3  0.0  0.3  1.0  1  1
202  0.5  0.4  0.0  0.3  1.0  1  2
 17  0.5  0.4  0.0  0.3  1.0  2  2.000005
`

func writeRun(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testConfig(prefix, out string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Prefix = prefix
	cfg.Output.Dir = out
	return cfg
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestInspectMissingClassificationIsFatal(t *testing.T) {
	prefix := t.TempDir()
	out := filepath.Join(t.TempDir(), "figures")
	var stdout bytes.Buffer

	res, err := NewApp(testConfig(prefix, out), nil, &stdout).Inspect()
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, stdout.String(), "nothing may be printed before the table is loaded")
	assert.NoDirExists(t, out, "no figure may be produced")
}

func TestInspectMalformedClassificationIsFatal(t *testing.T) {
	prefix := writeRun(t, map[string]string{ClassificationFile: "1 2 3\n4 5\n"})
	var stdout bytes.Buffer

	_, err := NewApp(testConfig(prefix, t.TempDir()), nil, &stdout).Inspect()
	assert.ErrorIs(t, err, parser.ErrRaggedRows)
	assert.Empty(t, stdout.String())
}

func TestInspectEmptyClassificationIsFatal(t *testing.T) {
	prefix := writeRun(t, map[string]string{ClassificationFile: "# ipart s theta\n\n"})
	out := filepath.Join(t.TempDir(), "figures")
	var stdout bytes.Buffer

	_, err := NewApp(testConfig(prefix, out), nil, &stdout).Inspect()
	assert.ErrorIs(t, err, analysis.ErrNoRows)
	assert.Empty(t, stdout.String())
	assert.NoDirExists(t, out)
}

func TestInspectTooNarrowClassificationIsFatal(t *testing.T) {
	prefix := writeRun(t, map[string]string{ClassificationFile: "1 2 3 4 5 6 7\n"})
	_, err := NewApp(testConfig(prefix, t.TempDir()), nil, &bytes.Buffer{}).Inspect()
	assert.ErrorIs(t, err, analysis.ErrTooFewColumns)
}

func TestInspectWithoutTrajectories(t *testing.T) {
	prefix := writeRun(t, map[string]string{ClassificationFile: orbitKinds})
	out := filepath.Join(t.TempDir(), "figures")
	logger, logs := observedLogger()
	var stdout bytes.Buffer

	res, err := NewApp(testConfig(prefix, out), logger, &stdout).Inspect()
	require.NoError(t, err)

	assert.Equal(t, "different classifications: 2\n[2, 202]\n", stdout.String())

	require.Len(t, res.Trajectories, 4)
	for _, tr := range res.Trajectories {
		assert.Equal(t, parser.Missing, tr.Status, tr.Path)
		assert.Equal(t, 1, tr.Table.Rows())
	}
	assert.Equal(t, 0.5, res.Trajectories[2].Table.At(0, 0))

	assert.Len(t, logs.FilterMessage("Trajectory unavailable, plotting placeholder").All(), 4)

	require.Len(t, res.Figures, 3)
	assert.Equal(t, "tip cut, ipart=202", res.Figures[0].Plot.Title.Text)
	assert.Equal(t, "tip cut, ipart=202", res.Figures[1].Plot.Title.Text)
	assert.Equal(t, "period cut, ipart=202", res.Figures[2].Plot.Title.Text)
	assert.Equal(t, []string{
		filepath.Join(out, "tip_cut_202.png"),
		filepath.Join(out, "tip_cut_3d_202.png"),
		filepath.Join(out, "period_cut_202.png"),
	}, res.Written)
	for _, path := range res.Written {
		assert.FileExists(t, path)
	}
}

func TestInspectWithTrajectories(t *testing.T) {
	prefix := writeRun(t, map[string]string{
		ClassificationFile: orbitKinds,
		"fort.10007":       "0.30 0.00 0.00\n0.31 1.57 0.10\n0.29 3.14 0.20\n",
		"fort.11007":       "0.30 -1.57 0.30\n",
		"fort.20007":       "0.25 0.10\n0.26 0.20\n",
		"fort.21007":       "",
	})
	out := filepath.Join(t.TempDir(), "figures")
	cfg := testConfig(prefix, out)
	cfg.Particle = 7
	cfg.Marker = "o"
	cfg.Output.Format = "svg"
	cfg.Output.Agreement = true
	cfg.Output.Report = filepath.Join(out, "report.pdf")

	res, err := NewApp(cfg, zap.NewNop(), &bytes.Buffer{}).Inspect()
	require.NoError(t, err)

	statuses := make([]parser.LoadStatus, len(res.Trajectories))
	for i, tr := range res.Trajectories {
		statuses[i] = tr.Status
	}
	assert.Equal(t, []parser.LoadStatus{parser.Loaded, parser.Loaded, parser.Loaded, parser.Empty}, statuses)

	assert.Equal(t, "tip cut, ipart=  7", res.Figures[0].Plot.Title.Text)
	require.NotNil(t, res.Agreement)
	assert.Equal(t, []int{1, 2}, res.Agreement.Labels)

	assert.Contains(t, res.Written, filepath.Join(out, "tip_cut_007.svg"))
	assert.Contains(t, res.Written, filepath.Join(out, "agreement.svg"))
	assert.FileExists(t, filepath.Join(out, "report.pdf"))
}

func TestInspectUsesConfiguredView(t *testing.T) {
	prefix := writeRun(t, map[string]string{
		ClassificationFile: orbitKinds,
		"fort.10202":       "1 0 0\n",
	})
	cfg := testConfig(prefix, t.TempDir())
	cfg.View.Elevation, cfg.View.Azimuth = 0, 0

	res, err := NewApp(cfg, nil, &bytes.Buffer{}).Inspect()
	require.NoError(t, err)
	// Looking down the x axis the screen shows the widened y extent.
	spatial := res.Figures[1].Plot
	assert.InDelta(t, -0.5, spatial.X.Min, 1e-12)
	assert.InDelta(t, 0.5, spatial.X.Max, 1e-12)
}

func TestInspectNarrowTipCutFails(t *testing.T) {
	prefix := writeRun(t, map[string]string{
		ClassificationFile: orbitKinds,
		"fort.10202":       "0.3 0.1\n",
	})
	_, err := NewApp(testConfig(prefix, t.TempDir()), nil, &bytes.Buffer{}).Inspect()
	require.ErrorIs(t, err, analysis.ErrTooFewColumns)
	assert.Contains(t, err.Error(), "tip cut 3D plot")
}

func TestInspectRejectsUnknownMarker(t *testing.T) {
	prefix := writeRun(t, map[string]string{ClassificationFile: orbitKinds})
	cfg := testConfig(prefix, t.TempDir())
	cfg.Marker = "*"
	var stdout bytes.Buffer

	_, err := NewApp(cfg, nil, &stdout).Inspect()
	assert.Error(t, err)
	assert.Empty(t, stdout.String())
}

func TestMismatches(t *testing.T) {
	prefix := writeRun(t, map[string]string{ClassificationFile: orbitKinds})
	cfg := testConfig(prefix, t.TempDir())
	cfg.Threshold = 1e-6
	var stdout bytes.Buffer

	rep, err := NewApp(cfg, nil, &stdout).Mismatches()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 17, 202}, rep.Particles)
	assert.Equal(t, "different classifications: 3\n[2, 17, 202]\n", stdout.String())
}

func TestPoincare(t *testing.T) {
	dir := writeRun(t, map[string]string{
		"poiplot_rk16.dat":     "0.30 0.10\n0.31 0.20\n",
		"poiplot_verlet16.dat": "0.29 0.15\n",
	})
	out := filepath.Join(t.TempDir(), "figures")
	cfg := testConfig("", out)
	cfg.Poincare.Dir = dir
	logger, logs := observedLogger()

	path, err := NewApp(cfg, logger, &bytes.Buffer{}).Poincare(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "poincare.png"), path)
	assert.FileExists(t, path)
	// euler16, verlet8 and the reference file are absent.
	assert.Len(t, logs.FilterMessage("Poincaré data unavailable").All(), 3)

	path, err = NewApp(cfg, logger, &bytes.Buffer{}).Poincare([]string{"RK=poiplot_rk16.dat", filepath.Join(dir, "poiplot_verlet16.dat")})
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = NewApp(cfg, logger, &bytes.Buffer{}).Poincare([]string{"empty="})
	assert.Error(t, err)
}

func TestPoincareRunsFromSpecs(t *testing.T) {
	app := NewApp(config.DefaultConfig(), nil, &bytes.Buffer{})
	runs, err := app.poincareRuns([]string{"Euler=a/b.dat", "/x/poiplot_rk16.dat"})
	require.NoError(t, err)
	assert.Equal(t, []config.PoincareRun{
		{Label: "Euler", File: "a/b.dat"},
		{Label: "poiplot_rk16", File: "/x/poiplot_rk16.dat"},
	}, runs)
}
