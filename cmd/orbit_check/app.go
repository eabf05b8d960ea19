package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/user/orbit_check_go/internal/analysis"
	"github.com/user/orbit_check_go/internal/config"
	"github.com/user/orbit_check_go/internal/parser"
	"github.com/user/orbit_check_go/internal/report"

	"go.uber.org/zap"
)

// ClassificationFile is the orbit kinds table inside a run directory.
const ClassificationFile = "orbit_kinds.out"

// File codes of the per-particle cut files.
var (
	tipCutCodes    = [2]string{"10", "11"}
	periodCutCodes = [2]string{"20", "21"}
)

// App runs the checks for one configuration.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer // diagnostic lines
}

// NewApp creates an App writing its diagnostic lines to out.
func NewApp(cfg *config.Config, logger *zap.Logger, out io.Writer) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{cfg: cfg, logger: logger, out: out}
}

// RunResult is what Inspect produced.
type RunResult struct {
	Prefix       string
	Mismatches   *analysis.MismatchReport
	Agreement    *analysis.Agreement
	Trajectories []parser.TrajectoryResult
	Figures      []report.Figure
	Written      []string
}

func (a *App) sendStatus(message string, fields ...zap.Field) {
	a.logger.Info(message, fields...)
}

// loadClassification reads orbit_kinds.out. Any failure here ends the run.
func (a *App) loadClassification(prefix string) (*analysis.ClassificationTable, error) {
	path := filepath.Join(prefix, ClassificationFile)
	a.sendStatus("Loading classification table", zap.String("path", path))

	t, err := parser.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load classification table: %w", err)
	}
	ct, err := analysis.NewClassificationTable(t, a.cfg.LabelColumns[0], a.cfg.LabelColumns[1])
	if err != nil {
		return nil, fmt.Errorf("invalid classification table %s: %w", path, err)
	}
	return ct, nil
}

// printMismatches writes the count line and the sorted particle list.
func (a *App) printMismatches(rep *analysis.MismatchReport) error {
	for _, line := range rep.Lines() {
		if _, err := fmt.Fprintln(a.out, line); err != nil {
			return fmt.Errorf("failed to write diagnostics: %w", err)
		}
	}
	return nil
}

// Mismatches loads the classification table and prints the particles whose
// two labels differ.
func (a *App) Mismatches() (*analysis.MismatchReport, error) {
	prefix, err := a.cfg.ResolvePrefix()
	if err != nil {
		return nil, err
	}
	ct, err := a.loadClassification(prefix)
	if err != nil {
		return nil, err
	}
	rep := ct.Mismatches(a.cfg.Threshold)
	a.sendStatus("Classification compared", zap.Int("particles", rep.Total), zap.Int("different", rep.Count))
	if err := a.printMismatches(rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// loadPair loads both files of a cut family and reports the absent ones.
func (a *App) loadPair(prefix string, kind parser.TrajectoryKind, codes [2]string) [2]parser.TrajectoryResult {
	pair := parser.TrajectoryPair(prefix, kind, codes, a.cfg.Particle)
	for _, tr := range pair {
		if tr.Absent() {
			a.sendStatus("Trajectory unavailable, plotting placeholder",
				zap.String("path", tr.Path),
				zap.Stringer("kind", tr.Kind),
				zap.Stringer("status", tr.Status),
				zap.Error(tr.Err))
			continue
		}
		a.logger.Debug("Trajectory loaded", zap.String("path", tr.Path), zap.Int("rows", tr.Table.Rows()))
	}
	return pair
}

// Inspect runs the full check: classification diagnostics, then the tip cut
// and period cut figures of the configured particle.
func (a *App) Inspect() (*RunResult, error) {
	prefix, err := a.cfg.ResolvePrefix()
	if err != nil {
		return nil, err
	}
	marker, err := report.ParseMarker(a.cfg.Marker)
	if err != nil {
		return nil, err
	}

	ct, err := a.loadClassification(prefix)
	if err != nil {
		return nil, err
	}
	res := &RunResult{Prefix: prefix}
	res.Mismatches = ct.Mismatches(a.cfg.Threshold)
	a.sendStatus("Classification compared", zap.Int("particles", res.Mismatches.Total), zap.Int("different", res.Mismatches.Count))
	if err := a.printMismatches(res.Mismatches); err != nil {
		return nil, err
	}

	particle := a.cfg.Particle
	tag := parser.ParticleTag(particle)
	a.sendStatus("Loading trajectories", zap.String("ipart", tag))
	tip := a.loadPair(prefix, parser.TipCut, tipCutCodes)
	period := a.loadPair(prefix, parser.PeriodCut, periodCutCodes)
	res.Trajectories = []parser.TrajectoryResult{tip[0], tip[1], period[0], period[1]}

	tipTitle := fmt.Sprintf("tip cut, ipart=%3d", particle)
	p, err := report.CreatePoloidalPlot(tip[0].Table, tip[1].Table, marker, tipTitle)
	if err != nil {
		return nil, fmt.Errorf("tip cut plot: %w", err)
	}
	res.Figures = append(res.Figures, report.Figure{Name: "tip_cut_" + tag, Plot: p})

	view := report.View{Elevation: a.cfg.View.Elevation, Azimuth: a.cfg.View.Azimuth}
	p, err = report.CreateSpatialPlotView(tip[0].Table, tip[1].Table, marker, tipTitle, view)
	if err != nil {
		return nil, fmt.Errorf("tip cut 3D plot: %w", err)
	}
	res.Figures = append(res.Figures, report.Figure{Name: "tip_cut_3d_" + tag, Plot: p})

	p, err = report.CreatePoloidalPlot(period[0].Table, period[1].Table, marker, fmt.Sprintf("period cut, ipart=%3d", particle))
	if err != nil {
		return nil, fmt.Errorf("period cut plot: %w", err)
	}
	res.Figures = append(res.Figures, report.Figure{Name: "period_cut_" + tag, Plot: p})

	if a.cfg.Output.Agreement {
		res.Agreement = ct.AgreementMatrix()
		cols := a.cfg.LabelColumns
		p, err := report.CreateAgreementHeatmap(res.Agreement, fmt.Sprintf("column %d", cols[0]), fmt.Sprintf("column %d", cols[1]))
		if err != nil {
			a.sendStatus("Skipping agreement heatmap", zap.Error(err))
		} else {
			res.Figures = append(res.Figures, report.Figure{Name: "agreement", Plot: p})
		}
	}

	if err := a.writeOutputs(res); err != nil {
		return res, err
	}
	return res, nil
}

func (a *App) writeOutputs(res *RunResult) error {
	out := a.cfg.Output
	a.sendStatus("Writing figures", zap.String("dir", out.Dir), zap.String("format", out.Format))
	written, err := report.SaveFigures(out.Dir, out.Format, res.Figures)
	res.Written = written
	if err != nil {
		return err
	}
	for _, path := range written {
		a.logger.Debug("Figure written", zap.String("path", path))
	}

	if out.Report == "" {
		return nil
	}
	a.sendStatus("Generating PDF", zap.String("path", out.Report))
	dataset := a.cfg.Dataset
	if a.cfg.Prefix != "" {
		dataset = ""
	}
	err = report.BuildPDFReport(out.Report, report.ReportInput{
		Dataset:      dataset,
		Prefix:       res.Prefix,
		Particle:     a.cfg.Particle,
		Threshold:    a.cfg.Threshold,
		Mismatches:   res.Mismatches,
		Trajectories: res.Trajectories,
		Figures:      res.Figures,
	})
	if err != nil {
		return fmt.Errorf("error generating PDF report: %w", err)
	}
	res.Written = append(res.Written, out.Report)
	return nil
}

// Poincare overlays the Poincaré section files of several integrators. When
// specs is empty the configured runs are used; otherwise each spec is
// "label=path" or a bare path.
func (a *App) Poincare(specs []string) (string, error) {
	marker, err := report.ParseMarker(a.cfg.Marker)
	if err != nil {
		return "", err
	}
	runs, err := a.poincareRuns(specs)
	if err != nil {
		return "", err
	}

	series := make([]report.PoincareSeries, 0, len(runs))
	for _, run := range runs {
		path := run.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.Poincare.Dir, path)
		}
		tr := parser.LoadTrajectory(path, parser.PeriodCut)
		if tr.Absent() {
			a.sendStatus("Poincaré data unavailable", zap.String("path", path), zap.Stringer("status", tr.Status), zap.Error(tr.Err))
		}
		s := report.PoincareSeries{Label: run.Label, Table: tr.Table}
		if run.Color != "" {
			if s.Color, err = report.ColorByName(run.Color); err != nil {
				return "", fmt.Errorf("run %q: %w", run.Label, err)
			}
		}
		series = append(series, s)
	}

	p, err := report.CreatePoincarePlot(series, marker, "Poincaré sections")
	if err != nil {
		return "", err
	}
	written, err := report.SaveFigures(a.cfg.Output.Dir, a.cfg.Output.Format, []report.Figure{{Name: "poincare", Plot: p}})
	if err != nil {
		return "", err
	}
	a.sendStatus("Poincaré overlay written", zap.String("path", written[0]))
	return written[0], nil
}

func (a *App) poincareRuns(specs []string) ([]config.PoincareRun, error) {
	if len(specs) == 0 {
		if len(a.cfg.Poincare.Runs) == 0 {
			return nil, fmt.Errorf("no Poincaré runs configured")
		}
		return a.cfg.Poincare.Runs, nil
	}
	runs := make([]config.PoincareRun, 0, len(specs))
	for _, spec := range specs {
		label, file, ok := strings.Cut(spec, "=")
		if !ok {
			file = spec
			label = strings.TrimSuffix(filepath.Base(spec), filepath.Ext(spec))
		}
		if file == "" {
			return nil, fmt.Errorf("empty file in %q", spec)
		}
		runs = append(runs, config.PoincareRun{Label: label, File: file})
	}
	return runs, nil
}
