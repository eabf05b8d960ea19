package main

import (
	"fmt"
	"io"
	"os"

	"github.com/user/orbit_check_go/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// options collects the command line flags. Flags only override the config
// file when set explicitly.
type options struct {
	configPath string
	verbose    bool

	dataRoot  string
	dataset   string
	prefix    string
	particle  int
	threshold float64
	marker    string
	outDir    string
	format    string
	report    string
	agreement bool
	elevation float64
	azimuth   float64
	poiDir    string
	force     bool
}

// cli holds what PersistentPreRunE prepared for the sub commands.
type cli struct {
	opts   options
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:   "orbit_check",
		Short: "Compare orbit classifications and plot a particle's tip and period cuts",
		Long: `orbit_check reads orbit_kinds.out of a NEO-ORB style run, prints the
particles whose two classification labels differ, and plots the tip cut
(fort.10NNN, fort.11NNN) and period cut (fort.20NNN, fort.21NNN) data of
one particle. Missing cut files are plotted as empty series.

Example:
  orbit_check --data-root /runs/NEO-ORB --dataset RK_1em10_Euler1_32 --particle 17`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := NewApp(c.cfg, c.logger, c.out).Inspect()
			return err
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.opts.configPath, "config", "c", "orbit_check.yaml", "YAML configuration file")
	pf.BoolVarP(&c.opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&c.opts.dataRoot, "data-root", "", "directory holding the dataset directories")
	pf.StringVarP(&c.opts.dataset, "dataset", "d", "", "dataset to load (see the datasets command)")
	pf.StringVarP(&c.opts.prefix, "prefix", "p", "", "run directory, overrides --dataset")
	pf.IntVarP(&c.opts.particle, "particle", "i", 0, "particle index (ipart)")
	pf.Float64Var(&c.opts.threshold, "threshold", 0, "label difference above which classifications differ")
	pf.StringVar(&c.opts.marker, "marker", "", "series marker: , . o -")
	pf.StringVarP(&c.opts.outDir, "out", "o", "", "figure output directory")
	pf.StringVar(&c.opts.format, "format", "", "figure format: png svg pdf eps jpg tif")
	pf.StringVar(&c.opts.report, "report", "", "also write a PDF report to this path")
	pf.BoolVar(&c.opts.agreement, "agreement", false, "add the classification agreement heatmap")
	pf.Float64Var(&c.opts.elevation, "elev", 0, "elevation of the 3D view in degrees")
	pf.Float64Var(&c.opts.azimuth, "azim", 0, "azimuth of the 3D view in degrees")

	mismatchesCmd := &cobra.Command{
		Use:   "mismatches",
		Short: "Only print the particles with different classifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := NewApp(c.cfg, c.logger, c.out).Mismatches()
			return err
		},
	}

	poincareCmd := &cobra.Command{
		Use:   "poincare [label=file ...]",
		Short: "Overlay Poincaré sections of several integrators",
		Long: `Overlays (r, theta) Poincaré section files in one poloidal plot with a
legend. Without arguments the runs of the poincare section of the config are
used, e.g. poiplot_euler16.dat, poiplot_verlet16.dat, poiplot_rk16.dat.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := NewApp(c.cfg, c.logger, c.out).Poincare(args)
			return err
		},
	}
	poincareCmd.Flags().StringVar(&c.opts.poiDir, "dir", "", "directory of the Poincaré files")

	datasetsCmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the configured datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range c.cfg.DatasetNames() {
				mark := " "
				if name == c.cfg.Dataset {
					mark = "*"
				}
				fmt.Fprintf(c.out, "%s %s\t%s\n", mark, name, c.cfg.Datasets[name])
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		Long: `Writes the settings in effect (defaults, environment and flags) as YAML
to the --config path, so a run can be reproduced or edited later.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.opts.configPath); err == nil && !c.opts.force {
				return fmt.Errorf("%s already exists, use --force to overwrite", c.opts.configPath)
			}
			if err := c.cfg.Save(c.opts.configPath); err != nil {
				return err
			}
			c.logger.Info("Config written", zap.String("path", c.opts.configPath))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&c.opts.force, "force", false, "overwrite an existing config file")

	rootCmd.AddCommand(mismatchesCmd, poincareCmd, datasetsCmd, initCmd)
	return rootCmd
}

// setup loads the configuration, applies flags and builds the logger.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.opts.configPath)
	if err != nil {
		return err
	}
	c.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = cfg

	zcfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	zcfg.Level = level
	if c.opts.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	c.logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func (c *cli) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("data-root") {
		cfg.DataRoot = c.opts.dataRoot
	}
	if changed("dataset") {
		cfg.Dataset = c.opts.dataset
	}
	if changed("prefix") {
		cfg.Prefix = c.opts.prefix
	}
	if changed("particle") {
		cfg.Particle = c.opts.particle
	}
	if changed("threshold") {
		cfg.Threshold = c.opts.threshold
	}
	if changed("marker") {
		cfg.Marker = c.opts.marker
	}
	if changed("out") {
		cfg.Output.Dir = c.opts.outDir
	}
	if changed("format") {
		cfg.Output.Format = c.opts.format
	}
	if changed("report") {
		cfg.Output.Report = c.opts.report
	}
	if changed("agreement") {
		cfg.Output.Agreement = c.opts.agreement
	}
	if changed("elev") {
		cfg.View.Elevation = c.opts.elevation
	}
	if changed("azim") {
		cfg.View.Azimuth = c.opts.azimuth
	}
	if changed("dir") {
		cfg.Poincare.Dir = c.opts.poiDir
	}
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
