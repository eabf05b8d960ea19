package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownDataset is returned when the selected dataset is not configured.
var ErrUnknownDataset = errors.New("unknown dataset")

// Config holds all settings of an orbit_check run.
type Config struct {
	// DataRoot is the directory that holds one sub directory per dataset.
	DataRoot string `yaml:"data_root"`
	// Dataset selects an entry of Datasets.
	Dataset  string            `yaml:"dataset"`
	Datasets map[string]string `yaml:"datasets"`
	// Prefix, when set, is used as the data directory instead of the dataset.
	Prefix string `yaml:"prefix"`

	Particle     int     `yaml:"particle"`
	Threshold    float64 `yaml:"threshold"`
	LabelColumns [2]int  `yaml:"label_columns"`
	Marker       string  `yaml:"marker"`

	View     ViewConfig     `yaml:"view"`
	Output   OutputConfig   `yaml:"output"`
	Poincare PoincareConfig `yaml:"poincare"`
	Log      LogConfig      `yaml:"log"`
}

// ViewConfig is the camera of the 3D tip cut figure, in degrees.
type ViewConfig struct {
	Elevation float64 `yaml:"elevation"`
	Azimuth   float64 `yaml:"azimuth"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	// Report is the path of an optional PDF bundle of all figures.
	Report string `yaml:"report"`
	// Agreement adds the classification agreement heatmap to the figures.
	Agreement bool `yaml:"agreement"`
}

// PoincareRun is one integrator output overlaid by the poincare command.
type PoincareRun struct {
	Label string `yaml:"label"`
	File  string `yaml:"file"`
	Color string `yaml:"color"`
}

type PoincareConfig struct {
	Dir  string        `yaml:"dir"`
	Runs []PoincareRun `yaml:"runs"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var validFormats = map[string]bool{"png": true, "svg": true, "pdf": true, "eps": true, "jpg": true, "tif": true}

// DefaultConfig returns the settings of the RK_1em10_Euler1_64 run, particle 202.
func DefaultConfig() *Config {
	return &Config{
		DataRoot: ".",
		Dataset:  "RK_1em10_Euler1_64",
		Datasets: map[string]string{
			"RK_1em10_Euler1_64": "RK_1em10_Euler1_64",
			"RK_1em10_Euler1_32": "RK_1em10_Euler1_32",
		},
		Particle:     202,
		Threshold:    1e-5,
		LabelColumns: [2]int{6, 7},
		Marker:       ",",
		View:         ViewConfig{Elevation: 30, Azimuth: -60},
		Output: OutputConfig{
			Dir:       "figures",
			Format:    "png",
			Agreement: false,
		},
		Poincare: PoincareConfig{
			Dir: ".",
			Runs: []PoincareRun{
				{Label: "Euler16 w Taylor", File: "poiplot_euler16.dat", Color: "g"},
				{Label: "Verlet16", File: "poiplot_verlet16.dat", Color: "b"},
				{Label: "Verlet8 old", File: "poiplot_verlet8.dat", Color: "c"},
				{Label: "RK16", File: "poiplot_rk16.dat", Color: "k"},
				{Label: "reference", File: "poiplot.dat", Color: "r"},
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("ORBIT_CHECK_DATA_ROOT"); v != "" {
		c.DataRoot = v
	}
	if v := os.Getenv("ORBIT_CHECK_DATASET"); v != "" {
		c.Dataset = v
	}
	if v := os.Getenv("ORBIT_CHECK_PREFIX"); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv("ORBIT_CHECK_PARTICLE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ORBIT_CHECK_PARTICLE %q: %w", v, err)
		}
		c.Particle = n
	}
	if v := os.Getenv("ORBIT_CHECK_OUTPUT"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("ORBIT_CHECK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DatasetNames lists the configured datasets in sorted order.
func (c *Config) DatasetNames() []string {
	names := make([]string, 0, len(c.Datasets))
	for name := range c.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePrefix returns the directory that holds orbit_kinds.out and the
// fort.* files of the selected run.
func (c *Config) ResolvePrefix() (string, error) {
	if c.Prefix != "" {
		return c.Prefix, nil
	}
	sub, ok := c.Datasets[c.Dataset]
	if !ok {
		return "", fmt.Errorf("%w %q (known: %s)", ErrUnknownDataset, c.Dataset, strings.Join(c.DatasetNames(), ", "))
	}
	if filepath.IsAbs(sub) {
		return sub, nil
	}
	return filepath.Join(c.DataRoot, sub), nil
}

// Validate checks the settings that cannot be caught by the type system.
func (c *Config) Validate() error {
	if _, err := c.ResolvePrefix(); err != nil {
		return err
	}
	if c.Particle < 0 {
		return fmt.Errorf("particle index must be non-negative, got %d", c.Particle)
	}
	if c.Threshold < 0 || math.IsNaN(c.Threshold) {
		return fmt.Errorf("threshold must be a non-negative number, got %g", c.Threshold)
	}
	if !(c.View.Elevation >= -90 && c.View.Elevation <= 90) || math.IsNaN(c.View.Azimuth) || math.IsInf(c.View.Azimuth, 0) {
		return fmt.Errorf("invalid view: elevation %g, azimuth %g", c.View.Elevation, c.View.Azimuth)
	}
	if c.LabelColumns[0] < 0 || c.LabelColumns[1] < 0 {
		return fmt.Errorf("label columns must be non-negative, got %v", c.LabelColumns)
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}
	return nil
}
