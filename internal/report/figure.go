package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrUnknownMarker is returned for a marker string that has no style.
var ErrUnknownMarker = errors.New("unknown marker")

// Figure size follows the matplotlib default of 6.4 x 4.8 inches.
const (
	FigureWidth  = 6.4 * vg.Inch
	FigureHeight = 4.8 * vg.Inch
	FigureDPI    = 150
)

// Series colours of the matplotlib default cycle.
var (
	FirstSeriesColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}
	SecondSeriesColor = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}
)

// Marker selects how a series is drawn, using matplotlib format letters.
type Marker string

const (
	MarkerPixel  Marker = ","
	MarkerPoint  Marker = "."
	MarkerCircle Marker = "o"
	MarkerLine   Marker = "-"
)

// ParseMarker validates a marker string.
func ParseMarker(s string) (Marker, error) {
	switch m := Marker(s); m {
	case MarkerPixel, MarkerPoint, MarkerCircle, MarkerLine:
		return m, nil
	}
	return "", fmt.Errorf("%w %q (use one of , . o -)", ErrUnknownMarker, s)
}

func (m Marker) validate() error {
	_, err := ParseMarker(string(m))
	return err
}

func (m Marker) glyph() (draw.GlyphStyle, error) {
	switch m {
	case MarkerPixel:
		return draw.GlyphStyle{Shape: draw.BoxGlyph{}, Radius: vg.Points(0.35)}, nil
	case MarkerPoint:
		return draw.GlyphStyle{Shape: draw.CircleGlyph{}, Radius: vg.Points(1.2)}, nil
	case MarkerCircle:
		return draw.GlyphStyle{Shape: draw.CircleGlyph{}, Radius: vg.Points(3)}, nil
	}
	return draw.GlyphStyle{}, fmt.Errorf("%w %q", ErrUnknownMarker, string(m))
}

// addSeries draws pts onto p with the marker and colour. An empty series is
// skipped, which is how placeholder data ends up invisible.
func addSeries(p *plot.Plot, pts plotter.XYs, marker Marker, c color.Color) (plot.Thumbnailer, error) {
	if len(pts) == 0 {
		return nil, nil
	}
	if marker == MarkerLine {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line: %w", err)
		}
		line.Color = c
		line.Width = vg.Points(1)
		p.Add(line)
		return line, nil
	}

	style, err := marker.glyph()
	if err != nil {
		return nil, err
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create scatter: %w", err)
	}
	sc.GlyphStyle = style
	sc.GlyphStyle.Color = c
	p.Add(sc)
	return sc, nil
}

// namedColors maps matplotlib single letter colours.
var namedColors = map[string]color.Color{
	"b": color.RGBA{B: 255, A: 255},
	"g": color.RGBA{G: 128, A: 255},
	"r": color.RGBA{R: 255, A: 255},
	"c": color.RGBA{G: 191, B: 191, A: 255},
	"m": color.RGBA{R: 191, B: 191, A: 255},
	"y": color.RGBA{R: 191, G: 191, A: 255},
	"k": color.Black,
}

// ColorByName resolves a matplotlib colour letter or a #rrggbb string.
func ColorByName(name string) (color.Color, error) {
	if c, ok := namedColors[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		var r, g, b uint8
		if _, err := fmt.Sscanf(name, "#%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{R: r, G: g, B: b, A: 255}, nil
		}
	}
	return nil, fmt.Errorf("unknown colour %q", name)
}

// Figure is a named plot ready to be written out.
type Figure struct {
	Name string
	Plot *plot.Plot
}

// Render encodes the figure. PNG goes through a DPI controlled raster
// canvas; the other formats use the plot's own writer.
func (f Figure) Render(format string) ([]byte, error) {
	format = strings.ToLower(format)
	buf := new(bytes.Buffer)

	if format == "png" {
		c := vgimg.NewWith(vgimg.UseWH(FigureWidth, FigureHeight), vgimg.UseDPI(FigureDPI))
		f.Plot.Draw(draw.New(c))
		if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(buf); err != nil {
			return nil, fmt.Errorf("failed to write %s png: %w", f.Name, err)
		}
		return buf.Bytes(), nil
	}

	writer, err := f.Plot.WriterTo(FigureWidth, FigureHeight, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", f.Name, err)
	}
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write %s to buffer: %w", f.Name, err)
	}
	return buf.Bytes(), nil
}

// SaveFigures writes every figure as <dir>/<name>.<format> and returns the
// paths written.
func SaveFigures(dir, format string, figs []Figure) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}
	paths := make([]string, 0, len(figs))
	for _, fig := range figs {
		data, err := fig.Render(format)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fig.Name+"."+strings.ToLower(format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("cannot write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
