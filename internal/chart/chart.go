// Package chart renders the bar and line charts of both pipelines as PNG
// files using gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"wrangle/internal/config"
	"wrangle/internal/filewriter"
)

// Options controls the size and resolution of rendered images.
type Options struct {
	Width, Height vg.Length
	DPI           int
}

// OptionsFrom converts the chart section of the config.
func OptionsFrom(c config.ChartConfig) Options {
	return Options{
		Width:  vg.Length(c.WidthIn) * vg.Inch,
		Height: vg.Length(c.HeightIn) * vg.Inch,
		DPI:    c.DPI,
	}
}

// UseFont registers the TTF/OTF file at path under typeface and makes it the
// default for new plots. Labels in the household data are Hangul, which the
// bundled Liberation fonts can't draw.
func UseFont(path, typeface string) error {
	if path == "" {
		return fmt.Errorf("no font file configured for %q", typeface)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	face, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %v: %w", path, err)
	}
	fnt := font.Font{Typeface: font.Typeface(typeface)}
	font.DefaultCache.Add(font.Collection{{Font: fnt, Face: face}})
	plot.DefaultFont = fnt
	plotter.DefaultFont = fnt
	return nil
}

// Bar draws one bar per label.
func Bar(path, title, xLabel, yLabel string, labels []string, values []float64, opts Options) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 135, G: 206, B: 235, A: 255} // skyblue
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.Y.Min = 0

	return save(p, path, opts)
}

// Point is a value at a category index.
type Point struct {
	X int
	Y float64
}

// Series is one named line of a Lines chart.
type Series struct {
	Name   string
	Points []Point
}

// Lines draws each series as a line with point markers over the nominal
// categories. Categories without a point are left as gaps.
func Lines(path, title, xLabel, yLabel string, categories []string, series []Series, opts Options) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		xys := make(plotter.XYs, 0, len(s.Points))
		for _, pt := range s.Points {
			if math.IsNaN(pt.Y) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(pt.X), Y: pt.Y})
		}
		if len(xys) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
	}

	p.NominalX(categories...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return save(p, path, opts)
}

func save(p *plot.Plot, path string, opts Options) error {
	c := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(opts.DPI))
	p.Draw(draw.New(c))

	fw, err := filewriter.New(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(fw); err != nil {
		fw.Abort()
		return err
	}
	return fw.Close()
}
