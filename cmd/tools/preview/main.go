// Command preview renders a theta-rho pattern file to a PNG image so a
// pattern can be inspected before committing the table to drawing it.
package main

import (
	"flag"
	"image/color"
	"log"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sandline/sandline/internal/motion"
	"github.com/sandline/sandline/internal/pattern"
)

var (
	out  = flag.String("o", "preview.png", "Output image path")
	step = flag.Float64("step", 0.005, "Interpolation step size")
	size = flag.Float64("size", 6, "Image size in inches")
)

func main() {
	flag.Parse()

	file := flag.Arg(0)
	if file == "" {
		log.Fatal("usage: preview [flags] pattern.thr")
	}

	coords, err := pattern.ParseFile(file)
	if err != nil {
		log.Fatalf("failed to read pattern: %v", err)
	}
	if len(coords) < 2 {
		log.Fatalf("pattern %s has %d coordinates, nothing to preview", file, len(coords))
	}

	points := motion.InterpolatePath(coords, *step)

	// theta-rho to cartesian: theta 0 points up, positive clockwise
	xys := make(plotter.XYs, len(points))
	rhos := make([]float64, len(points))
	for i, c := range points {
		xys[i] = plotter.XY{
			X: c.Rho * math.Sin(c.Theta),
			Y: c.Rho * math.Cos(c.Theta),
		}
		rhos[i] = math.Abs(c.Rho)
	}

	p := plot.New()
	p.Title.Text = filepath.Base(file)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	line, err := plotter.NewLine(xys)
	if err != nil {
		log.Fatalf("failed to build plot line: %v", err)
	}
	line.Width = vg.Points(1)
	line.Color = color.RGBA{R: 0x1f, G: 0x4e, B: 0x79, A: 0xff}
	p.Add(line)

	// square axes so the table stays round
	limit := floats.Max(rhos) * 1.05
	if limit == 0 {
		limit = 1
	}
	p.X.Min, p.X.Max = -limit, limit
	p.Y.Min, p.Y.Max = -limit, limit

	side := vg.Length(*size) * vg.Inch
	if err := p.Save(side, side, *out); err != nil {
		log.Fatalf("failed to save preview: %v", err)
	}
	log.Printf("wrote %s (%d interpolated points)", *out, len(points))
}
