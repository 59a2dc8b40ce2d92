package report

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/compare"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

// chartPoints bounds the number of vertices per series.
const chartPoints = 4000

var (
	green  = color.RGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff}
	orange = color.RGBA{R: 0xff, G: 0x8c, B: 0x00, A: 0xff}
	red    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	blue   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
)

// Series is a labelled run for charting.
type Series struct {
	Label   string
	Samples []sim.Sample
}

func thin[T any](xs []T) []T {
	if len(xs) <= chartPoints {
		return xs
	}
	out := make([]T, chartPoints)
	for i := range out {
		out[i] = xs[i*(len(xs)-1)/(chartPoints-1)]
	}
	return out
}

func line(xys plotter.XYs, c color.Color) (*plotter.Line, error) {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(0.7)
	return l, nil
}

// endMarker is a dashed vertical line at the last cycle of a series.
func endMarker(x, lo, hi float64, c color.Color) (*plotter.Line, error) {
	l, err := line(plotter.XYs{{X: x, Y: lo}, {X: x, Y: hi}}, c)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	return l, nil
}

// DistanceChart plots D per cycle for up to two series on one chart and
// marks where each one ends.
func DistanceChart(path string, series ...Series) error {
	p := plot.New()
	p.Title.Text = "Distance between hunter and rabbit"
	p.X.Label.Text = "cycle"
	p.Y.Label.Text = "D"
	p.Legend.Top = true
	p.Legend.Left = true

	colors := []color.Color{green, orange, blue, red}
	lo, hi := 0.0, 1.0
	for _, s := range series {
		for _, smp := range s.Samples {
			hi = max(hi, smp.D)
		}
	}

	for i, s := range series {
		if len(s.Samples) == 0 {
			continue
		}
		c := colors[i%len(colors)]
		pts := thin(s.Samples)
		xys := make(plotter.XYs, len(pts))
		for j, smp := range pts {
			xys[j] = plotter.XY{X: float64(smp.Step), Y: smp.D}
		}
		l, err := line(xys, c)
		if err != nil {
			return err
		}
		m, err := endMarker(float64(s.Samples[len(s.Samples)-1].Step), lo, hi, c)
		if err != nil {
			return err
		}
		p.Add(l, m)
		p.Legend.Add(s.Label, l)
	}
	p.Add(plotter.NewGrid())

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// DifferenceChart stacks the absolute difference in D on a linear and a
// logarithmic axis and, when headings were compared, the heading
// difference below them.
func DifferenceChart(path string, recs []compare.Record) error {
	if len(recs) == 0 {
		return fmt.Errorf("no records to chart")
	}
	pts := thin(recs)

	dLin := make(plotter.XYs, 0, len(pts))
	dLog := make(plotter.XYs, 0, len(pts))
	aLin := make(plotter.XYs, 0, len(pts))
	aLog := make(plotter.XYs, 0, len(pts))
	for _, r := range pts {
		x := float64(r.Step)
		dLin = append(dLin, plotter.XY{X: x, Y: r.AbsErr})
		if r.AbsErr > 0 {
			dLog = append(dLog, plotter.XY{X: x, Y: r.AbsErr})
		}
		if r.HasAngle {
			aLin = append(aLin, plotter.XY{X: x, Y: r.AngleErr})
			if r.AngleErr > 0 {
				aLog = append(aLog, plotter.XY{X: x, Y: r.AngleErr})
			}
		}
	}

	rows := [][]*plot.Plot{}
	add := func(title string, xys plotter.XYs, c color.Color, logY bool) error {
		p := plot.New()
		p.Title.Text = title
		p.X.Label.Text = "cycle"
		if logY {
			p.Y.Scale = plot.LogScale{}
			p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		}
		if len(xys) > 0 {
			l, err := line(xys, c)
			if err != nil {
				return err
			}
			p.Add(l)
		}
		p.Add(plotter.NewGrid())
		rows = append(rows, []*plot.Plot{p})
		return nil
	}

	if err := add("Difference in D (linear)", dLin, green, false); err != nil {
		return err
	}
	if err := add("Difference in D (log)", dLog, orange, len(dLog) > 0); err != nil {
		return err
	}
	if len(aLin) > 0 {
		if err := add("Difference in rabbit heading (linear)", aLin, green, false); err != nil {
			return err
		}
		if err := add("Difference in rabbit heading (log)", aLog, orange, len(aLog) > 0); err != nil {
			return err
		}
	}

	img := vgimg.New(10*vg.Inch, vg.Length(len(rows))*3*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: len(rows), Cols: 1, PadY: vg.Millimeter * 4, PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2}
	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}

	return writePNG(path, img)
}

// TrajectoryChart draws both paths in the plane with the final separation.
func TrajectoryChart(path string, samples []sim.Sample) error {
	var rabbit, hunter plotter.XYs
	for _, s := range thin(samples) {
		if !s.Tracked {
			continue
		}
		rabbit = append(rabbit, plotter.XY{X: s.Rabbit.X, Y: s.Rabbit.Y})
		hunter = append(hunter, plotter.XY{X: s.Hunter.X, Y: s.Hunter.Y})
	}
	if len(rabbit) < 2 {
		return fmt.Errorf("trajectory needs at least two tracked samples, got %d", len(rabbit))
	}

	p := plot.New()
	p.Title.Text = "Trajectories"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	lr, pr, err := plotter.NewLinePoints(rabbit)
	if err != nil {
		return err
	}
	lr.LineStyle.Color, lr.LineStyle.Width = green, vg.Points(0.5)
	pr.GlyphStyle.Color, pr.GlyphStyle.Shape, pr.GlyphStyle.Radius = green, draw.CircleGlyph{}, vg.Points(1.5)

	lh, ph, err := plotter.NewLinePoints(hunter)
	if err != nil {
		return err
	}
	lh.LineStyle.Color, lh.LineStyle.Width = red, vg.Points(0.5)
	ph.GlyphStyle.Color, ph.GlyphStyle.Shape, ph.GlyphStyle.Radius = red, draw.CrossGlyph{}, vg.Points(1.5)

	sep, err := line(plotter.XYs{rabbit[len(rabbit)-1], hunter[len(hunter)-1]}, blue)
	if err != nil {
		return err
	}
	sep.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}

	p.Add(lr, pr, lh, ph, sep)
	p.Legend.Add("rabbit", lr, pr)
	p.Legend.Add("hunter", lh, ph)

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}

func writePNG(path string, img *vgimg.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
