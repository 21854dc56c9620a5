package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/scoreloom/internal/assess"
)

var (
	curveColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	refColor   = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	altColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// ROCChart renders the ROC curve with the chance diagonal as a PNG.
func ROCChart(roc *assess.ROCCurve) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("ROC curve (AUC %.4f)", roc.AUC)
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	xy := make(plotter.XYs, len(roc.FPR))
	for i := range roc.FPR {
		xy[i].X = roc.FPR[i]
		xy[i].Y = roc.TPR[i]
	}
	line, err := plotter.NewLine(xy)
	if err != nil {
		return nil, fmt.Errorf("roc line: %w", err)
	}
	line.Color = curveColor
	line.Width = vg.Points(1.5)

	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return nil, fmt.Errorf("roc diagonal: %w", err)
	}
	diag.Color = refColor
	diag.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(line, diag)
	return renderPNG(p)
}

// LiftChart renders cumulative lift against population depth as a PNG.
func LiftChart(bins []assess.LiftBin) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Cumulative lift"
	p.X.Label.Text = "Population depth"
	p.Y.Label.Text = "Lift"
	p.X.Min, p.X.Max = 0, 1

	xy := make(plotter.XYs, len(bins))
	for i, b := range bins {
		xy[i].X = b.Depth
		xy[i].Y = b.CumulativeLift
	}
	line, err := plotter.NewLine(xy)
	if err != nil {
		return nil, fmt.Errorf("lift line: %w", err)
	}
	line.Color = curveColor
	line.Width = vg.Points(1.5)

	base, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: 1}})
	if err != nil {
		return nil, fmt.Errorf("lift baseline: %w", err)
	}
	base.Color = refColor
	base.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(line, base)
	return renderPNG(p)
}

// KSChart renders the cumulative event and non-event capture curves whose
// maximum vertical gap is the KS statistic.
func KSChart(roc *assess.ROCCurve) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("KS separation (KS %.4f)", roc.KS())
	p.X.Label.Text = "Population depth (cumulative share)"
	p.Y.Label.Text = "Cumulative capture"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	depths := roc.Depths()
	n := len(roc.TPR)
	events := make(plotter.XYs, n)
	nonEvents := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		events[i] = plotter.XY{X: depths[i], Y: roc.TPR[i]}
		nonEvents[i] = plotter.XY{X: depths[i], Y: roc.FPR[i]}
	}
	evLine, err := plotter.NewLine(events)
	if err != nil {
		return nil, fmt.Errorf("ks events line: %w", err)
	}
	evLine.Color = curveColor
	evLine.Width = vg.Points(1.5)
	neLine, err := plotter.NewLine(nonEvents)
	if err != nil {
		return nil, fmt.Errorf("ks non-events line: %w", err)
	}
	neLine.Color = altColor
	neLine.Width = vg.Points(1.5)

	p.Add(evLine, neLine)
	p.Legend.Add("events", evLine)
	p.Legend.Add("non-events", neLine)
	p.Legend.Top = false
	return renderPNG(p)
}

func renderPNG(p *plot.Plot) ([]byte, error) {
	img := vgimg.PngCanvas{Canvas: vgimg.New(5*vg.Inch, 3.5*vg.Inch)}
	p.Draw(draw.New(img))
	var buf bytes.Buffer
	if _, err := img.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
