package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"
)

// RenderHTML renders the run artifacts as one self-contained HTML page with
// the ROC, lift, and KS charts embedded as base64 images.
func RenderHTML(a *Artifacts) ([]byte, error) {
	data := htmlData{Artifacts: a}
	if data.Title = a.Title; data.Title == "" {
		data.Title = "Model assessment"
	}
	if data.GeneratedAt = a.GeneratedAt; data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	if a.Test != nil {
		if a.Test.ROC != nil {
			png, err := ROCChart(a.Test.ROC)
			if err != nil {
				return nil, fmt.Errorf("roc chart: %w", err)
			}
			data.ROCImage = dataURI(png)
			png, err = KSChart(a.Test.ROC)
			if err != nil {
				return nil, fmt.Errorf("ks chart: %w", err)
			}
			data.KSImage = dataURI(png)
		}
		if len(a.Test.Lift) > 0 {
			png, err := LiftChart(a.Test.Lift)
			if err != nil {
				return nil, fmt.Errorf("lift chart: %w", err)
			}
			data.LiftImage = dataURI(png)
		}
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

type htmlData struct {
	*Artifacts
	Title       string
	GeneratedAt time.Time
	ROCImage    template.URL
	LiftImage   template.URL
	KSImage     template.URL
}

func dataURI(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}

var pageTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
	"f4":  func(v float64) string { return fmt.Sprintf("%.4f", v) },
	"f6":  func(v float64) string { return fmt.Sprintf("%.6g", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 64rem; color: #1a1a2e; }
h1 { border-bottom: 2px solid #1f77b4; padding-bottom: .3rem; }
h2 { color: #1f77b4; margin-top: 2rem; }
table { border-collapse: collapse; margin: .8rem 0; }
th, td { border: 1px solid #cfd8dc; padding: .3rem .7rem; text-align: right; }
th { background: #eceff1; }
td:first-child, th:first-child { text-align: left; }
.charts { display: flex; flex-wrap: wrap; gap: 1rem; }
.charts img { max-width: 30rem; border: 1px solid #cfd8dc; }
.meta { color: #607d8b; font-size: .85rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>

{{with .Dataset}}
<h2>Dataset</h2>
<p>{{.Name}}: {{.Rows}} rows, {{len .Cols}} columns{{if .Target}}, target <strong>{{.Target}}</strong> ({{.Events}} events, rate {{pct .EventRate}}){{end}}</p>
<table>
<tr><th>Column</th><th>Kind</th><th>Non-null</th><th>Missing</th><th>Min</th><th>Max</th><th>Mean</th><th>Std</th></tr>
{{range .Cols}}<tr><td>{{.Name}}</td><td>{{.Kind}}</td><td>{{.NonNull}}</td><td>{{.Missing}}</td>{{if eq .Kind "numeric"}}<td>{{f6 .Min}}</td><td>{{f6 .Max}}</td><td>{{f6 .Mean}}</td><td>{{f6 .Std}}</td>{{else}}<td colspan="4">{{len .TopValues}} top levels, {{.Unique}} unique</td>{{end}}</tr>
{{end}}</table>
{{end}}

{{with .Balance}}
<h2>Class balance</h2>
<p>Oversampled from {{.RowsBefore}} to {{.RowsAfter}} rows; event rate {{pct .RateBefore}} &rarr; {{pct .RateAfter}}.</p>
{{end}}

{{with .Partition}}
<h2>Partition</h2>
<table>
<tr><th>Partition</th><th>Rows</th></tr>
<tr><td>Train</td><td>{{.Train}}</td></tr>
<tr><td>Test</td><td>{{.Test}}</td></tr>
<tr><td>Validate</td><td>{{.Validate}}</td></tr>
</table>
<p class="meta">Stratified split, seed {{.Seed}}.</p>
{{end}}

{{with .Model}}
<h2>Model</h2>
<p>Logistic regression; AIC {{f4 .AIC}}, log-likelihood {{f4 .LogLik}}, {{.Iterations}} iterations{{if not .Converged}} (did not converge){{end}}.</p>
<table>
<tr><th>Term</th><th>Coefficient</th></tr>
<tr><td>(Intercept)</td><td>{{f6 .Intercept}}</td></tr>
{{$m := .}}{{range $i, $name := .Features}}<tr><td>{{$name}}</td><td>{{f6 (index $m.Coef $i)}}</td></tr>
{{end}}</table>
{{end}}

{{if .Steps}}
<h2>Stepwise selection</h2>
<table>
<tr><th>Step</th><th>Action</th><th>Variable</th><th>Chi-square</th><th>p-value</th></tr>
{{range .Steps}}<tr><td>{{.Step}}</td><td>{{.Action}}</td><td>{{.Variable}}</td><td>{{f4 .ChiSq}}</td><td>{{f4 .PValue}}</td></tr>
{{end}}</table>
{{end}}

{{if .Test}}{{with .Test.Metrics}}
<h2>Test assessment</h2>
<table>
<tr><th>Statistic</th><th>Value</th></tr>
<tr><td>N / events</td><td>{{.N}} / {{.Events}}</td></tr>
<tr><td>AUC</td><td>{{f4 .AUC}}</td></tr>
<tr><td>Gini</td><td>{{f4 .Gini}}</td></tr>
<tr><td>KS</td><td>{{f4 .KS}}</td></tr>
<tr><td>Lift (top {{pct .LiftDepth}})</td><td>{{f4 .Lift}}</td></tr>
<tr><td>Accuracy</td><td>{{f4 .Accuracy}}</td></tr>
<tr><td>Misclassification</td><td>{{f4 .Misclassification}}</td></tr>
<tr><td>Precision</td><td>{{f4 .Precision}}</td></tr>
<tr><td>Recall</td><td>{{f4 .Recall}}</td></tr>
<tr><td>F1</td><td>{{f4 .F1}}</td></tr>
</table>
{{end}}
<div class="charts">
{{if .ROCImage}}<img src="{{.ROCImage}}" alt="ROC curve">{{end}}
{{if .LiftImage}}<img src="{{.LiftImage}}" alt="Cumulative lift">{{end}}
{{if .KSImage}}<img src="{{.KSImage}}" alt="KS separation">{{end}}
</div>
{{if .Test.Lift}}
<h3>Lift table</h3>
<table>
<tr><th>Bin</th><th>Depth</th><th>Records</th><th>Events</th><th>Response rate</th><th>Lift</th><th>Cum. lift</th><th>Cum. gain</th></tr>
{{range .Test.Lift}}<tr><td>{{.Bin}}</td><td>{{pct .Depth}}</td><td>{{.Records}}</td><td>{{.Events}}</td><td>{{pct .ResponseRate}}</td><td>{{f4 .Lift}}</td><td>{{f4 .CumulativeLift}}</td><td>{{pct .CumulativeGain}}</td></tr>
{{end}}</table>
{{end}}
{{end}}

{{with .CV}}
<h2>Cross-validation</h2>
<table>
<tr><th>Fold</th><th>Records</th><th>Events</th><th>AUC</th><th>Gini</th><th>KS</th><th>Lift</th><th>F1</th><th>Accuracy</th><th>Misclass.</th></tr>
{{range .Folds}}<tr><td>{{.Fold}}</td><td>{{.Records}}</td><td>{{.Events}}</td><td>{{f4 .Metrics.AUC}}</td><td>{{f4 .Metrics.Gini}}</td><td>{{f4 .Metrics.KS}}</td><td>{{f4 .Metrics.Lift}}</td><td>{{f4 .Metrics.F1}}</td><td>{{f4 .Metrics.Accuracy}}</td><td>{{f4 .Metrics.Misclassification}}</td></tr>
{{end}}</table>
<table>
<tr><th>Statistic</th><th>Mean</th><th>Std dev</th><th>Min</th><th>Max</th></tr>
<tr><td>AUC</td><td>{{f4 .Summary.AUC.Mean}}</td><td>{{f4 .Summary.AUC.StdDev}}</td><td>{{f4 .Summary.AUC.Min}}</td><td>{{f4 .Summary.AUC.Max}}</td></tr>
<tr><td>Gini</td><td>{{f4 .Summary.Gini.Mean}}</td><td>{{f4 .Summary.Gini.StdDev}}</td><td>{{f4 .Summary.Gini.Min}}</td><td>{{f4 .Summary.Gini.Max}}</td></tr>
<tr><td>KS</td><td>{{f4 .Summary.KS.Mean}}</td><td>{{f4 .Summary.KS.StdDev}}</td><td>{{f4 .Summary.KS.Min}}</td><td>{{f4 .Summary.KS.Max}}</td></tr>
<tr><td>Lift</td><td>{{f4 .Summary.Lift.Mean}}</td><td>{{f4 .Summary.Lift.StdDev}}</td><td>{{f4 .Summary.Lift.Min}}</td><td>{{f4 .Summary.Lift.Max}}</td></tr>
<tr><td>F1</td><td>{{f4 .Summary.F1.Mean}}</td><td>{{f4 .Summary.F1.StdDev}}</td><td>{{f4 .Summary.F1.Min}}</td><td>{{f4 .Summary.F1.Max}}</td></tr>
<tr><td>Accuracy</td><td>{{f4 .Summary.Accuracy.Mean}}</td><td>{{f4 .Summary.Accuracy.StdDev}}</td><td>{{f4 .Summary.Accuracy.Min}}</td><td>{{f4 .Summary.Accuracy.Max}}</td></tr>
<tr><td>Misclassification</td><td>{{f4 .Summary.Misclassification.Mean}}</td><td>{{f4 .Summary.Misclassification.StdDev}}</td><td>{{f4 .Summary.Misclassification.Min}}</td><td>{{f4 .Summary.Misclassification.Max}}</td></tr>
</table>
{{end}}

</body>
</html>
`))
