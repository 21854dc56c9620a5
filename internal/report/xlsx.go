package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX exports the run's metrics as a workbook with Metrics, Folds,
// Coefficients, and Lift sheets.
func WriteXLSX(path string, a *Artifacts) error {
	wb := excelize.NewFile()
	defer wb.Close()

	const metricsSheet = "Metrics"
	if err := wb.SetSheetName("Sheet1", metricsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	row := 1
	put := func(sheet string, r int, values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		return wb.SetSheetRow(sheet, cell, &values)
	}

	if err := put(metricsSheet, row, []any{"Statistic", "Value"}); err != nil {
		return fmt.Errorf("metrics header: %w", err)
	}
	row++
	if a.Test != nil && a.Test.Metrics != nil {
		m := a.Test.Metrics
		for _, kv := range []struct {
			k string
			v any
		}{
			{"N", m.N}, {"Events", m.Events},
			{"AUC", m.AUC}, {"Gini", m.Gini}, {"KS", m.KS},
			{"Lift (top bin)", m.Lift},
			{"Accuracy", m.Accuracy}, {"Misclassification", m.Misclassification},
			{"Precision", m.Precision}, {"Recall", m.Recall}, {"F1", m.F1},
			{"Cutoff", m.Cutoff},
		} {
			if err := put(metricsSheet, row, []any{kv.k, kv.v}); err != nil {
				return fmt.Errorf("metrics row: %w", err)
			}
			row++
		}
	}

	if a.CV != nil {
		const foldSheet = "Folds"
		if _, err := wb.NewSheet(foldSheet); err != nil {
			return fmt.Errorf("folds sheet: %w", err)
		}
		if err := put(foldSheet, 1, []any{"Fold", "Records", "Events", "AUC", "Gini", "KS", "Lift", "F1", "Accuracy", "Misclassification"}); err != nil {
			return fmt.Errorf("folds header: %w", err)
		}
		for i, f := range a.CV.Folds {
			m := f.Metrics
			if err := put(foldSheet, i+2, []any{f.Fold, f.Records, f.Events, m.AUC, m.Gini, m.KS, m.Lift, m.F1, m.Accuracy, m.Misclassification}); err != nil {
				return fmt.Errorf("folds row: %w", err)
			}
		}
		s := a.CV.Summary
		base := len(a.CV.Folds) + 2
		if err := put(foldSheet, base, []any{"Mean", "", "", s.AUC.Mean, s.Gini.Mean, s.KS.Mean, s.Lift.Mean, s.F1.Mean, s.Accuracy.Mean, s.Misclassification.Mean}); err != nil {
			return fmt.Errorf("folds mean: %w", err)
		}
		if err := put(foldSheet, base+1, []any{"StdDev", "", "", s.AUC.StdDev, s.Gini.StdDev, s.KS.StdDev, s.Lift.StdDev, s.F1.StdDev, s.Accuracy.StdDev, s.Misclassification.StdDev}); err != nil {
			return fmt.Errorf("folds stddev: %w", err)
		}
	}

	if a.Model != nil {
		const coefSheet = "Coefficients"
		if _, err := wb.NewSheet(coefSheet); err != nil {
			return fmt.Errorf("coefficients sheet: %w", err)
		}
		if err := put(coefSheet, 1, []any{"Term", "Coefficient"}); err != nil {
			return fmt.Errorf("coefficients header: %w", err)
		}
		if err := put(coefSheet, 2, []any{"(Intercept)", a.Model.Intercept}); err != nil {
			return fmt.Errorf("intercept row: %w", err)
		}
		for i, name := range a.Model.Features {
			if err := put(coefSheet, i+3, []any{name, a.Model.Coef[i]}); err != nil {
				return fmt.Errorf("coefficient row: %w", err)
			}
		}
	}

	if a.Test != nil && len(a.Test.Lift) > 0 {
		const liftSheet = "Lift"
		if _, err := wb.NewSheet(liftSheet); err != nil {
			return fmt.Errorf("lift sheet: %w", err)
		}
		if err := put(liftSheet, 1, []any{"Bin", "Depth", "Records", "Events", "ResponseRate", "Lift", "CumulativeLift", "CumulativeGain"}); err != nil {
			return fmt.Errorf("lift header: %w", err)
		}
		for i, b := range a.Test.Lift {
			if err := put(liftSheet, i+2, []any{b.Bin, b.Depth, b.Records, b.Events, b.ResponseRate, b.Lift, b.CumulativeLift, b.CumulativeGain}); err != nil {
				return fmt.Errorf("lift row: %w", err)
			}
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
