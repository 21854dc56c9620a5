package dataset_test

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/scoreloom/internal/dataset"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := wb.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "accounts.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"amount", "region", "flag"},
		{120, "west", 0},
		{85, "east", 1},
		{210, "west", 0},
	})
	f, err := dataset.LoadXLSX(path, "", dataset.Options{Target: "flag"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", f.Rows())
	}
	nums := f.NumericColumns()
	if len(nums) != 1 || nums[0] != "amount" {
		t.Fatalf("expected amount as the numeric column, got %v", nums)
	}
	labels, err := f.Labels()
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	if labels[1] != 1 {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"v", "flag"},
		{1, 0},
		{2, 1},
	})
	f, err := dataset.Load(path, dataset.Options{Target: "flag"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", f.Rows())
	}
}

func TestLoadXLSXRejectsEmptySheet(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"only", "header"}})
	if _, err := dataset.LoadXLSX(path, "", dataset.Options{}); err == nil {
		t.Fatalf("expected error for sheet without data rows")
	}
}
