package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/scoreloom/internal/dataset"
)

// loadFrame reads a dataset honoring the shared --target/--delimiter flags
// and config defaults.
func loadFrame(path, target, delimiter string) (*dataset.Frame, error) {
	opt := dataset.DefaultOptions()
	if target == "" && cfg != nil {
		target = cfg.Target
	}
	opt.Target = target
	d := delimiter
	if d == "" && cfg != nil {
		d = cfg.Delimiter
	}
	if d != "" {
		r, err := parseDelimiter(d)
		if err != nil {
			return nil, err
		}
		opt.Delimiter = r
	}
	f, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	debugf("loaded %s: %d rows, %d columns\n", f.Name(), f.Rows(), len(f.Columns()))
	return f, nil
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'tab')", s)
	}
}

// featureList resolves the modeling candidates: an explicit list when given,
// otherwise every numeric non-target column.
func featureList(f *dataset.Frame, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		for _, name := range explicit {
			if !f.HasColumn(name) {
				return nil, fmt.Errorf("feature column %q not found", name)
			}
		}
		return explicit, nil
	}
	numeric := f.NumericColumns()
	if len(numeric) == 0 {
		return nil, fmt.Errorf("dataset has no numeric candidate columns")
	}
	return numeric, nil
}
