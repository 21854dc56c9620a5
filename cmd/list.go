package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	runpkg "github.com/KaramelBytes/scoreloom/internal/run"
	"github.com/spf13/cobra"
)

var listVerbose bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List completed runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := runsDir()
		if err != nil {
			return err
		}
		dirs, err := os.ReadDir(root)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(dirs))
		for _, e := range dirs {
			if !e.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(root, e.Name(), "run.json")); err == nil {
				names = append(names, e.Name())
			}
		}
		if len(names) == 0 {
			fmt.Println("(no runs)")
			return nil
		}
		sort.Strings(names)
		for _, name := range names {
			if !listVerbose {
				fmt.Printf("- %s\n", name)
				continue
			}
			r, err := runpkg.LoadRun(filepath.Join(root, name))
			if err != nil {
				fmt.Printf("- %s (unreadable: %v)\n", name, err)
				continue
			}
			last := "no steps"
			if n := len(r.Steps); n > 0 {
				last = r.Steps[n-1].Name
			}
			fmt.Printf("- %s: target=%s, %d steps, last=%s, updated %s\n",
				name, r.Target, len(r.Steps), last, r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "show run details")
}
