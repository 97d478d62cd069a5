package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/machovotrish/luma/pkg/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously submitted tasks",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show only the N most recent tasks")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}

	history := st.LoadTaskHistory()
	if len(history) == 0 {
		fmt.Println("No tasks yet.")
		return nil
	}

	if historyLimit > 0 {
		recent := store.RecentTasks(history, historyLimit)
		for i, task := range recent {
			fmt.Printf("%3d. %s\n", i+1, task)
		}
		return nil
	}

	for i, task := range history {
		fmt.Printf("%3d. %s\n", i+1, task)
	}
	return nil
}
