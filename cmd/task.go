package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/machovotrish/luma/pkg/events"
	"github.com/machovotrish/luma/pkg/log"
	"github.com/machovotrish/luma/pkg/runner"
	"github.com/machovotrish/luma/pkg/store"
)

var taskCmd = &cobra.Command{
	Use:   "task [command]",
	Short: "Run a single task without the chat interface",
	Long: `Task dispatches one command to the agent, prints the progress stream
to stdout, and exits with the task's outcome. The command is recorded in the
task history like any chat-submitted task.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	rootCmd.AddCommand(taskCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}

	history := st.LoadTaskHistory()
	pipeline, err := buildPipeline(cfg, st, func(task runner.Task) {
		history = append(history, task.Command)
		if saveErr := st.SaveTaskHistory(history); saveErr != nil {
			log.WithError(saveErr).Error("failed to persist task history")
		}
	})
	if err != nil {
		return err
	}
	defer pipeline.shutdown()

	command := strings.Join(args, " ")
	if _, err := pipeline.runner.Start(command); err != nil {
		return err
	}

	// Forward a stop request on the first interrupt; a second one kills us.
	interrupts := make(chan os.Signal, 2)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)
	go func() {
		<-interrupts
		fmt.Println("\nStopping after the current step...")
		pipeline.runner.Stop()
	}()

	for pipeline.runner.Busy() {
		printEvents(pipeline.queue)
		time.Sleep(100 * time.Millisecond)
	}
	printEvents(pipeline.queue)

	switch pipeline.runner.LastOutcome() {
	case runner.StateCompleted:
		return nil
	case runner.StateCancelled:
		return fmt.Errorf("task cancelled")
	default:
		return fmt.Errorf("task failed")
	}
}

func printEvents(q *events.Queue) {
	for _, ev := range q.Drain() {
		if ev.Type != events.TypeChat {
			continue
		}
		fmt.Printf("[%s] %s: %s\n", ev.Message.Timestamp, ev.Message.Sender, ev.Message.Body)
	}
}
