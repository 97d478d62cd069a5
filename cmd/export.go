package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/machovotrish/luma/pkg/export"
	"github.com/machovotrish/luma/pkg/store"
)

var (
	exportFormat     string
	exportOutput     string
	exportTimestamps bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the chat transcript",
	Long:  `Export writes the persisted chat transcript to stdout or a file as JSON, Markdown, or plain text.`,
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Export format: json, markdown, or text")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportTimestamps, "timestamps", true, "Include message timestamps")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}

	messages := st.LoadChatHistory()
	if len(messages) == 0 {
		return fmt.Errorf("no transcript to export")
	}

	exporter := export.NewExporter(export.Options{
		Format:            export.Format(exportFormat),
		IncludeTimestamps: exportTimestamps,
		Title:             "Luma Session",
	})

	writer := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	if err := exporter.Export(messages, writer); err != nil {
		return err
	}

	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "Exported %d messages to %s\n", len(messages), exportOutput)
	}
	return nil
}
