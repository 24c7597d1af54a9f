package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgalella/GeometricArt/internal/plotting"
	"github.com/sgalella/GeometricArt/internal/store"
)

var (
	plotDataDir string
	plotOut     string
	plotChanges bool
)

var plotCmd = &cobra.Command{
	Use:   "plot [job-id]",
	Short: "Plot the progress trace of a job",
	Long: `Reads the recorded trace for a job and writes a chart of similarity
(or accepted changes, with --changes) over iterations.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().StringVar(&plotDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	plotCmd.Flags().StringVar(&plotOut, "out", "progress.png", "Output chart path")
	plotCmd.Flags().BoolVar(&plotChanges, "changes", false, "Plot accepted changes instead of similarity")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	id := args[0]

	reader, err := store.NewTraceReader(plotDataDir, id)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	title := fmt.Sprintf("Job %.12s", id)
	if plotChanges {
		err = plotting.ChangesChart(entries, title, plotOut)
	} else {
		err = plotting.SimilarityChart(entries, title, plotOut)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d trace entries)\n", plotOut, len(entries))
	return nil
}
