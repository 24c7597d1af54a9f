package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgalella/GeometricArt/internal/art"
	"github.com/sgalella/GeometricArt/internal/imageio"
	"github.com/sgalella/GeometricArt/internal/store"
)

var (
	resumeDataDir    string
	resumeIterations int
	resumeOut        string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume an optimization from its checkpoint",
	Long: `Loads the checkpoint for the given job and continues hill climbing from
the saved shape list. The RNG stream restarts, so the continuation is
reproducible but not bit-identical to an uninterrupted run.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeIterations, "iterations", 0, "New total iteration budget (0 = keep the checkpointed budget)")
	resumeCmd.Flags().StringVar(&resumeOut, "out", "", "Output image path (default <data-dir>/jobs/<job-id>/best.png)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	id := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(id)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not usable: %w", err)
	}

	cfg := checkpoint.Config.Config
	if resumeIterations > 0 {
		cfg.Iterations = resumeIterations
	}
	if checkpoint.Iteration >= cfg.Iterations {
		return fmt.Errorf("checkpoint is already at iteration %d of %d; raise --iterations to continue",
			checkpoint.Iteration, cfg.Iterations)
	}

	target, err := imageio.Load(checkpoint.Config.RefPath)
	if err != nil {
		return err
	}
	target = imageio.Downscale(target, checkpoint.Config.MaxDim)

	slog.Info("Resuming job",
		"job_id", id,
		"iteration", checkpoint.Iteration,
		"changes", checkpoint.Changes,
		"similarity", checkpoint.Similarity,
		"budget", cfg.Iterations,
	)

	trace, err := store.NewTraceWriter(resumeDataDir, id, true)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer trace.Close()

	jobConfig := checkpoint.Config
	jobConfig.Iterations = cfg.Iterations

	var hc *art.Climber
	onProgress := func(p art.Progress) {
		if p.Accepted && (cfg.ReportEvery == 0 || p.Iteration%cfg.ReportEvery != 0) {
			return
		}

		entry := store.TraceEntry{
			Iteration:  p.Iteration,
			Changes:    p.Changes,
			Score:      p.Score,
			Similarity: p.Similarity,
			Timestamp:  time.Now(),
		}
		if err := trace.Write(entry); err != nil {
			slog.Warn("Failed to write trace entry", "error", err)
		}

		cp := store.NewCheckpoint(id, hc.Shapes(), p.Score, checkpoint.InitialScore, p.Similarity, p.Iteration, p.Changes, jobConfig)
		if err := checkpointStore.SaveCheckpoint(id, cp); err != nil {
			slog.Warn("Failed to save checkpoint", "error", err)
		}
	}

	hc, err = art.New(target, cfg,
		art.WithState(checkpoint.Shapes, checkpoint.Iteration, checkpoint.Changes),
		art.WithProgress(onProgress),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, runErr := hc.Run(ctx)
	if runErr != nil {
		slog.Warn("Resume interrupted, keeping best state so far", "iteration", result.Iterations)
	}

	cp := store.NewCheckpoint(id, result.Shapes, result.Score, checkpoint.InitialScore, result.Similarity, result.Iterations, result.Changes, jobConfig)
	if err := checkpointStore.SaveCheckpoint(id, cp); err != nil {
		return fmt.Errorf("failed to save final checkpoint: %w", err)
	}

	out := resumeOut
	if out == "" {
		out = filepath.Join(checkpointStore.JobDir(id), "best.png")
	}
	if err := imageio.SavePNG(out, result.Image); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (similarity %.2f%% -> %.2f%%, iteration %d/%d)\n",
		out, checkpoint.Similarity, result.Similarity, result.Iterations, cfg.Iterations)

	return runErr
}
